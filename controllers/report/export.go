package reportControllers

import (
	"fmt"
	"sort"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
)

const (
	summarySheet = "Summary"
	dailySheet   = "Daily"
)

// Workbook lays the report out as a Summary sheet and a Daily sheet with a
// column chart of revenue per day.
func Workbook(rep *SalesReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	rows := [][]any{
		{"Sales report", rep.From + " to " + rep.To},
		{},
		{"Total orders", rep.TotalOrders},
		{"Revenue", rep.Revenue},
		{"Average order value", rep.AverageOrderValue},
		{},
		{"Orders by status"},
	}
	rows = append(rows, sortedCounts(rep.ByStatus)...)
	rows = append(rows, []any{}, []any{"Orders by type"})
	rows = append(rows, sortedCounts(rep.ByType)...)
	rows = append(rows, []any{}, []any{"Top items", "Quantity", "Revenue"})
	for _, it := range rep.TopItems {
		rows = append(rows, []any{it.Name, it.Quantity, it.Revenue})
	}
	if err := writeRows(f, summarySheet, rows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(dailySheet); err != nil {
		return nil, err
	}
	daily := [][]any{{"Date", "Orders", "Revenue"}}
	for _, d := range rep.Daily {
		daily = append(daily, []any{d.Date, d.Orders, d.Revenue})
	}
	if err := writeRows(f, dailySheet, daily); err != nil {
		return nil, err
	}

	if len(rep.Daily) > 0 {
		last := len(rep.Daily) + 1
		if err := f.AddChart(dailySheet, "E2", &excelize.Chart{
			Type: excelize.Col,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("%s!$C$1", dailySheet),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", dailySheet, last),
				Values:     fmt.Sprintf("%s!$C$2:$C$%d", dailySheet, last),
			}},
			Title:  []excelize.RichTextRun{{Text: "Daily revenue"}},
			Legend: excelize.ChartLegend{Position: "none"},
		}); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedCounts(m map[string]int) [][]any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, []any{k, m[k]})
	}
	return out
}

// GET /api/reports/sales/export?from=&to=
func ExportSalesReport(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := dateRange(c, env)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		rep, err := BuildSalesReport(env.DB, from, to)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		f, err := Workbook(rep)
		if err != nil {
			apperr.Respond(c, apperr.Internal(err))
			return
		}
		defer f.Close()

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=sales_%s_%s.xlsx", rep.From, rep.To))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		if err := f.Write(c.Writer); err != nil {
			log.WithError(err).Error("failed to write sales workbook")
		}
	}
}
