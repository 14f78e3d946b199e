package reportControllers

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/hours"
	"github.com/junaidrashid-git/restaurant-api/models"
)

const (
	defaultDays = 7
	maxDays     = 366
	topItems    = 5
)

type DailyRevenue struct {
	Date    string  `json:"date"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type TopItem struct {
	MenuID   uint    `json:"menu_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type SalesReport struct {
	From              string         `json:"from"`
	To                string         `json:"to"`
	TotalOrders       int            `json:"total_orders"`
	ByStatus          map[string]int `json:"by_status"`
	ByType            map[string]int `json:"by_type"`
	Revenue           float64        `json:"revenue"`
	AverageOrderValue float64        `json:"average_order_value"`
	Daily             []DailyRevenue `json:"daily"`
	TopItems          []TopItem      `json:"top_items"`
}

// -------- Core Logic --------

// BuildSalesReport summarizes orders placed on the calendar days from..to
// (inclusive, restaurant time). Cancelled orders are counted but earn no revenue.
func BuildSalesReport(db *gorm.DB, from, to time.Time) (*SalesReport, error) {
	loc := from.Location()
	end := to.AddDate(0, 0, 1)

	var orders []models.Order
	if err := db.Preload("Items").
		Where("created_at >= ? AND created_at < ?", from.UTC(), end.UTC()).
		Order("created_at").
		Find(&orders).Error; err != nil {
		return nil, err
	}

	rep := &SalesReport{
		From:     from.Format(hours.DateLayout),
		To:       to.Format(hours.DateLayout),
		ByStatus: map[string]int{},
		ByType:   map[string]int{},
		Daily:    []DailyRevenue{},
		TopItems: []TopItem{},
	}

	dayIndex := map[string]int{}
	dayRevenue := []decimal.Decimal{}
	for d := from; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(hours.DateLayout)
		dayIndex[key] = len(rep.Daily)
		rep.Daily = append(rep.Daily, DailyRevenue{Date: key})
		dayRevenue = append(dayRevenue, decimal.Zero)
	}

	revenue := decimal.Zero
	paidOrders := 0
	type itemAgg struct {
		TopItem
		revenue decimal.Decimal
	}
	items := map[uint]*itemAgg{}

	for _, o := range orders {
		rep.TotalOrders++
		rep.ByStatus[string(o.OrderStatus)]++
		rep.ByType[string(o.OrderType)]++
		if o.OrderStatus == models.OrderStatusCancelled {
			continue
		}

		amount := decimal.NewFromFloat(o.TotalAmount)
		revenue = revenue.Add(amount)
		paidOrders++
		if i, ok := dayIndex[o.CreatedAt.In(loc).Format(hours.DateLayout)]; ok {
			rep.Daily[i].Orders++
			dayRevenue[i] = dayRevenue[i].Add(amount)
		}

		for _, it := range o.Items {
			agg, ok := items[it.MenuID]
			if !ok {
				agg = &itemAgg{TopItem: TopItem{MenuID: it.MenuID, Name: it.Name}}
				items[it.MenuID] = agg
			}
			agg.Quantity += it.Quantity
			agg.revenue = agg.revenue.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}

	for i := range rep.Daily {
		rep.Daily[i].Revenue = dayRevenue[i].Round(2).InexactFloat64()
	}
	rep.Revenue = revenue.Round(2).InexactFloat64()
	if paidOrders > 0 {
		rep.AverageOrderValue = revenue.Div(decimal.NewFromInt(int64(paidOrders))).Round(2).InexactFloat64()
	}

	ranked := make([]*itemAgg, 0, len(items))
	for _, agg := range items {
		ranked = append(ranked, agg)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].Name < ranked[j].Name
	})
	for i, agg := range ranked {
		if i == topItems {
			break
		}
		agg.TopItem.Revenue = agg.revenue.Round(2).InexactFloat64()
		rep.TopItems = append(rep.TopItems, agg.TopItem)
	}
	return rep, nil
}

// dateRange reads ?from= and ?to= as restaurant-local days. Without them the
// range is the last seven days up to today.
func dateRange(c *gin.Context, env *app.Env) (time.Time, time.Time, error) {
	now := env.Clock()
	loc := now.Location()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	from := to.AddDate(0, 0, -(defaultDays - 1))

	var err error
	if v := c.Query("to"); v != "" {
		if to, err = hours.ParseDate(v, loc); err != nil {
			return time.Time{}, time.Time{}, err
		}
		if c.Query("from") == "" {
			from = to.AddDate(0, 0, -(defaultDays - 1))
		}
	}
	if v := c.Query("from"); v != "" {
		if from, err = hours.ParseDate(v, loc); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, apperr.BadRequest("from must not be after to")
	}
	if to.Sub(from) >= maxDays*24*time.Hour {
		return time.Time{}, time.Time{}, apperr.BadRequest("date range is limited to one year")
	}
	return from, to, nil
}

// -------- Handlers --------

// GET /api/reports/sales?from=YYYY-MM-DD&to=YYYY-MM-DD
func GetSalesReport(env *app.Env) gin.HandlerFunc {
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
		c.JSON(http.StatusOK, rep)
	}
}
