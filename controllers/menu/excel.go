package menuControllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/models"
)

var excelHeaders = []string{
	"ID", "Name", "Description", "Price", "CategoryID",
	"IsAvailable", "PreparationTime", "Image", "CreatedAt", "UpdatedAt",
}

type ImportResult struct {
	Created int `json:"created_count"`
	Updated int `json:"updated_count"`
	Skipped int `json:"skipped_count"`
}

// ImportSheet upserts one menu item per data row of sheet. Rows with an ID
// that exists update that item; other rows are inserted. Rows without a name,
// with an unreadable price or an unknown category are skipped.
func ImportSheet(db *gorm.DB, sheet *xlsx.Sheet) ImportResult {
	var res ImportResult
	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]
		get := func(index int) string {
			if row != nil && index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		name := get(1)
		price, err := strconv.ParseFloat(get(3), 64)
		if name == "" || err != nil || price < 0 {
			res.Skipped++
			continue
		}

		item := models.MenuItem{
			Name:        name,
			Description: get(2),
			Price:       price,
			Image:       get(7),
			IsAvailable: true,
		}
		if v := get(4); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil || db.First(&models.Category{}, id).Error != nil {
				res.Skipped++
				continue
			}
			catID := uint(id)
			item.CategoryID = &catID
		}
		if v := get(5); v != "" {
			if avail, err := strconv.ParseBool(v); err == nil {
				item.IsAvailable = avail
			}
		}
		if v := get(6); v != "" {
			item.PreparationTime, _ = strconv.Atoi(v)
		}

		if id, err := strconv.ParseUint(get(0), 10, 64); err == nil {
			var existing models.MenuItem
			if db.First(&existing, id).Error == nil {
				existing.Name = item.Name
				existing.Description = item.Description
				existing.Price = item.Price
				existing.Image = item.Image
				existing.CategoryID = item.CategoryID
				existing.IsAvailable = item.IsAvailable
				existing.PreparationTime = item.PreparationTime
				if err := db.Save(&existing).Error; err != nil {
					res.Skipped++
				} else {
					res.Updated++
				}
				continue
			}
		}

		if err := db.Create(&item).Error; err != nil {
			res.Skipped++
		} else {
			res.Created++
		}
	}
	return res
}

// POST /api/menu/import-excel (multipart: file)
func ImportMenuFromExcel(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			apperr.Respond(c, apperr.BadRequest("Excel file is required"))
			return
		}
		file, err := fh.Open()
		if err != nil {
			apperr.Respond(c, apperr.Internal(err))
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, fh.Size)
		if err != nil {
			apperr.Respond(c, apperr.BadRequest("failed to parse Excel file"))
			return
		}
		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			apperr.Respond(c, apperr.BadRequest("Excel file is empty or missing header row"))
			return
		}

		res := ImportSheet(env.DB, xlFile.Sheets[0])
		log.WithFields(log.Fields{
			"created": res.Created, "updated": res.Updated, "skipped": res.Skipped,
		}).Info("menu imported")
		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": res.Created,
			"updated_count": res.Updated,
			"skipped_count": res.Skipped,
		})
	}
}

// BuildSheet writes the whole menu into a new workbook in the import layout.
func BuildSheet(items []models.MenuItem) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Menu")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, h := range excelHeaders {
		header.AddCell().SetString(h)
	}
	for _, m := range items {
		row := sheet.AddRow()
		row.AddCell().SetString(strconv.FormatUint(uint64(m.ID), 10))
		row.AddCell().SetString(m.Name)
		row.AddCell().SetString(m.Description)
		row.AddCell().SetString(strconv.FormatFloat(m.Price, 'f', -1, 64))
		catID := ""
		if m.CategoryID != nil {
			catID = strconv.FormatUint(uint64(*m.CategoryID), 10)
		}
		row.AddCell().SetString(catID)
		row.AddCell().SetString(strconv.FormatBool(m.IsAvailable))
		row.AddCell().SetString(strconv.Itoa(m.PreparationTime))
		row.AddCell().SetString(m.Image)
		row.AddCell().SetString(m.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(m.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return file, nil
}

// GET /api/menu/export-excel
func ExportMenuToExcel(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var items []models.MenuItem
		if err := env.DB.Order("menu_id").Find(&items).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		file, err := BuildSheet(items)
		if err != nil {
			apperr.Respond(c, apperr.Internal(err))
			return
		}

		c.Header("Content-Disposition", "attachment; filename=menu.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")
		if err := file.Write(c.Writer); err != nil {
			log.WithError(err).Error("failed to write menu workbook")
		}
	}
}
