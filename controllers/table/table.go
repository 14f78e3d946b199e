package tableControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/middleware"
	"github.com/junaidrashid-git/restaurant-api/models"
	"github.com/junaidrashid-git/restaurant-api/uploads"
)

type TableInput struct {
	TableNo  int    `json:"table_no"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
	Location string `json:"location"`
	IsActive *bool  `json:"is_active"`
}

func parseTableNo(c *gin.Context) (int, error) {
	n, err := strconv.Atoi(c.Param("table_no"))
	if err != nil || n <= 0 {
		return 0, apperr.BadRequest("invalid table_no")
	}
	return n, nil
}

func (in TableInput) apply(t *models.Table) {
	t.Capacity = in.Capacity
	t.Location = in.Location
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
}

// GET /api/tables
// Only tables in service unless an admin asks for ?all=true.
func GetTables(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := env.DB.Order("table_no")
		if !(c.Query("all") == "true" && middleware.Role(c) == models.RoleAdmin) {
			q = q.Where("is_active = ?", true)
		}
		var tables []models.Table
		if err := q.Find(&tables).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, tables)
	}
}

// GET /api/tables/:table_no
func GetTable(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		no, err := parseTableNo(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var table models.Table
		if err := env.DB.First(&table, "table_no = ?", no).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, table)
	}
}

// POST /api/tables
func CreateTable(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in TableInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		if in.TableNo <= 0 {
			apperr.Respond(c, apperr.BadRequest("table_no must be positive"))
			return
		}

		var count int64
		if err := env.DB.Model(&models.Table{}).Where("table_no = ?", in.TableNo).Count(&count).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if count > 0 {
			apperr.Respond(c, apperr.Conflict("table already exists").With("table_no", in.TableNo))
			return
		}

		table := models.Table{TableNo: in.TableNo, IsActive: true}
		in.apply(&table)
		if err := env.DB.Create(&table).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, table)
	}
}

// PUT /api/tables/:table_no
func UpdateTable(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		no, err := parseTableNo(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var in TableInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		var table models.Table
		if err := env.DB.First(&table, "table_no = ?", no).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		in.apply(&table)
		if err := env.DB.Save(&table).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, table)
	}
}

// DELETE /api/tables/:table_no
// Tables with upcoming reservations cannot be removed; deactivate them instead.
func DeleteTable(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		no, err := parseTableNo(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var table models.Table
		if err := env.DB.First(&table, "table_no = ?", no).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		var upcoming int64
		if err := env.DB.Model(&models.Reservation{}).
			Where("table_no = ? AND status IN ? AND end_time > ?", no,
				[]models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed},
				env.Clock().UTC()).
			Count(&upcoming).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if upcoming > 0 {
			apperr.Respond(c, apperr.Conflict("table has upcoming reservations").With("reservations", upcoming))
			return
		}

		if err := env.DB.Delete(&table).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := env.Uploads.Remove(table.QRCodeURL); err != nil {
			log.WithError(err).WithField("table_no", no).Warn("QR image not removed")
		}
		c.JSON(http.StatusOK, gin.H{"message": "Table deleted successfully"})
	}
}

// POST /api/tables/:table_no/qr (multipart: file)
func UploadQR(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		no, err := parseTableNo(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var table models.Table
		if err := env.DB.First(&table, "table_no = ?", no).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		url, err := env.Uploads.Save(c, "file", "qrfiles")
		if errors.Is(err, uploads.ErrNoFile) {
			apperr.Respond(c, apperr.BadRequest("No file uploaded"))
			return
		}
		if err != nil {
			apperr.Respond(c, apperr.Internal(err))
			return
		}

		previous := table.QRCodeURL
		if err := env.DB.Model(&table).Update("qr_code_url", url).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if previous != "" {
			if err := env.Uploads.Remove(previous); err != nil {
				log.WithError(err).WithField("table_no", no).Warn("old QR image not removed")
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "File uploaded successfully", "file_url": url, "table": table})
	}
}
