package deliveryControllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	orderControllers "github.com/junaidrashid-git/restaurant-api/controllers/order"
	"github.com/junaidrashid-git/restaurant-api/middleware"
	"github.com/junaidrashid-git/restaurant-api/models"
)

type ZoneInput struct {
	Name          string  `json:"name" binding:"required"`
	DeliveryFee   float64 `json:"delivery_fee" binding:"min=0"`
	EstimatedTime int     `json:"estimated_time" binding:"min=0"`
	Status        string  `json:"status"`
}

func (in ZoneInput) apply(z *models.DeliveryZone) error {
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = models.ZoneStatusActive
	}
	if status != models.ZoneStatusActive && status != models.ZoneStatusInactive {
		return apperr.BadRequest("status must be active or inactive")
	}
	if in.DeliveryFee < 0 || in.EstimatedTime < 0 {
		return apperr.BadRequest("delivery_fee and estimated_time must not be negative")
	}
	z.Name = strings.TrimSpace(in.Name)
	z.DeliveryFee = in.DeliveryFee
	z.EstimatedTime = in.EstimatedTime
	z.Status = status
	return nil
}

func uniqueName(db *gorm.DB, name string, exceptID uint) error {
	var count int64
	if err := db.Model(&models.DeliveryZone{}).
		Where("LOWER(name) = LOWER(?) AND zone_id <> ?", name, exceptID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("a delivery zone with this name already exists")
	}
	return nil
}

// GET /api/delivery-zones
// Only active zones unless an admin asks for ?all=true.
func GetZones(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := env.DB.Order("name")
		if !(c.Query("all") == "true" && middleware.Role(c) == models.RoleAdmin) {
			q = q.Where("status = ?", models.ZoneStatusActive)
		}
		var zones []models.DeliveryZone
		if err := q.Find(&zones).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, zones)
	}
}

// POST /api/delivery-zones
func CreateZone(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ZoneInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		var zone models.DeliveryZone
		if err := in.apply(&zone); err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := uniqueName(env.DB, zone.Name, 0); err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := env.DB.Create(&zone).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, zone)
	}
}

// PUT /api/delivery-zones/:id
func UpdateZone(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var in ZoneInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}

		var zone models.DeliveryZone
		if err := env.DB.First(&zone, id).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := in.apply(&zone); err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := uniqueName(env.DB, zone.Name, zone.ID); err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := env.DB.Save(&zone).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, zone)
	}
}

// DELETE /api/delivery-zones/:id
// A zone that open orders still point at is deactivated instead.
func DeleteZone(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		var zone models.DeliveryZone
		if err := env.DB.First(&zone, id).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		var inUse int64
		if err := env.DB.Model(&models.Order{}).
			Where("zone_id = ? AND order_status NOT IN ?", id,
				[]models.OrderStatus{models.OrderStatusCompleted, models.OrderStatusCancelled}).
			Count(&inUse).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if inUse > 0 {
			if err := env.DB.Model(&zone).Update("status", models.ZoneStatusInactive).Error; err != nil {
				apperr.Respond(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Zone has open orders and was deactivated"})
			return
		}

		if err := env.DB.Delete(&zone).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Zone deleted successfully"})
	}
}
