package orderControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/hours"
	"github.com/junaidrashid-git/restaurant-api/middleware"
	"github.com/junaidrashid-git/restaurant-api/models"
	"github.com/junaidrashid-git/restaurant-api/workflow"
)

const defaultListLimit = 100

// ParseID reads a positive numeric path parameter.
func ParseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.BadRequest("invalid " + name)
	}
	return uint(id), nil
}

// GetOrder loads an order with its items by id or order_ref.
func GetOrder(db *gorm.DB, key string) (*models.Order, error) {
	var order models.Order
	q := db.Preload("Items")
	if id, err := strconv.ParseUint(key, 10, 64); err == nil {
		q = q.Where("order_id = ?", id)
	} else {
		q = q.Where("order_ref = ?", key)
	}
	if err := q.First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GET /api/orders/my
func GetMyOrdersHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := env.DB.
			Where("user_id = ?", middleware.UserID(c)).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /api/orders/:id
// Customers only see their own orders; anything else is reported as missing.
func GetOrderByIDHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := GetOrder(env.DB, c.Param("id"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if order.UserID != middleware.UserID(c) && !middleware.IsStaff(c) {
			apperr.Respond(c, apperr.NotFound("order not found"))
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// GET /api/orders?status=&type=&from=&to=&limit=
func GetAllOrdersHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := env.DB.Preload("User").Preload("Items").Order("created_at DESC")

		if s := c.Query("status"); s != "" {
			status, err := workflow.Normalize(workflow.AxisOrder, s)
			if err != nil {
				apperr.Respond(c, err)
				return
			}
			q = q.Where("order_status = ?", status)
		}
		if t := c.Query("type"); t != "" {
			ot, ok := models.ParseOrderType(t)
			if !ok {
				apperr.Respond(c, apperr.BadRequest("invalid type"))
				return
			}
			q = q.Where("order_type = ?", ot)
		}
		loc := env.Clock().Location()
		if from := c.Query("from"); from != "" {
			day, err := hours.ParseDate(from, loc)
			if err != nil {
				apperr.Respond(c, err)
				return
			}
			q = q.Where("created_at >= ?", day.UTC())
		}
		if to := c.Query("to"); to != "" {
			day, err := hours.ParseDate(to, loc)
			if err != nil {
				apperr.Respond(c, err)
				return
			}
			q = q.Where("created_at < ?", day.AddDate(0, 0, 1).UTC())
		}

		limit := defaultListLimit
		if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 1000 {
			limit = l
		}

		var orders []models.Order
		if err := q.Limit(limit).Find(&orders).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /api/kitchen/orders
// Oldest first: the queue the kitchen still has to work through.
func GetKitchenOrdersHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := env.DB.
			Preload("Items").
			Where("kitchen_status IN ?", []models.KitchenStatus{models.KitchenStatusPending, models.KitchenStatusPreparing}).
			Where("order_status <> ?", models.OrderStatusCancelled).
			Order("created_at ASC").
			Find(&orders).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// DeleteOrder removes the order and its items.
func DeleteOrder(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("order_id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("order not found")
		}
		return nil
	})
}

// DELETE /api/orders/:id
func DeleteOrderHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := DeleteOrder(env.DB, id); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}
