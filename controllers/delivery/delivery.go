package deliveryControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	orderControllers "github.com/junaidrashid-git/restaurant-api/controllers/order"
	"github.com/junaidrashid-git/restaurant-api/middleware"
	"github.com/junaidrashid-git/restaurant-api/models"
	"github.com/junaidrashid-git/restaurant-api/realtime"
	"github.com/junaidrashid-git/restaurant-api/workflow"
)

// AssignDeliveryPerson sets the rider of a Delivery order that is still open.
func AssignDeliveryPerson(env *app.Env, orderID uint, personID string) (*models.Order, error) {
	var order models.Order
	err := env.DB.Transaction(func(tx *gorm.DB) error {
		var person models.User
		if err := tx.First(&person, "id = ?", personID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("delivery person not found")
			}
			return err
		}
		if person.Role != models.RoleDelivery {
			return apperr.BadRequest("user is not a delivery person")
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "order_id = ?", orderID).Error; err != nil {
			return err
		}
		if order.OrderType != models.OrderTypeDelivery {
			return apperr.BadRequest("only Delivery orders can be assigned")
		}
		if order.IsTerminal() {
			return apperr.Conflict("order is already " + string(order.OrderStatus))
		}
		if order.DeliveryStatus != nil && *order.DeliveryStatus != models.DeliveryStatusPending {
			return apperr.Conflict("order is already out for delivery")
		}

		order.DeliveryPersonID = &person.ID
		return tx.Model(&order).Update("delivery_person_id", person.ID).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"order_ref": order.OrderRef, "person": personID}).Info("delivery person assigned")
	env.Hub.Broadcast(realtime.EventOrderUpdated, order)
	return &order, nil
}

// PUT /api/delivery/orders/:id/assign/:personId
func AssignHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		order, err := AssignDeliveryPerson(env, id, c.Param("personId"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Delivery person assigned", "order": order})
	}
}

// PATCH /api/delivery/orders/:id/status
// Riders may only move orders assigned to them; admins may move any.
func UpdateDeliveryStatusHandler(env *app.Env) gin.HandlerFunc {
	return orderControllers.StatusHandler(env, workflow.AxisDelivery, func(c *gin.Context) orderControllers.Authorizer {
		caller, role := middleware.UserID(c), middleware.Role(c)
		return func(o *models.Order) error {
			if role == models.RoleAdmin {
				return nil
			}
			if o.DeliveryPersonID == nil || *o.DeliveryPersonID != caller {
				return apperr.Forbidden("order is not assigned to you")
			}
			return nil
		}
	})
}

// GET /api/delivery/orders/my
func GetMyDeliveriesHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := env.DB.Preload("Items").Preload("User").
			Where("delivery_person_id = ?", middleware.UserID(c)).
			Order("created_at DESC")
		if c.Query("active") == "true" {
			q = q.Where("delivery_status IN ?", []models.DeliveryStatus{
				models.DeliveryStatusPending, models.DeliveryStatusOnTheWay,
			})
		}
		var orders []models.Order
		if err := q.Find(&orders).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}
