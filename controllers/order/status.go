package orderControllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/middleware"
	"github.com/junaidrashid-git/restaurant-api/models"
	"github.com/junaidrashid-git/restaurant-api/notify"
	"github.com/junaidrashid-git/restaurant-api/realtime"
	"github.com/junaidrashid-git/restaurant-api/workflow"
)

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Authorizer may veto a status change after the order has been locked.
type Authorizer func(o *models.Order) error

// ChangeStatus moves one status axis of an order inside a transaction that
// holds the order row lock. After commit it notifies the customer about
// notifiable transitions and pushes the order to the kitchen feed.
func ChangeStatus(env *app.Env, orderID uint, axis workflow.Axis, target, actor string, authorize Authorizer) (*models.Order, workflow.Change, error) {
	var order models.Order
	var change workflow.Change

	err := env.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "order_id = ?", orderID).Error; err != nil {
			return err
		}
		if authorize != nil {
			if err := authorize(&order); err != nil {
				return err
			}
		}

		var err error
		if change, err = workflow.Apply(&order, axis, target); err != nil {
			return err
		}
		if change.Empty() {
			return nil
		}
		return tx.Model(&order).
			Select("order_status", "kitchen_status", "delivery_status", "payment_status", "updated_at").
			Updates(&order).Error
	})
	if err != nil {
		return nil, nil, err
	}

	if err := env.DB.Preload("User").Preload("Items").First(&order, "order_id = ?", orderID).Error; err != nil {
		return nil, nil, err
	}
	if change.Empty() {
		return &order, change, nil
	}

	log.WithFields(log.Fields{
		"order_ref": order.OrderRef,
		"axis":      axis,
		"changes":   change,
		"by":        actor,
	}).Info("order status changed")

	notifyChange(env, &order, change, actor)
	env.Hub.Broadcast(realtime.EventOrderUpdated, order)
	return &order, change, nil
}

func notifyChange(env *app.Env, order *models.Order, change workflow.Change, actor string) {
	if env.Notifier == nil {
		return
	}
	for _, t := range change {
		if !t.Notifiable() {
			continue
		}
		ev := notify.Event{
			Type:       notify.EventOrderStatus,
			OrderID:    order.ID,
			OrderRef:   order.OrderRef,
			UserID:     order.UserID,
			Axis:       string(t.Axis),
			OldStatus:  t.From,
			NewStatus:  t.To,
			ChangedBy:  actor,
			OccurredAt: env.Clock(),
		}
		if order.User != nil {
			ev.Email, ev.Name = order.User.Email, order.User.Name
		}
		// Delivery failures never affect the status write.
		if err := env.Notifier.Publish(context.Background(), ev); err != nil {
			log.WithError(err).WithField("order_ref", order.OrderRef).Warn("notification not published")
		}
	}
}

// StatusHandler serves PATCH endpoints that set one axis from {"status": ...}.
func StatusHandler(env *app.Env, axis workflow.Axis, authorize func(c *gin.Context) Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}

		var authz Authorizer
		if authorize != nil {
			authz = authorize(c)
		}
		order, change, err := ChangeStatus(env, id, axis, req.Status, middleware.UserID(c), authz)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		msg := "Status updated successfully"
		if change.Empty() {
			msg = "Status unchanged"
		}
		c.JSON(http.StatusOK, gin.H{"message": msg, "order": order, "changes": change})
	}
}

// PATCH /api/orders/:id/status
func UpdateOrderStatusHandler(env *app.Env) gin.HandlerFunc {
	return StatusHandler(env, workflow.AxisOrder, nil)
}

// PATCH /api/orders/:id/kitchen-status
func UpdateKitchenStatusHandler(env *app.Env) gin.HandlerFunc {
	return StatusHandler(env, workflow.AxisKitchen, nil)
}

// PATCH /api/orders/:id/payment-status
func UpdatePaymentStatusHandler(env *app.Env) gin.HandlerFunc {
	return StatusHandler(env, workflow.AxisPayment, nil)
}
