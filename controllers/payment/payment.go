package paymentControllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	orderControllers "github.com/junaidrashid-git/restaurant-api/controllers/order"
	"github.com/junaidrashid-git/restaurant-api/middleware"
	"github.com/junaidrashid-git/restaurant-api/models"
	"github.com/junaidrashid-git/restaurant-api/workflow"
)

// Telr transaction status codes mapped onto payment_status. Other codes
// (hold, pending) leave the order alone.
var telrStatuses = map[string]models.PaymentStatus{
	"A": models.PaymentStatusPaid,
	"D": models.PaymentStatusFailed,
	"C": models.PaymentStatusFailed,
	"E": models.PaymentStatusFailed,
}

type PaymentResult struct {
	PaymentURL string `json:"payment_url"`
	TelrRef    string `json:"telr_ref"`
	OrderRef   string `json:"order_ref"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
}

func formatAmount(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// -------- Core Logic --------

// StartPayment opens a Telr payment for the caller's own order. The order ref
// is the Telr cart id, which is how the webhook finds the order again.
func StartPayment(ctx context.Context, env *app.Env, client *Client, orderID uint, userID string) (*PaymentResult, error) {
	var order models.Order
	if err := env.DB.Preload("User").First(&order, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperr.NotFound("order not found")
	}
	if order.OrderStatus == models.OrderStatusCancelled {
		return nil, apperr.Conflict("order is cancelled")
	}
	if order.PaymentStatus != models.PaymentStatusPending && order.PaymentStatus != models.PaymentStatusFailed {
		return nil, apperr.Conflict("order is already " + string(order.PaymentStatus))
	}

	req := PaymentRequest{
		CartID:      order.OrderRef,
		Amount:      formatAmount(order.TotalAmount),
		Description: fmt.Sprintf("Order %s", order.OrderRef),
	}
	if u := order.User; u != nil {
		req.Customer = Customer{
			Name:  u.Name,
			Email: u.Email,
			Phone: u.Phone,
			Line1: u.Address.Line1,
			Line2: u.Address.Line2,
			City:  u.Address.City,
			Zip:   u.Address.PostalCode,
		}
	}

	url, ref, err := client.Create(ctx, req)
	if errors.Is(err, ErrNotConfigured) {
		return nil, apperr.New(http.StatusServiceUnavailable, "online payment is not available").Wrap(err)
	}
	if err != nil {
		return nil, apperr.New(http.StatusBadGateway, "payment gateway error").Wrap(err)
	}
	return &PaymentResult{
		PaymentURL: url,
		TelrRef:    ref,
		OrderRef:   order.OrderRef,
		Amount:     req.Amount,
		Currency:   env.Config.Telr.Currency,
	}, nil
}

// -------- Handlers --------

// POST /api/payments/orders/:id
func CreatePaymentHandler(env *app.Env) gin.HandlerFunc {
	client := NewClient(env.Config.Telr)
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		res, err := StartPayment(c.Request.Context(), env, client, id, middleware.UserID(c))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// POST /api/payments/webhook (form-encoded, signed by Telr)
func WebhookHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID := c.PostForm("tran_cartid")
		code := c.PostForm("tran_status")
		if cartID == "" {
			apperr.Respond(c, apperr.BadRequest("missing tran_cartid"))
			return
		}
		fields := log.Fields{"cart_id": cartID, "tran_status": code, "tran_ref": c.PostForm("tran_ref")}

		target, ok := telrStatuses[code]
		if !ok {
			log.WithFields(fields).Info("telr webhook ignored")
			c.JSON(http.StatusOK, gin.H{"message": "Payment status not final"})
			return
		}

		var order models.Order
		if err := env.DB.First(&order, "order_ref = ?", cartID).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if amount := c.PostForm("tran_amount"); target == models.PaymentStatusPaid && amount != "" {
			paid, err := strconv.ParseFloat(amount, 64)
			if err != nil || formatAmount(paid) != formatAmount(order.TotalAmount) {
				log.WithFields(fields).WithField("amount", amount).Warn("telr amount does not match order total")
				apperr.Respond(c, apperr.BadRequest("amount does not match order total"))
				return
			}
		}

		updated, change, err := orderControllers.ChangeStatus(env, order.ID, workflow.AxisPayment, string(target), "telr", nil)
		if err != nil {
			var appErr *apperr.Error
			if errors.As(err, &appErr) && appErr.Status == http.StatusConflict {
				// Acknowledged so Telr stops retrying.
				log.WithFields(fields).WithError(err).Warn("telr webhook transition rejected")
				c.JSON(http.StatusOK, gin.H{"message": "Payment status not changed"})
				return
			}
			apperr.Respond(c, err)
			return
		}

		log.WithFields(fields).WithField("payment_status", updated.PaymentStatus).Info("telr webhook applied")
		c.JSON(http.StatusOK, gin.H{"message": "Payment status updated", "order": updated, "changes": change})
	}
}
