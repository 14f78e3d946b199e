package orderControllers

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	cartControllers "github.com/junaidrashid-git/restaurant-api/controllers/cart"
	"github.com/junaidrashid-git/restaurant-api/hours"
	"github.com/junaidrashid-git/restaurant-api/middleware"
	"github.com/junaidrashid-git/restaurant-api/models"
	"github.com/junaidrashid-git/restaurant-api/pricing"
	"github.com/junaidrashid-git/restaurant-api/realtime"
)

// -------- Request Structs --------

type OrderItemInput struct {
	MenuID   uint `json:"menu_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
	// Price is accepted for compatibility with older clients and ignored.
	Price float64 `json:"price"`
}

type CreateOrderRequest struct {
	OrderType       string           `json:"order_type" binding:"required"`
	Items           []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	PaymentType     string           `json:"payment_type"`
	DeliveryAddress string           `json:"delivery_address"`
	ZoneID          *uint            `json:"zone_id"`
	DeliveryFee     *float64         `json:"delivery_fee"`
	TableNo         *int             `json:"table_no"`
	Notes           string           `json:"notes"`
}

// CheckoutRequest is CreateOrderRequest without items; they come from the cart.
type CheckoutRequest struct {
	OrderType       string   `json:"order_type" binding:"required"`
	PaymentType     string   `json:"payment_type"`
	DeliveryAddress string   `json:"delivery_address"`
	ZoneID          *uint    `json:"zone_id"`
	DeliveryFee     *float64 `json:"delivery_fee"`
	TableNo         *int     `json:"table_no"`
	Notes           string   `json:"notes"`
}

func (r CheckoutRequest) orderRequest() CreateOrderRequest {
	return CreateOrderRequest{
		OrderType:       r.OrderType,
		PaymentType:     r.PaymentType,
		DeliveryAddress: r.DeliveryAddress,
		ZoneID:          r.ZoneID,
		DeliveryFee:     r.DeliveryFee,
		TableNo:         r.TableNo,
		Notes:           r.Notes,
	}
}

// -------- Helpers --------

// Generate unique order reference, e.g. 20250908130500-<uuid4>
func generateOrderRef(now time.Time) string {
	return now.UTC().Format("20060102150405") + "-" + uuid.NewString()
}

type validated struct {
	orderType   models.OrderType
	paymentType models.PaymentType
}

func validate(req CreateOrderRequest) (validated, error) {
	var v validated
	ot, ok := models.ParseOrderType(req.OrderType)
	if !ok {
		return v, apperr.BadRequest("invalid order_type").
			With("allowed", []models.OrderType{models.OrderTypeDineIn, models.OrderTypeTakeaway, models.OrderTypeDelivery})
	}
	v.orderType = ot

	v.paymentType = models.PaymentTypeCash
	if req.PaymentType != "" {
		pt, ok := models.ParsePaymentType(req.PaymentType)
		if !ok {
			return v, apperr.BadRequest("invalid payment_type")
		}
		v.paymentType = pt
	}

	switch ot {
	case models.OrderTypeDelivery:
		if req.DeliveryAddress == "" {
			return v, apperr.BadRequest("delivery_address is required for Delivery orders")
		}
		if req.ZoneID == nil {
			return v, apperr.BadRequest("zone_id is required for Delivery orders")
		}
	case models.OrderTypeDineIn:
		if req.TableNo == nil {
			return v, apperr.BadRequest("table_no is required for Dine-in orders")
		}
	}
	return v, nil
}

func validateItems(items []OrderItemInput) error {
	if len(items) == 0 {
		return apperr.BadRequest("order must contain at least one item")
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return apperr.BadRequest("item quantity must be at least 1").With("menu_id", it.MenuID)
		}
	}
	return nil
}

// loadMenu returns the referenced menu items keyed by id, failing with the
// sorted list of ids that do not exist or are not available.
func loadMenu(tx *gorm.DB, items []OrderItemInput) (map[uint]models.MenuItem, error) {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		if !slices.Contains(ids, it.MenuID) {
			ids = append(ids, it.MenuID)
		}
	}

	var found []models.MenuItem
	if err := tx.Where("menu_id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	menu := make(map[uint]models.MenuItem, len(found))
	for _, m := range found {
		menu[m.ID] = m
	}

	var missing, unavailable []uint
	for _, id := range ids {
		m, ok := menu[id]
		switch {
		case !ok:
			missing = append(missing, id)
		case !m.IsAvailable:
			unavailable = append(unavailable, id)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, apperr.BadRequest("some menu items do not exist").With("missing_menu_ids", missing)
	}
	if len(unavailable) > 0 {
		slices.Sort(unavailable)
		return nil, apperr.BadRequest("some menu items are not available").With("unavailable_menu_ids", unavailable)
	}
	return menu, nil
}

// resolveDeliveryFee charges the fee stored on the zone. A zone that exists
// but is inactive is refused. Only a zone that cannot be found falls back to
// a caller-supplied fee, and only when strict is off.
func resolveDeliveryFee(tx *gorm.DB, req CreateOrderRequest, strict bool) (float64, *uint, error) {
	var zone models.DeliveryZone
	err := tx.First(&zone, *req.ZoneID).Error
	switch {
	case err == nil && zone.Status == models.ZoneStatusActive:
		return zone.DeliveryFee, &zone.ID, nil
	case err == nil:
		return 0, nil, apperr.BadRequest("delivery zone is not available").With("zone_id", zone.ID)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, nil, err
	}

	if strict || req.DeliveryFee == nil || *req.DeliveryFee < 0 {
		return 0, nil, apperr.BadRequest("delivery zone is not available").With("zone_id", *req.ZoneID)
	}
	log.WithFields(log.Fields{
		"zone_id":      *req.ZoneID,
		"delivery_fee": *req.DeliveryFee,
	}).Warn("delivery zone not found, using client-supplied fee")
	return *req.DeliveryFee, nil, nil
}

func checkTable(tx *gorm.DB, tableNo int) error {
	var table models.Table
	if err := tx.First(&table, "table_no = ?", tableNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.BadRequest("table does not exist").With("table_no", tableNo)
		}
		return err
	}
	if !table.IsActive {
		return apperr.BadRequest("table is not in service").With("table_no", tableNo)
	}
	return nil
}

// -------- Core Logic --------

// CreateOrder places an order from an explicit item list. The cart is left as is.
func CreateOrder(env *app.Env, userID string, req CreateOrderRequest) (*models.Order, error) {
	return placeOrder(env, userID, req, false)
}

// Checkout places an order from the caller's cart and empties the cart in the
// same transaction.
func Checkout(env *app.Env, userID string, req CheckoutRequest) (*models.Order, error) {
	return placeOrder(env, userID, req.orderRequest(), true)
}

func placeOrder(env *app.Env, userID string, req CreateOrderRequest, fromCart bool) (*models.Order, error) {
	now := env.Clock()
	if err := hours.Check(env.DB, now); err != nil {
		return nil, err
	}
	v, err := validate(req)
	if err != nil {
		return nil, err
	}
	if !fromCart {
		if err := validateItems(req.Items); err != nil {
			return nil, err
		}
	}

	var order models.Order
	err = env.DB.Transaction(func(tx *gorm.DB) error {
		if fromCart {
			cart, err := cartControllers.Load(tx, userID)
			if err != nil {
				return err
			}
			if len(cart.Items) == 0 {
				return apperr.BadRequest("cart is empty")
			}
			req.Items = req.Items[:0]
			for _, it := range cart.Items {
				req.Items = append(req.Items, OrderItemInput{MenuID: it.MenuID, Quantity: it.Quantity})
			}
		}

		if v.orderType == models.OrderTypeDineIn {
			if err := checkTable(tx, *req.TableNo); err != nil {
				return err
			}
		}

		menu, err := loadMenu(tx, req.Items)
		if err != nil {
			return err
		}

		var deliveryFee float64
		var zoneID *uint
		if v.orderType == models.OrderTypeDelivery {
			if deliveryFee, zoneID, err = resolveDeliveryFee(tx, req, env.Config.Business.StrictZoneFees); err != nil {
				return err
			}
		}

		lines := make([]pricing.Line, 0, len(req.Items))
		items := make([]models.OrderItem, 0, len(req.Items))
		for _, it := range req.Items {
			m := menu[it.MenuID]
			lines = append(lines, pricing.Line{UnitPrice: m.Price, Quantity: it.Quantity})
			items = append(items, models.OrderItem{MenuID: m.ID, Name: m.Name, Price: m.Price, Quantity: it.Quantity})
		}
		totals := pricing.Compute(lines, env.Config.Business.ServiceFeeRate, deliveryFee)

		order = models.Order{
			OrderRef:      generateOrderRef(now),
			UserID:        userID,
			OrderType:     v.orderType,
			OrderStatus:   models.OrderStatusPending,
			KitchenStatus: models.KitchenStatusPending,
			SubTotal:      totals.SubTotal,
			ServiceFee:    totals.ServiceFee,
			DeliveryFee:   totals.DeliveryFee,
			TotalAmount:   totals.Total,
			PaymentType:   v.paymentType,
			PaymentStatus: models.PaymentStatusPending,
			Notes:         req.Notes,
		}
		switch v.orderType {
		case models.OrderTypeDelivery:
			pending := models.DeliveryStatusPending
			order.DeliveryStatus = &pending
			order.DeliveryAddress = req.DeliveryAddress
			order.ZoneID = zoneID
		case models.OrderTypeDineIn:
			order.TableNo = req.TableNo
		}

		if err := tx.Omit("Items").Create(&order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items

		if fromCart {
			return cartControllers.Clear(tx, userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"order_ref": order.OrderRef,
		"type":      order.OrderType,
		"total":     order.TotalAmount,
	}).Info("order placed")
	env.Hub.Broadcast(realtime.EventOrderCreated, order)
	return &order, nil
}

// -------- Handlers --------

// POST /api/orders
func CreateOrderHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		order, err := CreateOrder(env, middleware.UserID(c), req)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
	}
}

// POST /api/orders/checkout
func CheckoutHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		order, err := Checkout(env, middleware.UserID(c), req)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
	}
}
