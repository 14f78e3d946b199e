package models

import "time"

type OrderType string
type OrderStatus string
type KitchenStatus string
type DeliveryStatus string
type PaymentStatus string
type PaymentType string

const (
	OrderTypeDineIn   OrderType = "Dine-in"
	OrderTypeTakeaway OrderType = "Takeaway"
	OrderTypeDelivery OrderType = "Delivery"

	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusConfirmed  OrderStatus = "Confirmed"
	OrderStatusInProgress OrderStatus = "In Progress"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"

	KitchenStatusPending   KitchenStatus = "Pending"
	KitchenStatusPreparing KitchenStatus = "Preparing"
	KitchenStatusReady     KitchenStatus = "Ready"
	KitchenStatusCancelled KitchenStatus = "Cancelled"

	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusOnTheWay  DeliveryStatus = "on_the_way"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusCancelled DeliveryStatus = "cancelled"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"

	PaymentTypeCash PaymentType = "cash"
	PaymentTypeCard PaymentType = "card"
)

func ParseOrderType(s string) (OrderType, bool) {
	switch t := OrderType(s); t {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return t, true
	}
	return "", false
}

func ParsePaymentType(s string) (PaymentType, bool) {
	switch t := PaymentType(s); t {
	case PaymentTypeCash, PaymentTypeCard:
		return t, true
	}
	return "", false
}

// Order is owned by one user. The three status axes are only ever changed through workflow.Apply.
type Order struct {
	ID               uint            `gorm:"primaryKey;column:order_id" json:"order_id"`
	OrderRef         string          `gorm:"uniqueIndex;type:VARCHAR(64)" json:"order_ref"`
	UserID           string          `gorm:"index;not null" json:"user_id"`
	User             *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderType        OrderType       `gorm:"type:VARCHAR(20);not null" json:"order_type"`
	OrderStatus      OrderStatus     `gorm:"type:VARCHAR(20);default:'Pending'" json:"order_status"`
	KitchenStatus    KitchenStatus   `gorm:"type:VARCHAR(20);default:'Pending'" json:"kitchen_status"`
	DeliveryStatus   *DeliveryStatus `gorm:"type:VARCHAR(20)" json:"delivery_status,omitempty"`
	SubTotal         float64         `json:"sub_total"`
	ServiceFee       float64         `json:"service_fee"`
	DeliveryFee      float64         `json:"delivery_fee"`
	TotalAmount      float64         `json:"total_amount"`
	PaymentType      PaymentType     `gorm:"type:VARCHAR(20);default:'cash'" json:"payment_type"`
	PaymentStatus    PaymentStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	ZoneID           *uint           `gorm:"index" json:"zone_id,omitempty"`
	DeliveryPersonID *string         `gorm:"index" json:"delivery_person_id,omitempty"`
	DeliveryAddress  string          `json:"delivery_address,omitempty"`
	TableNo          *int            `json:"table_no,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Items            []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsTerminal reports whether the order can no longer progress.
func (o *Order) IsTerminal() bool {
	return o.OrderStatus == OrderStatusCompleted || o.OrderStatus == OrderStatusCancelled
}

// OrderItem keeps the menu price as it was when the order was placed.
type OrderItem struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	OrderID  uint    `gorm:"index" json:"order_id"`
	MenuID   uint    `gorm:"index" json:"menu_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}
