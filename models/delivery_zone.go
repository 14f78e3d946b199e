package models

import "time"

const (
	ZoneStatusActive   = "active"
	ZoneStatusInactive = "inactive"
)

// DeliveryZone is a named GS division with a flat delivery fee.
type DeliveryZone struct {
	ID            uint      `gorm:"primaryKey;column:zone_id" json:"zone_id"`
	Name          string    `gorm:"unique;not null" json:"name"`
	DeliveryFee   float64   `json:"delivery_fee"`
	EstimatedTime int       `json:"estimated_time"` // minutes
	Status        string    `gorm:"type:VARCHAR(10);default:'active'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
