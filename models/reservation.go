package models

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// Reservation holds a table for [DateTime, EndTime). EndTime is stored so
// overlap checks stay a single range query on every dialect.
type Reservation struct {
	ID           uint              `gorm:"primaryKey;column:reserve_id" json:"reserve_id"`
	UserID       string            `gorm:"index" json:"user_id"`
	TableNo      int               `gorm:"index:idx_reservation_slot,priority:1;not null" json:"table_no"`
	DateTime     time.Time         `gorm:"index:idx_reservation_slot,priority:2;not null" json:"date_time"`
	EndTime      time.Time         `gorm:"not null" json:"end_time"`
	Duration     int               `gorm:"not null" json:"duration"` // minutes
	PartySize    int               `json:"party_size"`
	Status       ReservationStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	CustomerName string            `json:"customer_name"`
	Phone        string            `json:"phone"`
	Notes        string            `json:"notes,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
