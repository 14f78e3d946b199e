package models

import "time"

type Table struct {
	TableNo   int       `gorm:"primaryKey;autoIncrement:false" json:"table_no"`
	Capacity  int       `gorm:"not null" json:"capacity"`
	Location  string    `json:"location"`
	QRCodeURL string    `json:"qr_code_url"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
