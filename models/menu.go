package models

import (
	"time"

	"gorm.io/gorm"
)

type MenuItem struct {
	ID              uint           `gorm:"primaryKey;autoIncrement;column:menu_id" json:"menu_id"`
	Name            string         `gorm:"not null" json:"name"`
	Description     string         `json:"description"`
	Price           float64        `gorm:"not null" json:"price"`
	Image           string         `json:"image"`
	CategoryID      *uint          `gorm:"index" json:"category_id"`
	Category        *Category      `json:"category,omitempty"`
	IsAvailable     bool           `gorm:"not null" json:"is_available"`
	PreparationTime int            `json:"preparation_time"` // minutes
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (MenuItem) TableName() string { return "menu" }
