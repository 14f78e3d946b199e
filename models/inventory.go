package models

import "time"

type Supplier struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"unique;not null" json:"name"`
	Contact   string    `json:"contact"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Ingredient struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"unique;not null" json:"name"`
	Unit         string    `json:"unit"` // kg, l, pcs
	Quantity     float64   `json:"quantity"`
	ReorderLevel float64   `json:"reorder_level"`
	CostPerUnit  float64   `json:"cost_per_unit"`
	SupplierID   *uint     `gorm:"index" json:"supplier_id,omitempty"`
	Supplier     *Supplier `json:"supplier,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Purchase struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	SupplierID   uint        `gorm:"index;not null" json:"supplier_id"`
	Supplier     *Supplier   `json:"supplier,omitempty"`
	IngredientID uint        `gorm:"index;not null" json:"ingredient_id"`
	Ingredient   *Ingredient `json:"ingredient,omitempty"`
	Quantity     float64     `json:"quantity"`
	UnitCost     float64     `json:"unit_cost"`
	TotalCost    float64     `json:"total_cost"`
	PurchasedAt  time.Time   `gorm:"index" json:"purchased_at"`
}
