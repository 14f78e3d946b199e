package models

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleGuest    Role = "guest"
	RoleAdmin    Role = "admin"
	RoleKitchen  Role = "kitchen"
	RoleDelivery Role = "delivery"
	RoleCashier  Role = "cashier"
)

// StaffRoles may read any order, not just their own.
var StaffRoles = []Role{RoleAdmin, RoleKitchen, RoleDelivery, RoleCashier}

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleCustomer, RoleAdmin, RoleKitchen, RoleDelivery, RoleCashier:
		return r, true
	}
	return "", false
}

type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"unique;not null" json:"email"`
	Phone        string    `json:"phone"`
	Name         string    `json:"name"`
	Picture      string    `json:"picture"`
	Provider     string    `json:"provider"` // "password" or "google"
	PasswordHash string    `json:"-"`
	Role         Role      `gorm:"type:VARCHAR(20);default:'customer'" json:"role"`
	Address      Address   `gorm:"embedded" json:"address"`
	CreatedAt    time.Time `json:"created_at"`
}

// Address model embedded in User
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	Division   string `json:"division"` // GS division, matches delivery zone names
	PostalCode string `json:"postal_code"`
}
