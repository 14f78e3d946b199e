package models

import "time"

// GuestUser lets an anonymous visitor hold a cart before signing in.
type GuestUser struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
}
