package models

import "time"

type Staff struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *string   `gorm:"index" json:"user_id,omitempty"`
	Name       string    `gorm:"not null" json:"name"`
	Role       string    `json:"role"` // chef, waiter, rider, cashier...
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	HourlyRate float64   `json:"hourly_rate"`
	Active     bool      `gorm:"not null" json:"active"`
	HiredAt    time.Time `json:"hired_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Attendance struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	StaffID     uint       `gorm:"index;not null" json:"staff_id"`
	Staff       *Staff     `json:"staff,omitempty"`
	WorkDate    string     `gorm:"type:VARCHAR(10);index" json:"work_date"` // YYYY-MM-DD in restaurant time
	CheckIn     time.Time  `json:"check_in"`
	CheckOut    *time.Time `json:"check_out,omitempty"`
	HoursWorked float64    `json:"hours_worked"`
}
