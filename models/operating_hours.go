package models

import "gorm.io/datatypes"

type OperatingHours struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	DayOfWeek int            `gorm:"uniqueIndex;not null" json:"day_of_week"` // time.Weekday, 0 = Sunday
	OpenTime  datatypes.Time `json:"open_time"`
	CloseTime datatypes.Time `json:"close_time"`
	IsOpen    bool           `json:"is_open"`
}
