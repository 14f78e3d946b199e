// Package hours decides whether the restaurant is open at a given instant.
package hours

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/models"
)

var ErrClosed = errors.New("restaurant is closed")

type Status struct {
	Open      bool   `json:"is_open"`
	Reason    string `json:"reason"`
	Day       string `json:"day"`
	OpenTime  string `json:"open_time,omitempty"`
	CloseTime string `json:"close_time,omitempty"`
}

// Evaluate is pure: the caller supplies the weekly schedule and the instant,
// already converted to restaurant local time. A window whose close time is not
// after its open time runs past midnight into the next day.
func Evaluate(schedule []models.OperatingHours, at time.Time) Status {
	byDay := make(map[time.Weekday]models.OperatingHours, len(schedule))
	for _, h := range schedule {
		byDay[time.Weekday(h.DayOfWeek)] = h
	}

	day := at.Weekday()
	tod := sinceMidnight(at)
	st := Status{Day: day.String()}

	// Spill-over from yesterday's overnight window.
	if prev, ok := byDay[(day+6)%7]; ok && prev.IsOpen && overnight(prev) && tod < time.Duration(prev.CloseTime) {
		st.Open = true
		st.Reason = fmt.Sprintf("open until %s", prev.CloseTime.String())
		st.OpenTime, st.CloseTime = prev.OpenTime.String(), prev.CloseTime.String()
		return st
	}

	today, ok := byDay[day]
	if !ok {
		st.Reason = fmt.Sprintf("no operating hours configured for %s", day)
		return st
	}
	st.OpenTime, st.CloseTime = today.OpenTime.String(), today.CloseTime.String()
	if !today.IsOpen {
		st.Reason = fmt.Sprintf("closed on %s", day)
		return st
	}

	open, closeAt := time.Duration(today.OpenTime), time.Duration(today.CloseTime)
	switch {
	case tod < open:
		st.Reason = fmt.Sprintf("opens at %s", today.OpenTime.String())
	case overnight(today) || tod < closeAt:
		st.Open = true
		st.Reason = fmt.Sprintf("open until %s", today.CloseTime.String())
	default:
		st.Reason = fmt.Sprintf("closed at %s", today.CloseTime.String())
	}
	return st
}

// Load returns the weekly schedule ordered by day.
func Load(db *gorm.DB) ([]models.OperatingHours, error) {
	var schedule []models.OperatingHours
	if err := db.Order("day_of_week").Find(&schedule).Error; err != nil {
		return nil, err
	}
	return schedule, nil
}

// Check rejects with 403 when the restaurant is closed at the given instant.
func Check(db *gorm.DB, at time.Time) error {
	schedule, err := Load(db)
	if err != nil {
		return apperr.Internal(err)
	}
	st := Evaluate(schedule, at)
	if st.Open {
		return nil
	}
	return apperr.Forbidden("restaurant is closed").
		Wrap(ErrClosed).
		With("reason", st.Reason).
		With("hours", schedule)
}

func overnight(h models.OperatingHours) bool {
	return time.Duration(h.CloseTime) <= time.Duration(h.OpenTime)
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}

// DateLayout is the calendar-day format used in query parameters.
const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD day as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, apperr.BadRequest(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return t, nil
}
