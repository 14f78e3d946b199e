package hours

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/apptest"
	"github.com/junaidrashid-git/restaurant-api/models"
)

func day(d time.Weekday, openH, closeH int, isOpen bool) models.OperatingHours {
	return models.OperatingHours{
		DayOfWeek: int(d),
		OpenTime:  datatypes.NewTime(openH, 0, 0, 0),
		CloseTime: datatypes.NewTime(closeH, 0, 0, 0),
		IsOpen:    isOpen,
	}
}

// 2024-01-01 is a Monday.
func at(dayOfMonth, hour, min int) time.Time {
	return time.Date(2024, 1, dayOfMonth, hour, min, 0, 0, time.UTC)
}

func TestEvaluate(t *testing.T) {
	schedule := []models.OperatingHours{
		day(time.Monday, 10, 22, true),
		day(time.Tuesday, 10, 22, false),
		day(time.Friday, 18, 2, true), // overnight
	}

	tests := []struct {
		name   string
		at     time.Time
		open   bool
		reason string
	}{
		{"within hours", at(1, 12, 0), true, "open until 22:00:00"},
		{"before opening", at(1, 9, 59), false, "opens at 10:00:00"},
		{"at closing", at(1, 22, 0), false, "closed at 22:00:00"},
		{"closed day", at(2, 12, 0), false, "closed on Tuesday"},
		{"unconfigured day", at(3, 12, 0), false, "no operating hours configured for Wednesday"},
		{"overnight evening", at(5, 23, 30), true, "open until 02:00:00"},
		{"overnight spill", at(6, 1, 15), true, "open until 02:00:00"},
		{"after overnight close", at(6, 2, 0), false, "no operating hours configured for Saturday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Evaluate(schedule, tt.at)
			assert.Equal(t, tt.open, st.Open)
			assert.Equal(t, tt.reason, st.Reason)
		})
	}
}

func TestCheck(t *testing.T) {
	db := apptest.OpenDB(t)
	require.NoError(t, db.Create(&[]models.OperatingHours{day(time.Monday, 10, 22, true)}).Error)

	require.NoError(t, Check(db, at(1, 11, 0)))

	err := Check(db, at(1, 23, 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClosed))

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusForbidden, appErr.Status)
	assert.Equal(t, "closed at 22:00:00", appErr.Fields["reason"])
}
