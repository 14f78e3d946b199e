// Package app holds the dependencies every handler is built from.
package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/junaidrashid-git/restaurant-api/config"
	"github.com/junaidrashid-git/restaurant-api/notify"
	"github.com/junaidrashid-git/restaurant-api/realtime"
	"github.com/junaidrashid-git/restaurant-api/uploads"
)

type Env struct {
	DB       *gorm.DB
	Config   *config.Config
	Notifier notify.Notifier
	Hub      *realtime.Hub
	Uploads  uploads.Store

	// Now is replaced in tests to pin the clock.
	Now func() time.Time
}

// Clock returns the current instant in the restaurant's timezone.
func (e *Env) Clock() time.Time {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	t := now()
	if loc := e.Config.Business.Location; loc != nil {
		t = t.In(loc)
	}
	return t
}
