// Package apptest builds Envs on throwaway databases for handler tests.
package apptest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/config"
	"github.com/junaidrashid-git/restaurant-api/database"
	"github.com/junaidrashid-git/restaurant-api/notify"
	"github.com/junaidrashid-git/restaurant-api/uploads"
)

const JWTSecret = "test-secret"

// NewEnv returns an Env on a fresh in-memory database with a recording
// notifier and no websocket hub.
func NewEnv(t testing.TB) (*app.Env, *Recorder) {
	t.Helper()
	rec := &Recorder{}
	cfg := &config.Config{
		Auth: config.Auth{JWTSecret: JWTSecret, TokenTTL: time.Hour},
		Business: config.Business{
			Location:           time.UTC,
			ServiceFeeRate:     0.05,
			ReservationMinutes: 90,
		},
		Telr: config.Telr{Mode: "sandbox", Currency: "LKR"},
	}
	env := &app.Env{
		DB:       OpenDB(t),
		Config:   cfg,
		Notifier: rec,
		Uploads:  uploads.Store{Dir: t.TempDir()},
	}
	return env, rec
}

// OpenDB returns a migrated in-memory SQLite database private to t.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection: a second one would see SQLITE_LOCKED while a transaction is open.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *Recorder) Publish(_ context.Context, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}
