package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/junaidrashid-git/restaurant-api/config"
	"github.com/junaidrashid-git/restaurant-api/models"
)

// Seed upserts the reference data from a seed file. Running it twice is harmless.
func Seed(db *gorm.DB, seed *config.Seed) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if seed.Admin != nil {
			if err := seedAdmin(tx, seed); err != nil {
				return err
			}
		}

		categoryIDs := map[string]uint{}
		for _, name := range seed.Categories {
			cat := models.Category{Name: name}
			if err := tx.Where(models.Category{Name: name}).FirstOrCreate(&cat).Error; err != nil {
				return fmt.Errorf("category %q: %w", name, err)
			}
			categoryIDs[name] = cat.ID
		}

		for _, m := range seed.Menu {
			item := models.MenuItem{
				Name:            m.Name,
				Description:     m.Description,
				Price:           m.Price,
				IsAvailable:     true,
				PreparationTime: m.PreparationTime,
			}
			if id, ok := categoryIDs[m.Category]; ok {
				item.CategoryID = &id
			}
			if err := tx.Where(models.MenuItem{Name: m.Name}).
				Assign(models.MenuItem{Price: m.Price, Description: m.Description}).
				FirstOrCreate(&item).Error; err != nil {
				return fmt.Errorf("menu item %q: %w", m.Name, err)
			}
		}

		for _, z := range seed.DeliveryZones {
			status := z.Status
			if status == "" {
				status = models.ZoneStatusActive
			}
			zone := models.DeliveryZone{Name: z.Name, DeliveryFee: z.DeliveryFee, EstimatedTime: z.EstimatedTime, Status: status}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"delivery_fee", "estimated_time", "status"}),
			}).Create(&zone).Error; err != nil {
				return fmt.Errorf("delivery zone %q: %w", z.Name, err)
			}
		}

		for _, t := range seed.Tables {
			table := models.Table{TableNo: t.TableNo, Capacity: t.Capacity, Location: t.Location, IsActive: true}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "table_no"}},
				DoUpdates: clause.AssignmentColumns([]string{"capacity", "location"}),
			}).Create(&table).Error; err != nil {
				return fmt.Errorf("table %d: %w", t.TableNo, err)
			}
		}

		for _, h := range seed.OperatingHours {
			open, err := ParseClock(h.Open)
			if err != nil {
				return fmt.Errorf("operating hours day %d: %w", h.Day, err)
			}
			closeAt, err := ParseClock(h.Close)
			if err != nil {
				return fmt.Errorf("operating hours day %d: %w", h.Day, err)
			}
			row := models.OperatingHours{DayOfWeek: h.Day, OpenTime: open, CloseTime: closeAt, IsOpen: h.IsOpen}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "day_of_week"}},
				DoUpdates: clause.AssignmentColumns([]string{"open_time", "close_time", "is_open"}),
			}).Create(&row).Error; err != nil {
				return fmt.Errorf("operating hours day %d: %w", h.Day, err)
			}
		}

		log.WithFields(log.Fields{
			"categories": len(seed.Categories),
			"menu":       len(seed.Menu),
			"zones":      len(seed.DeliveryZones),
			"tables":     len(seed.Tables),
			"hours":      len(seed.OperatingHours),
		}).Info("seed applied")
		return nil
	})
}

func seedAdmin(tx *gorm.DB, seed *config.Seed) error {
	var existing models.User
	err := tx.Where("email = ?", strings.ToLower(seed.Admin.Email)).First(&existing).Error
	if err == nil {
		return tx.Model(&existing).Update("role", models.RoleAdmin).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return tx.Create(&models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(seed.Admin.Email),
		Name:         seed.Admin.Name,
		Provider:     "password",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}).Error
}

// ParseClock parses "HH:MM" or "HH:MM:SS" into a time-of-day column value.
func ParseClock(s string) (datatypes.Time, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q, want HH:MM", s)
}
