package hoursControllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/database"
	"github.com/junaidrashid-git/restaurant-api/hours"
	"github.com/junaidrashid-git/restaurant-api/models"
)

type DayInput struct {
	OpenTime  string `json:"open_time" binding:"required"`
	CloseTime string `json:"close_time" binding:"required"`
	IsOpen    bool   `json:"is_open"`
}

// GET /api/operating-hours
func GetOperatingHours(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		schedule, err := hours.Load(env.DB)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, schedule)
	}
}

// GET /api/operating-hours/status?at=RFC3339
func GetStatus(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		at := env.Clock()
		if v := c.Query("at"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				apperr.Respond(c, apperr.BadRequest("at must be RFC3339"))
				return
			}
			at = t.In(at.Location())
		}
		schedule, err := hours.Load(env.DB)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, hours.Evaluate(schedule, at))
	}
}

// PUT /api/operating-hours/:day
// day is 0 (Sunday) to 6 (Saturday).
func UpdateDay(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		day, err := strconv.Atoi(c.Param("day"))
		if err != nil || day < 0 || day > 6 {
			apperr.Respond(c, apperr.BadRequest("day must be 0 (Sunday) to 6 (Saturday)"))
			return
		}
		var in DayInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		open, err := database.ParseClock(in.OpenTime)
		if err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		closeAt, err := database.ParseClock(in.CloseTime)
		if err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}

		row := models.OperatingHours{DayOfWeek: day, OpenTime: open, CloseTime: closeAt, IsOpen: in.IsOpen}
		if err := env.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "day_of_week"}},
			DoUpdates: clause.AssignmentColumns([]string{"open_time", "close_time", "is_open"}),
		}).Create(&row).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := env.DB.First(&row, "day_of_week = ?", day).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		log.WithFields(log.Fields{
			"day": time.Weekday(day).String(), "open": row.OpenTime.String(), "close": row.CloseTime.String(), "is_open": row.IsOpen,
		}).Info("operating hours updated")
		c.JSON(http.StatusOK, row)
	}
}
