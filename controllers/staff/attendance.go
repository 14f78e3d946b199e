package staffControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	orderControllers "github.com/junaidrashid-git/restaurant-api/controllers/order"
	"github.com/junaidrashid-git/restaurant-api/hours"
	"github.com/junaidrashid-git/restaurant-api/models"
	"github.com/junaidrashid-git/restaurant-api/pricing"
)

// -------- Core Logic --------

func lockActiveStaff(tx *gorm.DB, staffID uint) (*models.Staff, error) {
	var s models.Staff
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, staffID).Error; err != nil {
		return nil, err
	}
	if !s.Active {
		return nil, apperr.BadRequest("staff member is not active")
	}
	return &s, nil
}

// CheckIn opens an attendance row dated by the restaurant's calendar day.
// A staff member can have only one open row at a time.
func CheckIn(env *app.Env, staffID uint) (*models.Attendance, error) {
	now := env.Clock()
	row := models.Attendance{
		StaffID:  staffID,
		WorkDate: now.Format(hours.DateLayout),
		CheckIn:  now.UTC(),
	}
	err := env.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := lockActiveStaff(tx, staffID); err != nil {
			return err
		}
		var open int64
		if err := tx.Model(&models.Attendance{}).
			Where("staff_id = ? AND check_out IS NULL", staffID).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return apperr.Conflict("already checked in")
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"staff_id": staffID, "work_date": row.WorkDate}).Info("checked in")
	return &row, nil
}

// CheckOut closes the open attendance row and records the hours worked.
func CheckOut(env *app.Env, staffID uint) (*models.Attendance, error) {
	now := env.Clock().UTC()
	var row models.Attendance
	err := env.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := lockActiveStaff(tx, staffID); err != nil {
			return err
		}
		err := tx.Where("staff_id = ? AND check_out IS NULL", staffID).
			Order("check_in DESC").First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Conflict("not checked in")
		}
		if err != nil {
			return err
		}
		row.CheckOut = &now
		row.HoursWorked = pricing.Round2(now.Sub(row.CheckIn).Hours())
		return tx.Model(&row).Updates(map[string]any{
			"check_out":    now,
			"hours_worked": row.HoursWorked,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"staff_id": staffID, "hours": row.HoursWorked}).Info("checked out")
	return &row, nil
}

// -------- Handlers --------

// POST /api/staff/:id/check-in
func CheckInHandler(env *app.Env) gin.HandlerFunc {
	return attendanceAction(env, CheckIn, http.StatusCreated, "Checked in")
}

// POST /api/staff/:id/check-out
func CheckOutHandler(env *app.Env) gin.HandlerFunc {
	return attendanceAction(env, CheckOut, http.StatusOK, "Checked out")
}

func attendanceAction(env *app.Env, action func(*app.Env, uint) (*models.Attendance, error), status int, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		row, err := action(env, id)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(status, gin.H{"message": msg, "attendance": row})
	}
}

// GET /api/staff/:id/attendance?from=YYYY-MM-DD&to=YYYY-MM-DD
func GetStaffAttendance(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		q := env.DB.Where("staff_id = ?", id).Order("check_in DESC")
		for param, cond := range map[string]string{"from": "work_date >= ?", "to": "work_date <= ?"} {
			if v := c.Query(param); v != "" {
				if _, err := hours.ParseDate(v, env.Clock().Location()); err != nil {
					apperr.Respond(c, err)
					return
				}
				q = q.Where(cond, v)
			}
		}
		var rows []models.Attendance
		if err := q.Find(&rows).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		var total float64
		for _, r := range rows {
			total += r.HoursWorked
		}
		c.JSON(http.StatusOK, gin.H{"attendance": rows, "total_hours": pricing.Round2(total)})
	}
}

// GET /api/attendance?date=YYYY-MM-DD (default today)
func GetAttendanceByDate(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.DefaultQuery("date", env.Clock().Format(hours.DateLayout))
		if _, err := hours.ParseDate(date, env.Clock().Location()); err != nil {
			apperr.Respond(c, err)
			return
		}
		var rows []models.Attendance
		if err := env.DB.Preload("Staff").Where("work_date = ?", date).
			Order("check_in").Find(&rows).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}
