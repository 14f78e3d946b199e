package staffControllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	orderControllers "github.com/junaidrashid-git/restaurant-api/controllers/order"
	"github.com/junaidrashid-git/restaurant-api/models"
)

type StaffInput struct {
	UserID     *string    `json:"user_id"`
	Name       string     `json:"name" binding:"required"`
	Role       string     `json:"role"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email" binding:"omitempty,email"`
	HourlyRate float64    `json:"hourly_rate" binding:"min=0"`
	Active     *bool      `json:"active"`
	HiredAt    *time.Time `json:"hired_at"`
}

func (in StaffInput) apply(db *gorm.DB, s *models.Staff) error {
	if in.UserID != nil && *in.UserID != "" {
		if err := db.First(&models.User{}, "id = ?", *in.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.BadRequest("user not found").With("user_id", *in.UserID)
			}
			return err
		}
		s.UserID = in.UserID
	}
	s.Name = strings.TrimSpace(in.Name)
	s.Role = strings.ToLower(strings.TrimSpace(in.Role))
	s.Phone = in.Phone
	s.Email = in.Email
	s.HourlyRate = in.HourlyRate
	if in.Active != nil {
		s.Active = *in.Active
	}
	if in.HiredAt != nil {
		s.HiredAt = in.HiredAt.UTC()
	}
	return nil
}

// GET /api/staff?active=true
func GetStaff(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := env.DB.Order("name")
		if c.Query("active") == "true" {
			q = q.Where("active = ?", true)
		}
		var list []models.Staff
		if err := q.Find(&list).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /api/staff/:id
func GetStaffMember(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var s models.Staff
		if err := env.DB.First(&s, id).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

// POST /api/staff
func CreateStaff(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in StaffInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		s := models.Staff{Active: true, HiredAt: env.Clock().UTC()}
		if err := in.apply(env.DB, &s); err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := env.DB.Create(&s).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		log.WithFields(log.Fields{"staff_id": s.ID, "name": s.Name, "role": s.Role}).Info("staff member added")
		c.JSON(http.StatusCreated, s)
	}
}

// PUT /api/staff/:id
func UpdateStaff(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var in StaffInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		var s models.Staff
		if err := env.DB.First(&s, id).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := in.apply(env.DB, &s); err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := env.DB.Save(&s).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

// DELETE /api/staff/:id
// Staff with attendance history are deactivated rather than removed.
func DeleteStaff(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var s models.Staff
		if err := env.DB.First(&s, id).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		var history int64
		if err := env.DB.Model(&models.Attendance{}).Where("staff_id = ?", id).Count(&history).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if history > 0 {
			if err := env.DB.Model(&s).Update("active", false).Error; err != nil {
				apperr.Respond(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Staff member has attendance history and was deactivated"})
			return
		}
		if err := env.DB.Delete(&s).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Staff member deleted successfully"})
	}
}
