package userControllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/middleware"
	"github.com/junaidrashid-git/restaurant-api/models"
)

type UpdateUserInput struct {
	Name    *string         `json:"name"`
	Phone   *string         `json:"phone"`
	Picture *string         `json:"picture"`
	Address *models.Address `json:"address"`
}

type UpdateRoleInput struct {
	Role string `json:"role" binding:"required"`
}

// GET /api/users/me
func GetProfile(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := env.DB.First(&user, "id = ?", middleware.UserID(c)).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// PUT /api/users/me
func UpdateProfile(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := env.DB.First(&user, "id = ?", middleware.UserID(c)).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}

		updates := map[string]any{}
		if input.Name != nil {
			updates["name"] = strings.TrimSpace(*input.Name)
		}
		if input.Phone != nil {
			updates["phone"] = *input.Phone
		}
		if input.Picture != nil {
			updates["picture"] = *input.Picture
		}
		if a := input.Address; a != nil {
			updates["line1"] = a.Line1
			updates["line2"] = a.Line2
			updates["city"] = a.City
			updates["division"] = a.Division
			updates["postal_code"] = a.PostalCode
		}

		if len(updates) > 0 {
			if err := env.DB.Model(&user).Updates(updates).Error; err != nil {
				apperr.Respond(c, err)
				return
			}
		}
		if err := env.DB.First(&user, "id = ?", user.ID).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// GET /api/admin/users?role=
func GetAllUsers(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := env.DB.
			Select("id", "email", "name", "phone", "picture", "provider", "role", "created_at").
			Order("created_at desc")
		if r := c.Query("role"); r != "" {
			role, ok := models.ParseRole(r)
			if !ok {
				apperr.Respond(c, apperr.BadRequest("unknown role"))
				return
			}
			q = q.Where("role = ?", role)
		}
		var users []models.User
		if err := q.Find(&users).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// PATCH /api/admin/users/:id/role
// Admins cannot change their own role.
func UpdateUserRole(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateRoleInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		role, ok := models.ParseRole(strings.ToLower(strings.TrimSpace(input.Role)))
		if !ok {
			apperr.Respond(c, apperr.BadRequest("unknown role").With("role", input.Role))
			return
		}

		id := c.Param("id")
		if id == middleware.UserID(c) {
			apperr.Respond(c, apperr.Forbidden("you cannot change your own role"))
			return
		}

		var user models.User
		if err := env.DB.First(&user, "id = ?", id).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		from := user.Role
		if err := env.DB.Model(&user).Update("role", role).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		log.WithFields(log.Fields{
			"user_id": user.ID, "from": from, "to": role, "by": middleware.UserID(c),
		}).Info("user role changed")
		c.JSON(http.StatusOK, gin.H{"message": "Role updated", "user": user})
	}
}
