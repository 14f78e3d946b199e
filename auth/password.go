package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/models"
)

var ErrBadCredentials = errors.New("invalid email or password")

type RegisterRequest struct {
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required,min=8"`
	Name     string         `json:"name" binding:"required"`
	Phone    string         `json:"phone"`
	Address  models.Address `json:"address"`
	GuestID  string         `json:"guest_id"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	GuestID  string `json:"guest_id"`
}

// -------- Core Logic --------

// Register creates a customer account with a bcrypt-hashed password.
func Register(db *gorm.DB, req RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Conflict("email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		Phone:        req.Phone,
		Provider:     "password",
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
		Address:      req.Address,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate checks email and password. Unknown email and wrong password
// fail the same way.
func Authenticate(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized(ErrBadCredentials.Error()).Wrap(ErrBadCredentials)
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized(ErrBadCredentials.Error()).Wrap(ErrBadCredentials)
	}
	return &user, nil
}

// -------- Handlers --------

// POST /api/auth/register
func RegisterHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		user, err := Register(env.DB, req)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		respondWithToken(c, env, http.StatusCreated, user, req.GuestID)
	}
}

// POST /api/auth/login
func LoginHandler(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		user, err := Authenticate(env.DB, req.Email, req.Password)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		respondWithToken(c, env, http.StatusOK, user, req.GuestID)
	}
}

func respondWithToken(c *gin.Context, env *app.Env, status int, user *models.User, guestID string) {
	token, err := IssueToken(env.Config.Auth.JWTSecret, env.Config.Auth.TokenTTL, *user)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	mergeStatus := "no-guest-cart"
	if guestID != "" {
		merged, err := MergeGuestCart(env.DB, guestID, user.ID)
		switch {
		case err != nil:
			log.WithError(err).WithField("guest_id", guestID).Warn("guest cart merge failed")
			mergeStatus = "merge-failed"
		case merged:
			mergeStatus = "merged-success"
		default:
			mergeStatus = "guest-cart-empty"
		}
	}

	c.JSON(status, gin.H{
		"message":      "Login successful",
		"token":        token,
		"user":         user,
		"merge_status": mergeStatus,
	})
}
