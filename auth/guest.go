package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/models"
)

// POST /api/auth/guest
func CreateGuestUser(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		guest := models.GuestUser{
			ID:        "guest_" + generateRandomString(16),
			ExpiresAt: time.Now().Add(guestTTL).UTC(), // JWT expiry is checked against wall time
		}
		if err := env.DB.Create(&guest).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		token, err := issueGuestToken(env.Config.Auth.JWTSecret, guest.ID, guest.ExpiresAt)
		if err != nil {
			apperr.Respond(c, apperr.Internal(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"guest_id":   guest.ID,
			"token":      token,
			"expires_at": guest.ExpiresAt,
		})
	}
}

func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)
}
