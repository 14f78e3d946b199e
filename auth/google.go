package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	firebase "firebase.google.com/go"
	firebaseauth "firebase.google.com/go/auth"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/config"
	"github.com/junaidrashid-git/restaurant-api/models"
)

// GoogleIdentity is what a verified Firebase ID token tells us about the user.
type GoogleIdentity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

type firebaseVerifier struct {
	client    *firebaseauth.Client
	projectID string
}

// NewFirebaseVerifier initializes the Firebase app from the credentials JSON
// held in configuration.
func NewFirebaseVerifier(ctx context.Context, cfg config.Firebase) (GoogleVerifier, error) {
	opt := option.WithCredentialsJSON([]byte(cfg.CredentialsJSON))
	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := fbApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting firebase auth client: %w", err)
	}
	return &firebaseVerifier{client: client, projectID: cfg.ProjectID}, nil
}

func (v *firebaseVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	token, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if token.Audience != v.projectID {
		return nil, errors.New("invalid token audience")
	}
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)
	return &GoogleIdentity{UID: token.UID, Email: email, Name: name, Picture: picture}, nil
}

// UpsertGoogleUser finds the user by Firebase uid (or by e-mail for accounts
// that registered with a password first) and refreshes the profile.
func UpsertGoogleUser(db *gorm.DB, id *GoogleIdentity) (*models.User, error) {
	email := strings.ToLower(id.Email)
	if email == "" {
		return nil, apperr.BadRequest("google account has no e-mail address")
	}

	var user models.User
	err := db.Where("id = ? OR email = ?", id.UID, email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			ID:       id.UID,
			Email:    email,
			Name:     id.Name,
			Picture:  id.Picture,
			Provider: "google",
			Role:     models.RoleCustomer,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := db.Model(&user).Updates(models.User{Name: id.Name, Picture: id.Picture}).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// POST /api/auth/google
func GoogleLoginHandler(env *app.Env, verifier GoogleVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			IDToken string `json:"idToken" binding:"required"`
			GuestID string `json:"guest_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.BadRequest("Invalid request payload"))
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), req.IDToken)
		if err != nil {
			log.WithError(err).Warn("firebase token rejected")
			apperr.Respond(c, apperr.Unauthorized("Invalid Firebase ID token"))
			return
		}

		user, err := UpsertGoogleUser(env.DB, identity)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		respondWithToken(c, env, http.StatusOK, user, req.GuestID)
	}
}
