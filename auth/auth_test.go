package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/apptest"
	"github.com/junaidrashid-git/restaurant-api/models"
)

func TestTokenRoundTrip(t *testing.T) {
	user := models.User{ID: "u1", Email: "a@b.c", Role: models.RoleKitchen, Name: "Kasun"}
	raw, err := IssueToken("s3cret", time.Hour, user)
	require.NoError(t, err)

	claims, err := ParseToken("s3cret", raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleKitchen, claims.Role)

	_, err = ParseToken("other", raw)
	assert.Error(t, err)

	expired, err := IssueToken("s3cret", -time.Minute, user)
	require.NoError(t, err)
	_, err = ParseToken("s3cret", expired)
	assert.Error(t, err)

	_, err = IssueToken("", time.Hour, user)
	assert.Error(t, err)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	env, _ := apptest.NewEnv(t)

	user, err := Register(env.DB, RegisterRequest{Email: "Nimal@Example.com ", Password: "password1", Name: "Nimal"})
	require.NoError(t, err)
	assert.Equal(t, "nimal@example.com", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "password1", user.PasswordHash)

	_, err = Register(env.DB, RegisterRequest{Email: "nimal@example.com", Password: "password2", Name: "Other"})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.Status)

	got, err := Authenticate(env.DB, "NIMAL@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = Authenticate(env.DB, "nimal@example.com", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = Authenticate(env.DB, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestMergeGuestCart(t *testing.T) {
	env, _ := apptest.NewEnv(t)
	db := env.DB
	require.NoError(t, db.Create(&models.GuestUser{ID: "guest_1", ExpiresAt: time.Now().Add(time.Hour)}).Error)

	guest := models.Cart{UserID: "guest_1", Items: []models.CartItem{
		{MenuID: 1, Name: "Kottu", Price: 900, Quantity: 2},
		{MenuID: 2, Name: "Tea", Price: 100, Quantity: 1},
	}}
	require.NoError(t, db.Create(&guest).Error)
	user := models.Cart{UserID: "u1", Items: []models.CartItem{{MenuID: 1, Name: "Kottu", Price: 900, Quantity: 1}}}
	require.NoError(t, db.Create(&user).Error)

	merged, err := MergeGuestCart(db, "guest_1", "u1")
	require.NoError(t, err)
	assert.True(t, merged)

	var cart models.Cart
	require.NoError(t, db.Preload("Items").Where("user_id = ?", "u1").First(&cart).Error)
	qty := map[uint]int{}
	for _, it := range cart.Items {
		qty[it.MenuID] = it.Quantity
	}
	assert.Equal(t, map[uint]int{1: 3, 2: 1}, qty)

	var left int64
	db.Model(&models.Cart{}).Where("user_id = ?", "guest_1").Count(&left)
	assert.Zero(t, left)

	merged, err = MergeGuestCart(db, "guest_missing", "u1")
	require.NoError(t, err)
	assert.False(t, merged)
}

func TestMergeOnlyTakesGuestCarts(t *testing.T) {
	env, _ := apptest.NewEnv(t)
	db := env.DB

	mine := models.Cart{UserID: "u1", Items: []models.CartItem{{MenuID: 1, Name: "Kottu", Price: 900, Quantity: 2}}}
	theirs := models.Cart{UserID: "u2", Items: []models.CartItem{{MenuID: 2, Name: "Tea", Price: 100, Quantity: 1}}}
	require.NoError(t, db.Create(&mine).Error)
	require.NoError(t, db.Create(&theirs).Error)

	for _, from := range []string{"u1", "u2"} {
		merged, err := MergeGuestCart(db, from, "u1")
		require.NoError(t, err)
		assert.False(t, merged, "merge from %s", from)
	}

	items := func(owner string) int64 {
		var n int64
		require.NoError(t, db.Model(&models.CartItem{}).
			Joins("JOIN carts ON carts.cart_id = cart_items.cart_id").
			Where("carts.user_id = ?", owner).Count(&n).Error)
		return n
	}
	assert.EqualValues(t, 1, items("u1"))
	assert.EqualValues(t, 1, items("u2"))
}

type fakeVerifier struct {
	id  *GoogleIdentity
	err error
}

func (f fakeVerifier) Verify(context.Context, string) (*GoogleIdentity, error) { return f.id, f.err }

func TestGoogleLoginHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env, _ := apptest.NewEnv(t)

	existing, err := Register(env.DB, RegisterRequest{Email: "sam@example.com", Password: "password1", Name: "Sam"})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/google", GoogleLoginHandler(env, fakeVerifier{id: &GoogleIdentity{
		UID: "firebase-uid", Email: "Sam@example.com", Name: "Sam P", Picture: "p.png",
	}}))
	r.POST("/google-bad", GoogleLoginHandler(env, fakeVerifier{err: errors.New("revoked")}))

	body, _ := json.Marshal(map[string]string{"idToken": "x"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/google", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, existing.ID, resp.User.ID)
	claims, err := ParseToken(apptest.JWTSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, claims.UserID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/google-bad", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateGuestUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env, _ := apptest.NewEnv(t)

	r := gin.New()
	r.POST("/guest", CreateGuestUser(env))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/guest", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		GuestID string `json:"guest_id"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	claims, err := ParseToken(apptest.JWTSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.GuestID, claims.UserID)
	assert.Equal(t, models.RoleGuest, claims.Role)
}
