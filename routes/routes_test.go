package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apptest"
	"github.com/junaidrashid-git/restaurant-api/auth"
	"github.com/junaidrashid-git/restaurant-api/models"
)

func newServer(t *testing.T) (*app.Env, *apptest.Recorder, *gin.Engine) {
	t.Helper()
	env, rec := apptest.NewEnv(t)
	// Monday 2024-01-01 12:00 UTC
	env.Now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupRoutes(r, env, nil)
	return env, rec, r
}

func call(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, env *app.Env, id string, role models.Role) string {
	t.Helper()
	raw, err := auth.IssueToken(env.Config.Auth.JWTSecret, time.Hour, models.User{ID: id, Role: role})
	require.NoError(t, err)
	return raw
}

func TestAccessControl(t *testing.T) {
	env, _, r := newServer(t)
	customer := tokenFor(t, env, "c1", models.RoleCustomer)
	admin := tokenFor(t, env, "a1", models.RoleAdmin)
	kitchen := tokenFor(t, env, "k1", models.RoleKitchen)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"public menu", http.MethodGet, "/api/menu", "", http.StatusOK},
		{"public hours", http.MethodGet, "/api/operating-hours", "", http.StatusOK},
		{"public tables", http.MethodGet, "/api/tables", "", http.StatusOK},
		{"menu write needs token", http.MethodPost, "/api/menu", "", http.StatusUnauthorized},
		{"menu write needs admin", http.MethodDelete, "/api/menu/1", customer, http.StatusForbidden},
		{"cart needs token", http.MethodGet, "/api/cart", "", http.StatusUnauthorized},
		{"cart", http.MethodGet, "/api/cart", customer, http.StatusOK},
		{"admin users", http.MethodGet, "/api/admin/users", admin, http.StatusOK},
		{"admin users as customer", http.MethodGet, "/api/admin/users", customer, http.StatusForbidden},
		{"kitchen queue", http.MethodGet, "/api/kitchen/orders", kitchen, http.StatusOK},
		{"kitchen queue as customer", http.MethodGet, "/api/kitchen/orders", customer, http.StatusForbidden},
		{"reports", http.MethodGet, "/api/reports/sales", admin, http.StatusOK},
		{"inventory as kitchen", http.MethodGet, "/api/ingredients", kitchen, http.StatusForbidden},
		{"google disabled", http.MethodPost, "/api/auth/google", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(r, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestAdminSeesInactiveTables(t *testing.T) {
	env, _, r := newServer(t)
	require.NoError(t, env.DB.Create(&models.Table{TableNo: 1, Capacity: 2, IsActive: true}).Error)
	require.NoError(t, env.DB.Create(&models.Table{TableNo: 2, Capacity: 4, IsActive: false}).Error)

	count := func(token string) int {
		var tables []models.Table
		require.NoError(t, json.Unmarshal(call(r, http.MethodGet, "/api/tables?all=true", token, nil).Body.Bytes(), &tables))
		return len(tables)
	}
	assert.Equal(t, 1, count(""))
	assert.Equal(t, 1, count(tokenFor(t, env, "c1", models.RoleCustomer)))
	assert.Equal(t, 2, count(tokenFor(t, env, "a1", models.RoleAdmin)))
}

// A guest fills a cart, signs up, checks out, and the kitchen picks it up.
func TestGuestToKitchenFlow(t *testing.T) {
	env, rec, r := newServer(t)
	kottu := models.MenuItem{Name: "Chicken Kottu", Price: 950, IsAvailable: true}
	require.NoError(t, env.DB.Create(&kottu).Error)
	require.NoError(t, env.DB.Create(&models.OperatingHours{
		DayOfWeek: int(time.Monday),
		OpenTime:  datatypes.NewTime(9, 0, 0, 0),
		CloseTime: datatypes.NewTime(22, 0, 0, 0),
		IsOpen:    true,
	}).Error)

	var guest struct {
		GuestID string `json:"guest_id"`
		Token   string `json:"token"`
	}
	w := call(r, http.MethodPost, "/api/auth/guest", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &guest))

	w = call(r, http.MethodPost, "/api/cart", guest.Token, gin.H{"menu_id": kottu.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPost, "/api/orders/checkout", guest.Token, gin.H{"order_type": "Takeaway"}).Code)

	var login struct {
		Token       string `json:"token"`
		MergeStatus string `json:"merge_status"`
	}
	w = call(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "sahan@example.com", "password": "kottu-lover", "name": "Sahan", "guest_id": guest.GuestID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, "merged-success", login.MergeStatus)

	var placed struct {
		Order models.Order `json:"order"`
	}
	w = call(r, http.MethodPost, "/api/orders/checkout", login.Token, gin.H{"order_type": "Takeaway"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &placed))
	assert.Equal(t, 1995.0, placed.Order.TotalAmount)

	kitchen := tokenFor(t, env, "k1", models.RoleKitchen)
	path := "/api/orders/" + strconv.FormatUint(uint64(placed.Order.ID), 10) + "/kitchen-status"
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPatch, path, login.Token, gin.H{"status": "Preparing"}).Code)
	w = call(r, http.MethodPatch, path, kitchen, gin.H{"status": "Preparing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var mine []models.Order
	require.NoError(t, json.Unmarshal(call(r, http.MethodGet, "/api/orders/my", login.Token, nil).Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, models.KitchenStatusPreparing, mine[0].KitchenStatus)
	assert.Equal(t, models.OrderStatusInProgress, mine[0].OrderStatus)
	assert.NotEmpty(t, rec.Events())
}
