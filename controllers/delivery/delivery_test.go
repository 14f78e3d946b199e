package deliveryControllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apptest"
	"github.com/junaidrashid-git/restaurant-api/models"
	"github.com/junaidrashid-git/restaurant-api/notify"
)

type caller struct {
	id   string
	role models.Role
}

func newRouter(env *app.Env, who *caller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", who.id)
		c.Set("role", who.role)
	})
	r.GET("/zones", GetZones(env))
	r.POST("/zones", CreateZone(env))
	r.PUT("/zones/:id", UpdateZone(env))
	r.DELETE("/zones/:id", DeleteZone(env))
	r.PUT("/orders/:id/assign/:personId", AssignHandler(env))
	r.PATCH("/orders/:id/status", UpdateDeliveryStatusHandler(env))
	r.GET("/orders/my", GetMyDeliveriesHandler(env))
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestZonesCRUD(t *testing.T) {
	env, _ := apptest.NewEnv(t)
	who := &caller{id: "admin", role: models.RoleAdmin}
	r := newRouter(env, who)

	w := do(r, http.MethodPost, "/zones", ZoneInput{Name: "Kollupitiya", DeliveryFee: 150, EstimatedTime: 30})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var zone models.DeliveryZone
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &zone))
	assert.Equal(t, models.ZoneStatusActive, zone.Status)

	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/zones", ZoneInput{Name: "kollupitiya"}).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/zones", ZoneInput{Name: "X", DeliveryFee: -1}).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/zones", ZoneInput{Name: "X", Status: "paused"}).Code)

	id := strconv.FormatUint(uint64(zone.ID), 10)
	w = do(r, http.MethodPut, "/zones/"+id, ZoneInput{Name: "Kollupitiya", DeliveryFee: 200, Status: "inactive"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var zones []models.DeliveryZone
	who.role = models.RoleCustomer
	require.NoError(t, json.Unmarshal(do(r, http.MethodGet, "/zones?all=true", nil).Body.Bytes(), &zones))
	assert.Empty(t, zones, "customers only see active zones")

	who.role = models.RoleAdmin
	require.NoError(t, json.Unmarshal(do(r, http.MethodGet, "/zones?all=true", nil).Body.Bytes(), &zones))
	require.Len(t, zones, 1)
	assert.Equal(t, 200.0, zones[0].DeliveryFee)

	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/zones/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/zones/"+id, nil).Code)
}

func seedDeliveryOrder(t *testing.T, env *app.Env) models.Order {
	t.Helper()
	db := env.DB
	require.NoError(t, db.Create(&models.User{ID: "cust", Email: "c@example.com", Name: "Chamari", Role: models.RoleCustomer}).Error)
	require.NoError(t, db.Create(&models.User{ID: "rider1", Email: "r1@example.com", Role: models.RoleDelivery}).Error)
	require.NoError(t, db.Create(&models.User{ID: "rider2", Email: "r2@example.com", Role: models.RoleDelivery}).Error)
	require.NoError(t, db.Create(&models.User{ID: "cook", Email: "k@example.com", Role: models.RoleKitchen}).Error)

	pending := models.DeliveryStatusPending
	order := models.Order{
		OrderRef:       "ref-1",
		UserID:         "cust",
		OrderType:      models.OrderTypeDelivery,
		OrderStatus:    models.OrderStatusInProgress,
		KitchenStatus:  models.KitchenStatusReady,
		DeliveryStatus: &pending,
		PaymentStatus:  models.PaymentStatusPending,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestDeliveryFlow(t *testing.T) {
	env, rec := apptest.NewEnv(t)
	order := seedDeliveryOrder(t, env)
	id := strconv.FormatUint(uint64(order.ID), 10)

	admin := newRouter(env, &caller{id: "admin", role: models.RoleAdmin})
	assert.Equal(t, http.StatusBadRequest, do(admin, http.MethodPut, "/orders/"+id+"/assign/cook", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(admin, http.MethodPut, "/orders/"+id+"/assign/ghost", nil).Code)

	rider := newRouter(env, &caller{id: "rider1", role: models.RoleDelivery})
	w := do(rider, http.MethodPatch, "/orders/"+id+"/status", map[string]string{"status": "on_the_way"})
	assert.Equal(t, http.StatusForbidden, w.Code, "not assigned yet")

	require.Equal(t, http.StatusOK, do(admin, http.MethodPut, "/orders/"+id+"/assign/rider1", nil).Code)

	other := newRouter(env, &caller{id: "rider2", role: models.RoleDelivery})
	assert.Equal(t, http.StatusForbidden, do(other, http.MethodPatch, "/orders/"+id+"/status", map[string]string{"status": "on_the_way"}).Code)

	w = do(rider, http.MethodPatch, "/orders/"+id+"/status", map[string]string{"status": "on_the_way"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(rider, http.MethodPatch, "/orders/"+id+"/status", map[string]string{"status": "delivered"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.Order
	require.NoError(t, env.DB.First(&stored, order.ID).Error)
	assert.Equal(t, models.DeliveryStatusDelivered, *stored.DeliveryStatus)
	assert.Equal(t, models.OrderStatusCompleted, stored.OrderStatus)

	var got []string
	for _, ev := range rec.Events() {
		got = append(got, ev.Axis+"/"+ev.NewStatus)
		assert.Equal(t, notify.EventOrderStatus, ev.Type)
		assert.Equal(t, "c@example.com", ev.Email)
	}
	assert.Equal(t, []string{"delivery/on_the_way", "delivery/delivered"}, got)

	// Terminal orders cannot be reassigned.
	assert.Equal(t, http.StatusConflict, do(admin, http.MethodPut, "/orders/"+id+"/assign/rider2", nil).Code)

	var mine []models.Order
	require.NoError(t, json.Unmarshal(do(rider, http.MethodGet, "/orders/my", nil).Body.Bytes(), &mine))
	assert.Len(t, mine, 1)
}
