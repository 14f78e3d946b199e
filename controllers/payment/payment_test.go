package paymentControllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apptest"
	"github.com/junaidrashid-git/restaurant-api/config"
	"github.com/junaidrashid-git/restaurant-api/middleware"
	"github.com/junaidrashid-git/restaurant-api/models"
)

type fakeTelr struct {
	*httptest.Server
	last map[string]any
	fail bool
}

func newFakeTelr(t *testing.T) *fakeTelr {
	f := &fakeTelr{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.last))
		if f.fail {
			w.Write([]byte(`{"error":{"message":"E01","note":"Invalid request"}}`))
			return
		}
		w.Write([]byte(`{"order":{"ref":"TELR-REF-1","url":"https://secure.telr.com/gateway/process.html?o=TELR-REF-1"}}`))
	}))
	t.Cleanup(f.Close)
	return f
}

func seedOrder(t *testing.T, env *app.Env) models.Order {
	t.Helper()
	require.NoError(t, env.DB.Create(&models.User{
		ID: "u1", Email: "amaya@example.com", Name: "Amaya", Phone: "0771234567",
		Address: models.Address{Line1: "12 Galle Rd", City: "Colombo"},
	}).Error)
	order := models.Order{
		OrderRef:      "20240101-abc",
		UserID:        "u1",
		OrderType:     models.OrderTypeTakeaway,
		OrderStatus:   models.OrderStatusPending,
		KitchenStatus: models.KitchenStatusPending,
		PaymentType:   models.PaymentTypeCard,
		PaymentStatus: models.PaymentStatusPending,
		TotalAmount:   1260.5,
	}
	require.NoError(t, env.DB.Create(&order).Error)
	return order
}

func newRouter(env *app.Env, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	r.POST("/payments/orders/:id", CreatePaymentHandler(env))
	r.POST("/payments/webhook", middleware.TelrWebhookAuth(env.Config.Telr), WebhookHandler(env))
	return r
}

func post(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	return w
}

func postForm(r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePayment(t *testing.T) {
	env, _ := apptest.NewEnv(t)
	telr := newFakeTelr(t)
	env.Config.Telr = config.Telr{StoreID: 1234, AuthKey: "key", APIURL: telr.URL, Mode: "sandbox", Currency: "LKR"}
	order := seedOrder(t, env)
	path := "/payments/orders/" + strconv.FormatUint(uint64(order.ID), 10)

	assert.Equal(t, http.StatusNotFound, post(newRouter(env, "someone-else"), path).Code)

	w := post(newRouter(env, "u1"), path)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res PaymentResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, PaymentResult{
		PaymentURL: "https://secure.telr.com/gateway/process.html?o=TELR-REF-1",
		TelrRef:    "TELR-REF-1",
		OrderRef:   "20240101-abc",
		Amount:     "1260.50",
		Currency:   "LKR",
	}, res)

	sent := telr.last["order"].(map[string]any)
	assert.Equal(t, "20240101-abc", sent["cartid"])
	assert.Equal(t, "1260.50", sent["amount"])
	assert.Equal(t, 1.0, sent["test"], "sandbox mode flags test transactions")
	assert.Equal(t, "amaya@example.com", telr.last["customer"].(map[string]any)["email"])

	telr.fail = true
	assert.Equal(t, http.StatusBadGateway, post(newRouter(env, "u1"), path).Code)

	require.NoError(t, env.DB.Model(&order).Update("payment_status", models.PaymentStatusPaid).Error)
	assert.Equal(t, http.StatusConflict, post(newRouter(env, "u1"), path).Code)
}

func TestCreatePaymentNotConfigured(t *testing.T) {
	env, _ := apptest.NewEnv(t)
	order := seedOrder(t, env)
	w := post(newRouter(env, "u1"), "/payments/orders/"+strconv.FormatUint(uint64(order.ID), 10))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func signed(secret string, form url.Values) url.Values {
	form.Set("tran_check", middleware.TelrSignature(secret, form))
	return form
}

func TestWebhook(t *testing.T) {
	env, _ := apptest.NewEnv(t)
	env.Config.Telr = config.Telr{Mode: "live", WebhookSecret: "s3cret", Currency: "LKR"}
	order := seedOrder(t, env)
	r := newRouter(env, "")

	form := func(status, amount string) url.Values {
		return url.Values{
			"tran_cartid": {order.OrderRef}, "tran_status": {status},
			"tran_amount": {amount}, "tran_ref": {"0300000001"},
		}
	}

	assert.Equal(t, http.StatusForbidden, postForm(r, form("A", "1260.50")).Code, "unsigned")
	assert.Equal(t, http.StatusOK, postForm(r, signed("s3cret", form("H", "1260.50"))).Code, "on hold is ignored")
	assert.Equal(t, http.StatusBadRequest, postForm(r, signed("s3cret", form("A", "10.00"))).Code)

	require.Equal(t, http.StatusOK, postForm(r, signed("s3cret", form("D", "1260.50"))).Code)
	var stored models.Order
	require.NoError(t, env.DB.First(&stored, order.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, stored.PaymentStatus)

	w := postForm(r, signed("s3cret", form("A", "1260.5")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, env.DB.First(&stored, order.ID).Error)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)

	// A late decline after payment is acknowledged without changing anything.
	w = postForm(r, signed("s3cret", form("D", "1260.50")))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "not changed")
	require.NoError(t, env.DB.First(&stored, order.ID).Error)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)

	missing := signed("s3cret", url.Values{"tran_cartid": {"nope"}, "tran_status": {"A"}})
	assert.Equal(t, http.StatusNotFound, postForm(r, missing).Code)
}
