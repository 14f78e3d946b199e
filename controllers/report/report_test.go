package reportControllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apptest"
	"github.com/junaidrashid-git/restaurant-api/models"
)

func at(day, hour int) time.Time { return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC) }

func seedOrders(t *testing.T, env *app.Env) {
	t.Helper()
	rice := func(q int) models.OrderItem {
		return models.OrderItem{MenuID: 1, Name: "Rice & curry", Price: 400, Quantity: q}
	}
	curry := func(q int) models.OrderItem {
		return models.OrderItem{MenuID: 2, Name: "Dhal curry", Price: 200, Quantity: q}
	}
	orders := []models.Order{
		{OrderRef: "a", OrderType: models.OrderTypeDelivery, OrderStatus: models.OrderStatusCompleted,
			TotalAmount: 1200, CreatedAt: at(3, 10), Items: []models.OrderItem{rice(2), curry(1)}},
		{OrderRef: "b", OrderType: models.OrderTypeTakeaway, OrderStatus: models.OrderStatusCancelled,
			TotalAmount: 500, CreatedAt: at(3, 12), Items: []models.OrderItem{rice(5)}},
		{OrderRef: "c", OrderType: models.OrderTypeDineIn, OrderStatus: models.OrderStatusPending,
			TotalAmount: 630, CreatedAt: at(5, 19), Items: []models.OrderItem{curry(3)}},
		{OrderRef: "old", OrderType: models.OrderTypeDineIn, OrderStatus: models.OrderStatusCompleted,
			TotalAmount: 999, CreatedAt: time.Date(2023, 12, 20, 12, 0, 0, 0, time.UTC)},
	}
	for i := range orders {
		orders[i].UserID = "u1"
		require.NoError(t, env.DB.Create(&orders[i]).Error)
	}
}

func TestBuildSalesReport(t *testing.T) {
	env, _ := apptest.NewEnv(t)
	seedOrders(t, env)

	rep, err := BuildSalesReport(env.DB, at(1, 0), at(7, 0))
	require.NoError(t, err)

	want := &SalesReport{
		From:              "2024-01-01",
		To:                "2024-01-07",
		TotalOrders:       3,
		ByStatus:          map[string]int{"Completed": 1, "Cancelled": 1, "Pending": 1},
		ByType:            map[string]int{"Delivery": 1, "Takeaway": 1, "Dine-in": 1},
		Revenue:           1830,
		AverageOrderValue: 915,
		Daily: []DailyRevenue{
			{Date: "2024-01-01"},
			{Date: "2024-01-02"},
			{Date: "2024-01-03", Orders: 1, Revenue: 1200},
			{Date: "2024-01-04"},
			{Date: "2024-01-05", Orders: 1, Revenue: 630},
			{Date: "2024-01-06"},
			{Date: "2024-01-07"},
		},
		TopItems: []TopItem{
			{MenuID: 2, Name: "Dhal curry", Quantity: 4, Revenue: 800},
			{MenuID: 1, Name: "Rice & curry", Quantity: 2, Revenue: 800},
		},
	}
	if diff := cmp.Diff(want, rep); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSalesReportEmptyRange(t *testing.T) {
	env, _ := apptest.NewEnv(t)
	rep, err := BuildSalesReport(env.DB, at(10, 0), at(10, 0))
	require.NoError(t, err)
	assert.Zero(t, rep.AverageOrderValue)
	assert.Equal(t, []DailyRevenue{{Date: "2024-01-10"}}, rep.Daily)
	assert.Empty(t, rep.TopItems)
}

func TestSalesHandlers(t *testing.T) {
	env, _ := apptest.NewEnv(t)
	env.Now = func() time.Time { return at(7, 15) }
	seedOrders(t, env)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/sales", GetSalesReport(env))
	r.GET("/sales/export", ExportSalesReport(env))

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	w := get("/sales")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rep SalesReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, "2024-01-01", rep.From, "defaults to the last seven days")
	assert.Equal(t, "2024-01-07", rep.To)
	assert.Equal(t, 1830.0, rep.Revenue)

	require.NoError(t, json.Unmarshal(get("/sales?from=2023-12-01&to=2023-12-31").Body.Bytes(), &rep))
	assert.Equal(t, 1, rep.TotalOrders)
	assert.Len(t, rep.Daily, 31)

	assert.Equal(t, http.StatusBadRequest, get("/sales?from=2024-01-05&to=2024-01-01").Code)
	assert.Equal(t, http.StatusBadRequest, get("/sales?from=2020-01-01&to=2024-01-01").Code)
	assert.Equal(t, http.StatusBadRequest, get("/sales?from=jan").Code)

	w = get("/sales/export")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{summarySheet, dailySheet}, f.GetSheetList())

	revenue, err := f.GetCellValue(summarySheet, "B4")
	require.NoError(t, err)
	assert.Equal(t, "1830", revenue)

	daily, err := f.GetRows(dailySheet)
	require.NoError(t, err)
	require.Len(t, daily, 8)
	assert.Equal(t, []string{"2024-01-03", "1", "1200"}, daily[3])
}
