package workflow

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/models"
)

func newOrder(t models.OrderType) *models.Order {
	o := &models.Order{
		OrderType:     t,
		OrderStatus:   models.OrderStatusPending,
		KitchenStatus: models.KitchenStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
	if t == models.OrderTypeDelivery {
		ds := models.DeliveryStatusPending
		o.DeliveryStatus = &ds
	}
	return o
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr), "want *apperr.Error, got %v", err)
	return appErr.Status
}

func TestApplyRejectsUnknownValue(t *testing.T) {
	o := newOrder(models.OrderTypeTakeaway)

	_, err := Apply(o, AxisKitchen, "Almost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidStatus))
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.Equal(t, models.KitchenStatusPending, o.KitchenStatus)
}

func TestApplyIsCaseInsensitiveAndIdempotent(t *testing.T) {
	o := newOrder(models.OrderTypeTakeaway)

	change, err := Apply(o, AxisOrder, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, Change{{Axis: AxisOrder, From: "Pending", To: "Confirmed"}}, change)
	assert.Equal(t, models.OrderStatusConfirmed, o.OrderStatus)

	change, err = Apply(o, AxisOrder, "CONFIRMED")
	require.NoError(t, err)
	assert.True(t, change.Empty())
}

func TestApplyRejectsSkippingSteps(t *testing.T) {
	o := newOrder(models.OrderTypeTakeaway)

	_, err := Apply(o, AxisKitchen, "Ready")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalTransition))
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
	assert.Equal(t, models.KitchenStatusPending, o.KitchenStatus)
}

func TestKitchenPreparingStartsOrder(t *testing.T) {
	o := newOrder(models.OrderTypeDineIn)

	change, err := Apply(o, AxisKitchen, "Preparing")
	require.NoError(t, err)
	require.Len(t, change, 2)
	assert.Equal(t, Transition{Axis: AxisOrder, From: "Pending", To: "In Progress"}, change[1])
	assert.True(t, change[0].Notifiable())
	assert.False(t, change[1].Notifiable())
}

func TestDeliveryFlow(t *testing.T) {
	o := newOrder(models.OrderTypeDelivery)

	_, err := Apply(o, AxisDelivery, "on_the_way")
	require.Error(t, err, "kitchen not ready")

	_, err = Apply(o, AxisKitchen, "Preparing")
	require.NoError(t, err)
	_, err = Apply(o, AxisKitchen, "Ready")
	require.NoError(t, err)

	_, err = Apply(o, AxisDelivery, "on_the_way")
	require.Error(t, err, "no rider assigned")
	assert.Contains(t, err.Error(), "no delivery person")

	rider := "rider-1"
	o.DeliveryPersonID = &rider
	_, err = Apply(o, AxisDelivery, "on_the_way")
	require.NoError(t, err)

	_, err = Apply(o, AxisOrder, "Completed")
	require.Error(t, err, "not yet delivered")

	change, err := Apply(o, AxisDelivery, "delivered")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, o.OrderStatus)
	assert.Len(t, change, 2)

	_, err = Apply(o, AxisKitchen, "Cancelled")
	require.Error(t, err, "terminal order")
}

func TestDeliveryAxisOnlyForDeliveryOrders(t *testing.T) {
	o := newOrder(models.OrderTypeDineIn)
	_, err := Apply(o, AxisDelivery, "on_the_way")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.Nil(t, o.DeliveryStatus)
}

func TestCancelCascades(t *testing.T) {
	o := newOrder(models.OrderTypeDelivery)

	change, err := Apply(o, AxisOrder, "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, models.KitchenStatusCancelled, o.KitchenStatus)
	assert.Equal(t, models.DeliveryStatusCancelled, *o.DeliveryStatus)
	assert.Len(t, change, 3)
	assert.True(t, change[0].Notifiable())
}

func TestCompleteRequiresKitchenReady(t *testing.T) {
	o := newOrder(models.OrderTypeTakeaway)
	_, err := Apply(o, AxisOrder, "Confirmed")
	require.NoError(t, err)
	_, err = Apply(o, AxisOrder, "In Progress")
	require.NoError(t, err)

	_, err = Apply(o, AxisOrder, "Completed")
	require.Error(t, err)

	o.KitchenStatus = models.KitchenStatusReady
	_, err = Apply(o, AxisOrder, "Completed")
	require.NoError(t, err)
}

func TestPaymentAxis(t *testing.T) {
	o := newOrder(models.OrderTypeTakeaway)

	_, err := Apply(o, AxisPayment, "refunded")
	require.Error(t, err)

	_, err = Apply(o, AxisPayment, "failed")
	require.NoError(t, err)
	_, err = Apply(o, AxisPayment, "paid")
	require.NoError(t, err)
	_, err = Apply(o, AxisPayment, "refunded")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, o.PaymentStatus)
}
