// Package workflow owns every status change on an order. Order, kitchen,
// delivery and payment status are separate columns, but they are only ever
// written through Apply, which checks each move against the other axes.
package workflow

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/models"
)

type Axis string

const (
	AxisOrder    Axis = "order"
	AxisKitchen  Axis = "kitchen"
	AxisDelivery Axis = "delivery"
	AxisPayment  Axis = "payment"
)

var (
	ErrInvalidStatus     = errors.New("invalid status")
	ErrIllegalTransition = errors.New("illegal status transition")
)

// Transition is one column moving from From to To.
type Transition struct {
	Axis Axis   `json:"axis"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Change lists the requested transition first, followed by any cascaded ones.
// An empty Change means the order already had the requested status.
type Change []Transition

func (c Change) Empty() bool { return len(c) == 0 }

var enums = map[Axis][]string{
	AxisOrder: {
		string(models.OrderStatusPending), string(models.OrderStatusConfirmed), string(models.OrderStatusInProgress),
		string(models.OrderStatusCompleted), string(models.OrderStatusCancelled),
	},
	AxisKitchen: {
		string(models.KitchenStatusPending), string(models.KitchenStatusPreparing),
		string(models.KitchenStatusReady), string(models.KitchenStatusCancelled),
	},
	AxisDelivery: {
		string(models.DeliveryStatusPending), string(models.DeliveryStatusOnTheWay),
		string(models.DeliveryStatusDelivered), string(models.DeliveryStatusCancelled),
	},
	AxisPayment: {
		string(models.PaymentStatusPending), string(models.PaymentStatusPaid),
		string(models.PaymentStatusFailed), string(models.PaymentStatusRefunded),
	},
}

var moves = map[Axis]map[string][]string{
	AxisOrder: {
		string(models.OrderStatusPending):    {string(models.OrderStatusConfirmed), string(models.OrderStatusCancelled)},
		string(models.OrderStatusConfirmed):  {string(models.OrderStatusInProgress), string(models.OrderStatusCancelled)},
		string(models.OrderStatusInProgress): {string(models.OrderStatusCompleted), string(models.OrderStatusCancelled)},
	},
	AxisKitchen: {
		string(models.KitchenStatusPending):   {string(models.KitchenStatusPreparing), string(models.KitchenStatusCancelled)},
		string(models.KitchenStatusPreparing): {string(models.KitchenStatusReady), string(models.KitchenStatusCancelled)},
	},
	AxisDelivery: {
		string(models.DeliveryStatusPending):  {string(models.DeliveryStatusOnTheWay), string(models.DeliveryStatusCancelled)},
		string(models.DeliveryStatusOnTheWay): {string(models.DeliveryStatusDelivered), string(models.DeliveryStatusCancelled)},
	},
	AxisPayment: {
		string(models.PaymentStatusPending): {string(models.PaymentStatusPaid), string(models.PaymentStatusFailed)},
		string(models.PaymentStatusFailed):  {string(models.PaymentStatusPaid), string(models.PaymentStatusPending)},
		string(models.PaymentStatusPaid):    {string(models.PaymentStatusRefunded)},
	},
}

// Values returns the accepted statuses for an axis in canonical spelling.
func Values(axis Axis) []string {
	return append([]string(nil), enums[axis]...)
}

// Normalize maps a case-insensitive input onto the canonical value for axis.
func Normalize(axis Axis, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, v := range enums[axis] {
		if strings.EqualFold(v, raw) {
			return v, nil
		}
	}
	return "", invalid(axis, raw)
}

// Apply validates and performs the move of axis to target on o, mutating it in
// place. On error o is left untouched.
func Apply(o *models.Order, axis Axis, target string) (Change, error) {
	if _, ok := enums[axis]; !ok {
		return nil, apperr.BadRequest(fmt.Sprintf("unknown status axis %q", axis)).Wrap(ErrInvalidStatus)
	}
	to, err := Normalize(axis, target)
	if err != nil {
		return nil, err
	}
	if axis == AxisDelivery && o.OrderType != models.OrderTypeDelivery {
		return nil, apperr.BadRequest("delivery status only applies to Delivery orders").Wrap(ErrInvalidStatus)
	}

	from := current(o, axis)
	if from == to {
		return nil, nil
	}
	if !allowed(axis, from, to) {
		return nil, illegal(axis, from, to, "")
	}
	if err := guard(o, axis, to); err != nil {
		return nil, err
	}

	change := Change{{Axis: axis, From: from, To: to}}
	set(o, axis, to)
	change = append(change, cascade(o, axis, to)...)
	return change, nil
}

func guard(o *models.Order, axis Axis, to string) error {
	switch axis {
	case AxisKitchen, AxisDelivery:
		if o.IsTerminal() {
			return illegal(axis, current(o, axis), to, fmt.Sprintf("order is already %s", o.OrderStatus))
		}
	}

	switch {
	case axis == AxisDelivery && to == string(models.DeliveryStatusOnTheWay):
		if o.KitchenStatus != models.KitchenStatusReady {
			return illegal(axis, current(o, axis), to, "kitchen has not marked the order Ready")
		}
		if o.DeliveryPersonID == nil || *o.DeliveryPersonID == "" {
			return illegal(axis, current(o, axis), to, "no delivery person assigned")
		}
	case axis == AxisOrder && to == string(models.OrderStatusCompleted):
		if o.KitchenStatus != models.KitchenStatusReady {
			return illegal(axis, current(o, axis), to, "kitchen has not marked the order Ready")
		}
		if o.OrderType == models.OrderTypeDelivery &&
			(o.DeliveryStatus == nil || *o.DeliveryStatus != models.DeliveryStatusDelivered) {
			return illegal(axis, current(o, axis), to, "order has not been delivered")
		}
	}
	return nil
}

// cascade keeps the other axes consistent with a move that was just applied.
func cascade(o *models.Order, axis Axis, to string) Change {
	var out Change
	move := func(a Axis, target string) {
		if from := current(o, a); from != target {
			set(o, a, target)
			out = append(out, Transition{Axis: a, From: from, To: target})
		}
	}

	switch {
	case axis == AxisKitchen && to == string(models.KitchenStatusPreparing):
		if o.OrderStatus == models.OrderStatusPending || o.OrderStatus == models.OrderStatusConfirmed {
			move(AxisOrder, string(models.OrderStatusInProgress))
		}
	case axis == AxisDelivery && to == string(models.DeliveryStatusDelivered):
		move(AxisOrder, string(models.OrderStatusCompleted))
	case axis == AxisOrder && to == string(models.OrderStatusCancelled):
		if o.KitchenStatus != models.KitchenStatusReady {
			move(AxisKitchen, string(models.KitchenStatusCancelled))
		}
		if o.DeliveryStatus != nil && *o.DeliveryStatus != models.DeliveryStatusDelivered {
			move(AxisDelivery, string(models.DeliveryStatusCancelled))
		}
	}
	return out
}

func allowed(axis Axis, from, to string) bool {
	for _, next := range moves[axis][from] {
		if next == to {
			return true
		}
	}
	return false
}

func current(o *models.Order, axis Axis) string {
	switch axis {
	case AxisOrder:
		return string(o.OrderStatus)
	case AxisKitchen:
		return string(o.KitchenStatus)
	case AxisDelivery:
		if o.DeliveryStatus == nil {
			return ""
		}
		return string(*o.DeliveryStatus)
	case AxisPayment:
		return string(o.PaymentStatus)
	}
	return ""
}

func set(o *models.Order, axis Axis, v string) {
	switch axis {
	case AxisOrder:
		o.OrderStatus = models.OrderStatus(v)
	case AxisKitchen:
		o.KitchenStatus = models.KitchenStatus(v)
	case AxisDelivery:
		ds := models.DeliveryStatus(v)
		o.DeliveryStatus = &ds
	case AxisPayment:
		o.PaymentStatus = models.PaymentStatus(v)
	}
}

func invalid(axis Axis, raw string) error {
	return apperr.BadRequest(fmt.Sprintf("invalid %s status %q", axis, raw)).
		With("allowed", enums[axis]).
		Wrap(ErrInvalidStatus)
}

func illegal(axis Axis, from, to, why string) error {
	msg := fmt.Sprintf("cannot change %s status from %q to %q", axis, from, to)
	if why != "" {
		msg += ": " + why
	}
	return apperr.New(http.StatusConflict, msg).Wrap(ErrIllegalTransition)
}

var notifiable = map[Transition]bool{
	{Axis: AxisKitchen, To: string(models.KitchenStatusPreparing)}:   true,
	{Axis: AxisKitchen, To: string(models.KitchenStatusReady)}:       true,
	{Axis: AxisOrder, To: string(models.OrderStatusConfirmed)}:       true,
	{Axis: AxisOrder, To: string(models.OrderStatusCancelled)}:       true,
	{Axis: AxisDelivery, To: string(models.DeliveryStatusOnTheWay)}:  true,
	{Axis: AxisDelivery, To: string(models.DeliveryStatusDelivered)}: true,
}

// Notifiable reports whether the customer should hear about this transition.
func (t Transition) Notifiable() bool {
	return notifiable[Transition{Axis: t.Axis, To: t.To}]
}
