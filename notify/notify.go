// Package notify carries best-effort customer notifications. Publishing never
// blocks or fails the request that caused it, and nothing is retried.
package notify

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	EventOrderStatus       = "order.status_changed"
	EventReservationStatus = "reservation.status_changed"
)

type Event struct {
	Type          string    `json:"type"`
	OrderID       uint      `json:"order_id,omitempty"`
	OrderRef      string    `json:"order_ref,omitempty"`
	ReservationID uint      `json:"reservation_id,omitempty"`
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Axis          string    `json:"axis"`
	OldStatus     string    `json:"old_status"`
	NewStatus     string    `json:"new_status"`
	ChangedBy     string    `json:"changed_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// LogNotifier is used when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) Publish(_ context.Context, ev Event) error {
	log.WithFields(log.Fields{
		"type":       ev.Type,
		"order_ref":  ev.OrderRef,
		"axis":       ev.Axis,
		"new_status": ev.NewStatus,
		"email":      ev.Email,
	}).Info("notification (no broker configured)")
	return nil
}

// Async hands events to a single background sender through a bounded queue.
// When the queue is full the event is dropped and logged.
type Async struct {
	next    Notifier
	timeout time.Duration
	queue   chan Event

	once sync.Once
	done chan struct{}
}

func NewAsync(next Notifier, size int, timeout time.Duration) *Async {
	a := &Async{
		next:    next,
		timeout: timeout,
		queue:   make(chan Event, size),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Publish never blocks and never returns an error.
func (a *Async) Publish(_ context.Context, ev Event) error {
	select {
	case a.queue <- ev:
	default:
		log.WithFields(log.Fields{"type": ev.Type, "order_ref": ev.OrderRef}).
			Warn("notification queue full, dropping event")
	}
	return nil
}

// Close stops accepting events and waits until queued ones were attempted.
func (a *Async) Close() {
	a.once.Do(func() { close(a.queue) })
	<-a.done
}

func (a *Async) run() {
	defer close(a.done)
	for ev := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.Publish(ctx, ev); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"type":      ev.Type,
				"order_ref": ev.OrderRef,
			}).Warn("failed to publish notification")
		}
		cancel()
	}
}
