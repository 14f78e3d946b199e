package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

var ErrNoRecipient = errors.New("event has no recipient email")

// Consumer turns queued events into e-mails.
type Consumer struct {
	url      string
	exchange string
	queue    string
	mailer   Mailer

	conn *amqp.Connection
	ch   *amqp.Channel
	wg   sync.WaitGroup
}

func NewConsumer(url, exchange, queue string, mailer Mailer) *Consumer {
	return &Consumer{url: url, exchange: exchange, queue: queue, mailer: mailer}
}

// Run consumes until ctx is cancelled or the delivery channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.connect(); err != nil {
		c.close()
		return err
	}
	defer c.close()

	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queue, "notifier", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume from %s: %w", c.queue, err)
	}
	log.WithField("queue", c.queue).Info("notifier consuming")

	for {
		select {
		case <-ctx.Done():
			log.Info("stopping message consumption due to context cancel")
			c.wg.Wait()
			return nil
		case d, ok := <-deliveries:
			if !ok {
				c.wg.Wait()
				return errors.New("delivery channel closed")
			}
			c.wg.Add(1)
			go func(d amqp.Delivery) {
				defer c.wg.Done()
				c.process(ctx, d)
			}(d)
		}
	}
}

func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	if err := c.Handle(ctx, d.Body); err != nil {
		log.WithError(err).Warn("notification not sent")
		// At-most-once: drop instead of requeueing.
		if err := d.Nack(false, false); err != nil {
			log.WithError(err).Error("failed to nack")
		}
		return
	}
	if err := d.Ack(false); err != nil {
		log.WithError(err).Error("failed to ack")
	}
}

// Handle decodes one message body and mails it.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	if ev.Email == "" {
		return ErrNoRecipient
	}
	msg := Render(ev)
	if err := c.mailer.Send(ctx, ev.Email, msg.Subject, msg.Body); err != nil {
		return fmt.Errorf("send mail to %s: %w", ev.Email, err)
	}
	log.WithFields(log.Fields{
		"type":       ev.Type,
		"order_ref":  ev.OrderRef,
		"new_status": ev.NewStatus,
	}).Info("notification sent")
	return nil
}

func (c *Consumer) connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("rabbitmq connection failure: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("rabbitmq channel failure: %w", err)
	}
	c.conn, c.ch = conn, ch

	if err := declareExchange(ch, c.exchange); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(
		c.queue, // name
		true,    // durable
		false,   // delete when unused
		false,   // exclusive
		false,   // no-wait
		nil,     // arguments
	); err != nil {
		return err
	}
	if err := ch.QueueBind(c.queue, "", c.exchange, false, nil); err != nil {
		return err
	}
	return ch.Qos(10, 0, false)
}

// close releases whatever connect managed to open.
func (c *Consumer) close() {
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn, c.ch = nil, nil
}
