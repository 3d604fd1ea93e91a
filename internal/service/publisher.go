package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/hotel-reservation/internal/queue"
)

// Publisher announces persisted bookings and cancellations.
type Publisher interface {
	BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
	BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error
}

// DefaultPublishTimeout bounds each publish when no timeout is given.
const DefaultPublishTimeout = 3 * time.Second

// AMQPPublisher publishes booking events to RabbitMQ.  A connection is
// opened per message; bookings are rare and interactive, so there is
// nothing to gain from keeping one open.  Publishing runs on the console's
// path, so the TCP dial, the AMQP handshake and the publish are each
// limited by timeout.
type AMQPPublisher struct {
	url     string
	timeout time.Duration
}

// NewAMQPPublisher returns a publisher for the broker at url.  A
// non-positive timeout selects DefaultPublishTimeout.
func NewAMQPPublisher(url string, timeout time.Duration) *AMQPPublisher {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &AMQPPublisher{url: url, timeout: timeout}
}

// BookingConfirmed publishes to the booking.confirmed queue.
func (p *AMQPPublisher) BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	return p.publish(ctx, queue.BookingConfirmedQueue, ev)
}

// BookingCancelled publishes to the booking.cancelled queue.
func (p *AMQPPublisher) BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error {
	return p.publish(ctx, queue.BookingCancelledQueue, ev)
}

func (p *AMQPPublisher) publish(ctx context.Context, name string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Locale: "en_US",
		Dial:   amqp.DefaultDial(p.timeout),
	})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := ch.PublishWithContext(pubCtx, "", name, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
