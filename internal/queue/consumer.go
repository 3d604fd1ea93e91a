package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// BookingLogFile is the file, inside the log directory, that receives one
// line per booking event.
const BookingLogFile = "booking.log"

// StartBookingConsumer connects to RabbitMQ, declares both booking queues
// and appends every event to <logDir>/booking.log.  It reconnects with an
// exponential backoff (1s doubling up to 30s) and only returns once ctx is
// cancelled.  Malformed messages are rejected without requeue so a single
// bad payload cannot stall the queue.
func StartBookingConsumer(ctx context.Context, url, logDir string, logger *zap.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warn("failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, logDir, logger)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string, logger *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn("set QoS failed", zap.Error(err))
	}

	deliveries := make(map[string]<-chan amqp.Delivery, 2)
	for _, name := range []string{BookingConfirmedQueue, BookingCancelledQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		deliveries[name] = msgs
	}

	confirmed, cancelled := deliveries[BookingConfirmedQueue], deliveries[BookingCancelledQueue]
	for {
		var (
			d     amqp.Delivery
			ok    bool
			queue string
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-confirmed:
			queue = BookingConfirmedQueue
		case d, ok = <-cancelled:
			queue = BookingCancelledQueue
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := HandleMessage(logDir, queue, d.Body); err != nil {
			logger.Error("handle message failed", zap.String("queue", queue), zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
}

// HandleMessage decodes a payload received on the named queue and appends
// the matching line to the booking log.
func HandleMessage(logDir, queue string, body []byte) error {
	var line string
	switch queue {
	case BookingConfirmedQueue:
		var ev BookingConfirmedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = FormatConfirmed(ev)
	case BookingCancelledQueue:
		var ev BookingCancelledEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = FormatCancelled(ev)
	default:
		return fmt.Errorf("unknown queue %q", queue)
	}
	return appendLine(logDir, line)
}

// FormatConfirmed renders a confirmation as a single log line.
func FormatConfirmed(ev BookingConfirmedEvent) string {
	return fmt.Sprintf("[%s] Reservation confirmed | reservation_id=%d | room=%d (%s) | guest=%q | dates=%s..%s | total=%s\n",
		ev.ConfirmedAt, ev.ReservationID, ev.RoomNumber, ev.RoomType, ev.GuestName, ev.CheckIn, ev.CheckOut, model.FormatCents(ev.TotalCostCents))
}

// FormatCancelled renders a cancellation as a single log line.
func FormatCancelled(ev BookingCancelledEvent) string {
	return fmt.Sprintf("[%s] Reservation cancelled | reservation_id=%d | room=%d | guest=%q\n",
		ev.CancelledAt, ev.ReservationID, ev.RoomNumber, ev.GuestName)
}

func appendLine(logDir, line string) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, BookingLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
