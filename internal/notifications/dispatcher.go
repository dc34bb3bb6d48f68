package notifications

import (
	"context"
	"time"

	"revticket/pkg/logger"
)

// Dispatcher publishes notifications without blocking the caller. A nil
// producer (Kafka disabled) turns every dispatch into a no-op.
type Dispatcher struct {
	producer Producer
	logger   *logger.Logger
}

func NewDispatcher(producer Producer, log *logger.Logger) *Dispatcher {
	return &Dispatcher{producer: producer, logger: log}
}

// Dispatch publishes in the background. Failures are logged, never returned:
// a booking must not fail because the notification pipeline is down.
func (d *Dispatcher) Dispatch(notification *Notification) {
	if d == nil || d.producer == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := d.producer.Publish(ctx, notification); err != nil {
			d.logger.ErrorWithContext(ctx, "failed to publish notification", err, map[string]interface{}{
				"type":       string(notification.Type),
				"booking_id": notification.BookingID,
			})
		}
	}()
}
