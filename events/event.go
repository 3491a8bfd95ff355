package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kendall-kelly/restaurant-floor-api/config"
)

// Domain event types
const (
	TypeOrderCreated        = "order_created"
	TypeOrderClosed         = "order_closed"
	TypeTableStatusChanged  = "table_status_changed"
	TypeDishQuantityUpdated = "dish_quantity_updated"
	TypeBillGenerated       = "bill_generated"
)

// Event is the envelope every publisher sends
type Event struct {
	ID         string    `json:"event_id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// New wraps payload in an event with a fresh ID
func New(eventType string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher broadcasts domain events to subscribers
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// publishTimeout bounds how long a broker publish may hold up a request
const publishTimeout = 2 * time.Second

// Emit publishes event and logs a failure instead of returning it.
// Delivery is best effort and must never fail the request that caused it.
func Emit(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		slog.Error("event publish failed",
			slog.String("action", "publish_event"),
			slog.String("event_id", event.ID),
			slog.String("type", event.Type),
			slog.Any("error", err))
	}
}

// NewPublisher builds the publisher selected by EVENT_BUS
func NewPublisher(cfg *config.Config) (Publisher, error) {
	switch cfg.EventBus {
	case config.EventBusRabbitMQ:
		p, err := NewRabbitMQPublisher(cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.EventBusKafka:
		p, err := NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.EventBusLog, "":
		return NewLogPublisher(nil), nil
	default:
		return nil, fmt.Errorf("unknown event bus %q", cfg.EventBus)
	}
}
