package events

import (
	"context"
	"log/slog"
)

// LogPublisher writes events to a structured logger. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a log publisher; a nil logger uses slog.Default
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "domain event",
		slog.String("action", "publish_event"),
		slog.String("event_id", event.ID),
		slog.String("type", event.Type),
		slog.Any("payload", event.Payload))
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
