package events

import (
	"context"
	"log/slog"
)

// LogPublisher records events in the service log when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, ev Event) error {
	p.logger.DebugContext(ctx, "booking event", "event_type", ev.Type, "booking_id", ev.Booking.ID, "event_id", ev.ID)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
