// Package events publishes booking lifecycle events for other systems.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type Type string

const (
	BookingCreated     Type = "booking.created.v1"
	BookingConfirmed   Type = "booking.confirmed.v1"
	BookingCancelled   Type = "booking.cancelled.v1"
	BookingRescheduled Type = "booking.rescheduled.v1"
	BookingDeleted     Type = "booking.deleted.v1"
)

type Event struct {
	ID         string
	Type       Type
	OccurredAt time.Time
	Booking    model.Booking
}

func New(t Type, b model.Booking, now time.Time) Event {
	return Event{ID: uuid.NewString(), Type: t, OccurredAt: now.UTC(), Booking: b}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type payload struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	BookingID  string    `json:"booking_id"`
	UserID     string    `json:"user_id"`
	ProviderID string    `json:"provider_id"`
	ServiceID  string    `json:"service_id"`
	StartTime  time.Time `json:"start_time"`
	Status     string    `json:"status"`
	Manual     bool      `json:"manual"`
}

// Marshal renders the wire payload. Contact details stay out of events.
func (ev Event) Marshal() ([]byte, error) {
	return json.Marshal(payload{
		EventID:    ev.ID,
		EventType:  string(ev.Type),
		OccurredAt: ev.OccurredAt,
		BookingID:  ev.Booking.ID,
		UserID:     ev.Booking.UserID,
		ProviderID: ev.Booking.ProviderID,
		ServiceID:  ev.Booking.ServiceID,
		StartTime:  ev.Booking.StartTime.UTC(),
		Status:     string(ev.Booking.Status),
		Manual:     ev.Booking.Manual,
	})
}
