// Package storage persists the catalog, settings and bookings.
package storage

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

// Filter narrows ListBookings. Zero fields do not filter.
type Filter struct {
	From    time.Time
	To      time.Time
	Status  model.Status
	OwnerID string
}

// Store is implemented by the Postgres and in-memory stores. Lookups of
// missing records return an error wrapping model.ErrNotFound.
type Store interface {
	GetService(ctx context.Context, id string) (model.Service, error)
	ListServices(ctx context.Context) ([]model.Service, error)
	UpsertService(ctx context.Context, svc model.Service) error
	DeleteService(ctx context.Context, id string) error

	GetProvider(ctx context.Context, id string) (model.Provider, error)
	ListProviders(ctx context.Context) ([]model.Provider, error)
	UpsertProvider(ctx context.Context, p model.Provider) error
	DeleteProvider(ctx context.Context, id string) error

	// GetSettings returns stored settings merged over defaults.
	GetSettings(ctx context.Context) (model.Settings, error)
	PutSettings(ctx context.Context, s model.Settings) error

	// GetPreferences returns empty preferences for users who never saved any.
	GetPreferences(ctx context.Context, userID string) (model.Preferences, error)
	PutPreferences(ctx context.Context, p model.Preferences) error

	GetBooking(ctx context.Context, id string) (model.Booking, error)
	ListBookings(ctx context.Context, f Filter) ([]model.Booking, error)
	ListActiveBookings(ctx context.Context, providerID string, from, to time.Time) ([]model.Booking, error)
	// ListUpcoming returns active bookings starting at or after from.
	ListUpcoming(ctx context.Context, from time.Time) ([]model.Booking, error)
	InsertBooking(ctx context.Context, b model.Booking) error
	UpdateBooking(ctx context.Context, b model.Booking) error
	DeleteBooking(ctx context.Context, id string) error
	DeleteCancelled(ctx context.Context) ([]string, error)

	// WithLocks runs fn while holding every named lock. Store calls made with
	// the ctx passed to fn belong to the same unit of work.
	WithLocks(ctx context.Context, keys []string, fn func(ctx context.Context) error) error
}
