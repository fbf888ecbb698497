// Package availability computes which slots are free for a provider.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/schedule"
)

// FallbackDuration is how long a booking occupies its provider when the
// service it references no longer exists. Keeping it lets bookings stay
// listable after a service is removed from the catalog.
const FallbackDuration = 30 * time.Minute

// Lookback bounds how far before a window a booking may start and still
// reach into it. Services are never longer than a day.
const Lookback = 24 * time.Hour

// Reader is the subset of the store the calculator needs.
type Reader interface {
	GetService(ctx context.Context, id string) (model.Service, error)
	GetSettings(ctx context.Context) (model.Settings, error)
	// ListActiveBookings returns non-cancelled bookings for provider whose
	// start time falls in [from, to).
	ListActiveBookings(ctx context.Context, providerID string, from, to time.Time) ([]model.Booking, error)
}

type Calculator struct {
	store Reader
	loc   *time.Location
}

func NewCalculator(store Reader, loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return &Calculator{store: store, loc: loc}
}

func (c *Calculator) Location() *time.Location { return c.loc }

type Result struct {
	Date  string
	Slots []string
}

// Available lists the free slot marks for serviceID with providerID on date.
// The provider id is not checked for existence; an unknown provider simply
// has no bookings.
func (c *Calculator) Available(ctx context.Context, providerID, serviceID string, date time.Time) (Result, error) {
	date = schedule.StartOfDay(date.In(c.loc))
	res := Result{Date: date.Format(schedule.DateLayout), Slots: []string{}}

	svc, err := c.store.GetService(ctx, serviceID)
	if err != nil {
		return res, fmt.Errorf("service %s: %w", serviceID, err)
	}
	settings, err := c.store.GetSettings(ctx)
	if err != nil {
		return res, fmt.Errorf("load settings: %w", err)
	}
	marks, err := schedule.Resolve(settings, date)
	if err != nil {
		return res, err
	}
	if len(marks) == 0 {
		return res, nil
	}

	day := Interval{Start: date, End: date.AddDate(0, 0, 1)}
	busy, err := c.Occupied(ctx, providerID, day, "")
	if err != nil {
		return res, err
	}

	for _, slot := range schedule.Generate(marks, date, svc.Duration()) {
		if !overlapsAny(Interval{Start: slot.Start, End: slot.End}, busy) {
			res.Slots = append(res.Slots, slot.Start.Format("15:04"))
		}
	}
	return res, nil
}

// Occupied returns the intervals of providerID's active bookings that
// intersect window, skipping excludeID. Each booking's span comes from its own
// service.
func (c *Calculator) Occupied(ctx context.Context, providerID string, window Interval, excludeID string) ([]Interval, error) {
	bookings, err := c.store.ListActiveBookings(ctx, providerID, window.Start.Add(-Lookback), window.End)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	durations := map[string]time.Duration{}
	var busy []Interval
	for _, b := range bookings {
		if b.ID == excludeID || !b.Status.Active() {
			continue
		}
		d, ok := durations[b.ServiceID]
		if !ok {
			if d, err = c.Duration(ctx, b.ServiceID); err != nil {
				return nil, err
			}
			durations[b.ServiceID] = d
		}
		iv := Interval{Start: b.StartTime, End: b.StartTime.Add(d)}
		if iv.Overlaps(window) {
			busy = append(busy, iv)
		}
	}
	return busy, nil
}

// Conflicts reports whether candidate overlaps any active booking of providerID
// other than excludeID.
func (c *Calculator) Conflicts(ctx context.Context, providerID string, candidate Interval, excludeID string) (bool, error) {
	busy, err := c.Occupied(ctx, providerID, candidate, excludeID)
	if err != nil {
		return false, err
	}
	return overlapsAny(candidate, busy), nil
}

// Duration is how long a booking of serviceID occupies its provider, falling
// back to FallbackDuration when the service is gone.
func (c *Calculator) Duration(ctx context.Context, serviceID string) (time.Duration, error) {
	svc, err := c.store.GetService(ctx, serviceID)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return FallbackDuration, nil
	case err != nil:
		return 0, fmt.Errorf("service %s: %w", serviceID, err)
	default:
		return svc.Duration(), nil
	}
}
