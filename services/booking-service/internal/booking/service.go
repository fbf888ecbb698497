// Package booking is the write path for bookings: every create, move or
// status change goes through it so the no-overlap rule holds.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/events"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/reminders"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/schedule"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/slotcache"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

// Reminders is the part of the reminder scheduler the service drives.
type Reminders interface {
	Arm(job reminders.Job) time.Time
	Disarm(bookingID string) bool
}

type Deps struct {
	Store      storage.Store
	Reminders  Reminders
	Dispatcher notify.Dispatcher
	Queue      *notify.Queue
	Events     events.Publisher
	Cache      slotcache.Cache
	Logger     *slog.Logger
	Location   *time.Location
	Now        func() time.Time
}

type Service struct {
	store      storage.Store
	calc       *availability.Calculator
	reminders  Reminders
	dispatcher notify.Dispatcher
	queue      *notify.Queue
	events     events.Publisher
	cache      slotcache.Cache
	logger     *slog.Logger
	loc        *time.Location
	now        func() time.Time
	newID      func() string
	tracer     trace.Tracer
}

func NewService(d Deps) *Service {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Cache == nil {
		d.Cache = slotcache.Nop{}
	}
	if d.Events == nil {
		d.Events = events.NewLogPublisher(d.Logger)
	}
	return &Service{
		store:      d.Store,
		calc:       availability.NewCalculator(d.Store, d.Location),
		reminders:  d.Reminders,
		dispatcher: d.Dispatcher,
		queue:      d.Queue,
		events:     d.Events,
		cache:      d.Cache,
		logger:     d.Logger,
		loc:        d.Location,
		now:        d.Now,
		newID:      uuid.NewString,
		tracer:     otel.Tracer("booking-service/booking"),
	}
}

// AvailableSlots lists free marks for a provider and service on date
// (YYYY-MM-DD in the salon's time zone). Listings may lag concurrent writes.
func (s *Service) AvailableSlots(ctx context.Context, providerID, serviceID, date string) (availability.Result, error) {
	day, err := schedule.ParseDate(date, s.loc)
	if err != nil {
		return availability.Result{}, err
	}
	key := slotcache.Key{ProviderID: providerID, ServiceID: serviceID, Date: day.Format(time.DateOnly)}
	if res, ok := s.cache.Get(ctx, key); ok {
		return res, nil
	}
	res, err := s.calc.Available(ctx, providerID, serviceID, day)
	if err != nil {
		return availability.Result{}, err
	}
	s.cache.Set(ctx, key, res)
	return res, nil
}

// RestoreReminders re-arms every active booking that has not started yet and
// returns how many reminders it scheduled. Run it once at startup since the
// reminder table does not survive restarts.
func (s *Service) RestoreReminders(ctx context.Context) (int, error) {
	upcoming, err := s.store.ListUpcoming(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("list upcoming bookings: %w", err)
	}
	armed := 0
	for _, b := range upcoming {
		if s.armReminder(b, s.leadFor(ctx, b)) {
			armed++
		}
	}
	return armed, nil
}

func requireAdmin(id model.Identity) error {
	if !id.IsAdmin {
		return fmt.Errorf("%w: admin only", model.ErrForbidden)
	}
	return nil
}

func requireOwnerOrAdmin(id model.Identity, b model.Booking) error {
	if id.IsAdmin || b.OwnedBy(id) {
		return nil
	}
	return fmt.Errorf("%w: booking %s belongs to another user", model.ErrForbidden, b.ID)
}

// requireFuture rejects start times at or before now.
func (s *Service) requireFuture(start time.Time) error {
	if start.IsZero() {
		return fmt.Errorf("%w: start time is required", model.ErrValidation)
	}
	if !start.After(s.now()) {
		return fmt.Errorf("%w: start time %s is not in the future", model.ErrValidation, start.UTC().Format(time.RFC3339))
	}
	return nil
}
