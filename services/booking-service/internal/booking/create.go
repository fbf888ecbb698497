package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/events"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type CreateRequest struct {
	ProviderID string
	ServiceID  string
	StartTime  time.Time
}

type ManualRequest struct {
	ProviderID  string
	ServiceID   string
	ClientName  string
	ClientPhone string
	ClientEmail string
	StartTime   time.Time
}

// Create books a pending slot for the caller.
func (s *Service) Create(ctx context.Context, id model.Identity, req CreateRequest) (model.Booking, error) {
	if id.ID == "" {
		return model.Booking{}, fmt.Errorf("%w: caller identity required", model.ErrForbidden)
	}
	b := model.Booking{
		UserID:    id.ID,
		UserName:  id.Name,
		UserPhone: id.Phone,
		UserEmail: id.Email,
		Status:    model.StatusPending,
	}
	b, err := s.insert(ctx, req.ProviderID, req.ServiceID, req.StartTime, b)
	if err != nil {
		return model.Booking{}, err
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		s.logger.Warn("settings unavailable after booking", "booking_id", b.ID, "err", err)
	}
	s.notify(ctx, b.Contact(), s.createdMessage(b))
	s.notify(ctx, settings.AdminPhone, s.adminNoticeMessage(b))
	s.afterChange(ctx, events.BookingCreated, b)
	return b, nil
}

// CreateManual books a confirmed slot on behalf of a walk-in or phone client.
func (s *Service) CreateManual(ctx context.Context, id model.Identity, req ManualRequest) (model.Booking, error) {
	if err := requireAdmin(id); err != nil {
		return model.Booking{}, err
	}
	name, phone := strings.TrimSpace(req.ClientName), strings.TrimSpace(req.ClientPhone)
	if name == "" || phone == "" {
		return model.Booking{}, fmt.Errorf("%w: client name and phone are required", model.ErrValidation)
	}
	b := model.Booking{
		UserName:  name,
		UserPhone: phone,
		UserEmail: strings.TrimSpace(req.ClientEmail),
		Status:    model.StatusConfirmed,
		Manual:    true,
	}
	b, err := s.insert(ctx, req.ProviderID, req.ServiceID, req.StartTime, b)
	if err != nil {
		return model.Booking{}, err
	}

	s.notify(ctx, b.Contact(), s.createdMessage(b))
	s.afterChange(ctx, events.BookingCreated, b)
	return b, nil
}

// insert resolves the provider and service, then checks, writes and arms the
// reminder under the provider's day locks and the new booking's own lock.
func (s *Service) insert(ctx context.Context, providerID, serviceID string, start time.Time, b model.Booking) (model.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "booking.create")
	defer span.End()
	span.SetAttributes(attribute.String("provider.id", providerID), attribute.String("service.id", serviceID))

	if err := s.requireFuture(start); err != nil {
		return model.Booking{}, err
	}
	provider, err := s.store.GetProvider(ctx, providerID)
	if err != nil {
		return model.Booking{}, err
	}
	svc, err := s.store.GetService(ctx, serviceID)
	if err != nil {
		return model.Booking{}, err
	}

	b.ID = s.newID()
	if b.Manual {
		b.UserID = "manual_" + b.ID[:8]
	}
	b.ProviderID, b.ProviderName = provider.ID, provider.Name
	b.ServiceID, b.ServiceName = svc.ID, svc.Name
	b.StartTime = start.UTC()
	b.CreatedAt = s.now().UTC()

	iv := availability.Interval{Start: b.StartTime, End: b.StartTime.Add(svc.Duration())}
	var armed bool
	err = s.reserve(ctx, provider.ID, iv, "", []string{bookingKey(b.ID)}, func(ctx context.Context) error {
		if err := s.store.InsertBooking(ctx, b); err != nil {
			return err
		}
		armed = s.armReminder(b, s.leadFor(ctx, b))
		return nil
	})
	if err != nil {
		if armed {
			s.reminders.Disarm(b.ID)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "reserve failed")
		return model.Booking{}, err
	}
	span.SetAttributes(attribute.String("booking.id", b.ID))
	return b, nil
}

// reserve runs write only if iv is free for providerID, ignoring excludeID.
// The check and the write happen under locks for every day iv touches, so two
// overlapping reservations always contend for at least one common lock.
func (s *Service) reserve(ctx context.Context, providerID string, iv availability.Interval, excludeID string, extraKeys []string, write func(ctx context.Context) error) error {
	keys := append(dayKeys(providerID, iv), extraKeys...)
	return s.store.WithLocks(ctx, keys, func(ctx context.Context) error {
		conflict, err := s.calc.Conflicts(ctx, providerID, iv, excludeID)
		if err != nil {
			return err
		}
		if conflict {
			return fmt.Errorf("%w: provider %s is already booked at %s", model.ErrConflict, providerID, iv.Start.In(s.loc).Format("2006-01-02 15:04"))
		}
		return write(ctx)
	})
}

func dayKeys(providerID string, iv availability.Interval) []string {
	days := iv.Days(time.UTC)
	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = "provider|" + providerID + "|" + d
	}
	return keys
}

func bookingKey(id string) string {
	return "booking|" + id
}
