package booking

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/events"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/reminders"
)

// Reminders are armed and disarmed while the booking's lock is held, so the
// scheduler always ends up matching the last committed write. Messages and
// events run after the write committed and cannot fail the mutation: they go
// through the outbound queue and their errors are only logged.

func (s *Service) reminderLead(ctx context.Context) time.Duration {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		s.logger.Warn("settings unavailable, using default reminder lead", "err", err)
		return model.DefaultReminderLead.Duration()
	}
	return settings.ReminderLead.Duration()
}

// leadFor returns the owner's preferred lead, falling back to the salon's.
// Manual bookings always use the salon's lead.
func (s *Service) leadFor(ctx context.Context, b model.Booking) time.Duration {
	if b.Manual || b.UserID == "" {
		return s.reminderLead(ctx)
	}
	prefs, err := s.store.GetPreferences(ctx, b.UserID)
	if err != nil {
		s.logger.Warn("preferences unavailable, using salon reminder lead", "user_id", b.UserID, "err", err)
		return s.reminderLead(ctx)
	}
	if lead, ok := prefs.Lead(); ok {
		return lead.Duration()
	}
	return s.reminderLead(ctx)
}

// armReminder reports whether a reminder was scheduled. Bookings without a
// contact get none.
func (s *Service) armReminder(b model.Booking, lead time.Duration) bool {
	to := b.Contact()
	if to == "" {
		s.logger.Warn("booking has no contact, reminder skipped", "booking_id", b.ID)
		return false
	}
	s.reminders.Arm(reminders.Job{
		BookingID: b.ID,
		StartTime: b.StartTime,
		Lead:      lead,
		To:        to,
		Body:      s.reminderMessage(b),
	})
	return true
}

func (s *Service) notify(ctx context.Context, to, body string) {
	if to == "" || s.queue == nil {
		return
	}
	s.queue.Notify(ctx, s.dispatcher, to, body)
}

func (s *Service) afterChange(ctx context.Context, t events.Type, b model.Booking) {
	s.cache.InvalidateProvider(ctx, b.ProviderID)
	if s.queue == nil {
		return
	}
	ev := events.New(t, b, s.now())
	s.queue.Submit(ctx, string(t), func(ctx context.Context) error {
		return s.events.Publish(ctx, ev)
	})
}

func (s *Service) invalidateAll(ctx context.Context) {
	s.cache.InvalidateAll(ctx)
}
