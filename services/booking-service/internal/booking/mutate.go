package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/events"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

// Reschedule moves a booking to newStart for the same provider. The booking's
// own current interval never counts as a conflict.
func (s *Service) Reschedule(ctx context.Context, id model.Identity, bookingID string, newStart time.Time) (model.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "booking.reschedule")
	defer span.End()

	if err := s.requireFuture(newStart); err != nil {
		return model.Booking{}, err
	}
	current, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if err := requireOwnerOrAdmin(id, current); err != nil {
		return model.Booking{}, err
	}
	d, err := s.calc.Duration(ctx, current.ServiceID)
	if err != nil {
		return model.Booking{}, err
	}

	newStart = newStart.UTC()
	iv := availability.Interval{Start: newStart, End: newStart.Add(d)}
	var updated, prev model.Booking
	var moved bool
	err = s.reserve(ctx, current.ProviderID, iv, current.ID, []string{bookingKey(current.ID)}, func(ctx context.Context) error {
		b, err := s.store.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status == model.StatusCancelled {
			return fmt.Errorf("%w: booking %s is cancelled", model.ErrConflict, b.ID)
		}
		prev = b
		b.StartTime = newStart
		if err := s.store.UpdateBooking(ctx, b); err != nil {
			return err
		}
		updated, moved = b, true
		s.armReminder(b, s.leadFor(ctx, b))
		return nil
	})
	if err != nil {
		if moved {
			s.armReminder(prev, s.leadFor(ctx, prev))
		}
		span.RecordError(err)
		return model.Booking{}, err
	}

	s.notify(ctx, updated.Contact(), s.rescheduledMessage(updated))
	s.afterChange(ctx, events.BookingRescheduled, updated)
	return updated, nil
}

// Cancel cancels a booking on behalf of its owner or an admin. Cancelling an
// already cancelled booking returns it unchanged.
func (s *Service) Cancel(ctx context.Context, id model.Identity, bookingID string) (model.Booking, error) {
	b, changed, err := s.transition(ctx, bookingID, model.StatusCancelled, func(b model.Booking) error {
		return requireOwnerOrAdmin(id, b)
	})
	if err != nil || !changed {
		return b, err
	}
	s.notify(ctx, b.Contact(), s.cancelledMessage(b))
	s.afterChange(ctx, events.BookingCancelled, b)
	return b, nil
}

// Confirm marks a pending booking confirmed.
func (s *Service) Confirm(ctx context.Context, id model.Identity, bookingID string) (model.Booking, error) {
	return s.SetStatus(ctx, id, bookingID, model.StatusConfirmed)
}

// SetStatus applies an admin status change. Moves outside
// pending -> confirmed -> cancelled fail with ErrConflict.
func (s *Service) SetStatus(ctx context.Context, id model.Identity, bookingID string, status model.Status) (model.Booking, error) {
	if err := requireAdmin(id); err != nil {
		return model.Booking{}, err
	}
	if _, err := model.ParseStatus(string(status)); err != nil {
		return model.Booking{}, err
	}
	b, changed, err := s.transition(ctx, bookingID, status, nil)
	if err != nil || !changed {
		return b, err
	}

	switch status {
	case model.StatusCancelled:
		s.notify(ctx, b.Contact(), s.cancelledMessage(b))
		s.afterChange(ctx, events.BookingCancelled, b)
	case model.StatusConfirmed:
		s.notify(ctx, b.Contact(), s.confirmedMessage(b))
		s.afterChange(ctx, events.BookingConfirmed, b)
	}
	return b, nil
}

// transition changes a booking's status under its lock, dropping the reminder
// of a cancelled booking before the lock is released. It reports whether
// anything changed.
func (s *Service) transition(ctx context.Context, bookingID string, next model.Status, authorize func(model.Booking) error) (model.Booking, bool, error) {
	var (
		out, prev model.Booking
		changed   bool
		disarmed  bool
	)
	err := s.store.WithLocks(ctx, []string{bookingKey(bookingID)}, func(ctx context.Context) error {
		b, err := s.store.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if authorize != nil {
			if err := authorize(b); err != nil {
				return err
			}
		}
		out = b
		if b.Status == next {
			return nil
		}
		if !b.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: booking %s cannot go from %s to %s", model.ErrConflict, b.ID, b.Status, next)
		}
		prev = b
		b.Status = next
		if err := s.store.UpdateBooking(ctx, b); err != nil {
			return err
		}
		out, changed = b, true
		if !next.Active() {
			disarmed = s.reminders.Disarm(b.ID)
		}
		return nil
	})
	if err != nil {
		if disarmed {
			s.armReminder(prev, s.leadFor(ctx, prev))
		}
		return model.Booking{}, false, err
	}
	return out, changed, nil
}

// Delete removes a booking permanently, whatever its status.
func (s *Service) Delete(ctx context.Context, id model.Identity, bookingID string) error {
	if err := requireAdmin(id); err != nil {
		return err
	}
	var (
		deleted  model.Booking
		disarmed bool
	)
	err := s.store.WithLocks(ctx, []string{bookingKey(bookingID)}, func(ctx context.Context) error {
		b, err := s.store.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		deleted = b
		if err := s.store.DeleteBooking(ctx, bookingID); err != nil {
			return err
		}
		disarmed = s.reminders.Disarm(bookingID)
		return nil
	})
	if err != nil {
		if disarmed {
			s.armReminder(deleted, s.leadFor(ctx, deleted))
		}
		return err
	}
	s.afterChange(ctx, events.BookingDeleted, deleted)
	return nil
}

// DeleteCancelled purges every cancelled booking and returns how many went.
func (s *Service) DeleteCancelled(ctx context.Context, id model.Identity) (int, error) {
	if err := requireAdmin(id); err != nil {
		return 0, err
	}
	ids, err := s.store.DeleteCancelled(ctx)
	if err != nil {
		return 0, err
	}
	for _, bookingID := range ids {
		s.reminders.Disarm(bookingID)
	}
	s.logger.Info("cancelled bookings purged", "count", len(ids))
	return len(ids), nil
}
