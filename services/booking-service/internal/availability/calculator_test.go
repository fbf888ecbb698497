package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type stubReader struct {
	services map[string]model.Service
	settings model.Settings
	bookings []model.Booking
	listErr  error
}

func (s *stubReader) GetService(_ context.Context, id string) (model.Service, error) {
	svc, ok := s.services[id]
	if !ok {
		return model.Service{}, model.ErrNotFound
	}
	return svc, nil
}

func (s *stubReader) GetSettings(context.Context) (model.Settings, error) {
	return s.settings, nil
}

func (s *stubReader) ListActiveBookings(_ context.Context, providerID string, from, to time.Time) ([]model.Booking, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.Booking
	for _, b := range s.bookings {
		if b.ProviderID == providerID && b.Status.Active() && !b.StartTime.Before(from) && b.StartTime.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

// 2030-01-07 is a Monday.
func at(h, m int) time.Time {
	return time.Date(2030, 1, 7, h, m, 0, 0, time.UTC)
}

func derivedSettings() model.Settings {
	return model.Settings{OpeningTime: "09:00", ClosingTime: "19:00", WorkingDays: []int{1, 2, 3, 4, 5, 6}}
}

func newStub(bookings ...model.Booking) *stubReader {
	return &stubReader{
		services: map[string]model.Service{
			"cut":   {ID: "cut", DurationMinutes: 45},
			"short": {ID: "short", DurationMinutes: 30},
		},
		settings: derivedSettings(),
		bookings: bookings,
	}
}

func TestAvailable_ExistingBookingScenario(t *testing.T) {
	store := newStub(model.Booking{ID: "b1", ProviderID: "p1", ServiceID: "cut", StartTime: at(10, 0), Status: model.StatusConfirmed})
	calc := NewCalculator(store, time.UTC)

	res, err := calc.Available(context.Background(), "p1", "cut", at(0, 0))
	require.NoError(t, err)
	assert.Equal(t, "2030-01-07", res.Date)
	assert.NotContains(t, res.Slots, "10:00")
	assert.NotContains(t, res.Slots, "10:30")
	assert.NotContains(t, res.Slots, "09:30", "09:30-10:15 runs into 10:00")
	assert.Contains(t, res.Slots, "09:00")
	assert.Contains(t, res.Slots, "11:00")

	conflict, err := calc.Conflicts(context.Background(), "p1", Interval{Start: at(10, 15), End: at(11, 0)}, "")
	require.NoError(t, err)
	assert.True(t, conflict)

	conflict, err = calc.Conflicts(context.Background(), "p1", Interval{Start: at(10, 45), End: at(11, 30)}, "")
	require.NoError(t, err)
	assert.False(t, conflict, "touching the end of an occupied interval is not an overlap")
}

func TestAvailable_BoundaryTouchIsFree(t *testing.T) {
	store := newStub(model.Booking{ID: "b1", ProviderID: "p1", ServiceID: "short", StartTime: at(10, 0), Status: model.StatusPending})
	calc := NewCalculator(store, time.UTC)

	res, err := calc.Available(context.Background(), "p1", "short", at(0, 0))
	require.NoError(t, err)
	assert.Contains(t, res.Slots, "09:30", "09:30-10:00 ends exactly where the booking starts")
	assert.NotContains(t, res.Slots, "10:00")
	assert.Contains(t, res.Slots, "10:30")
}

func TestAvailable_CancelledBookingsIgnored(t *testing.T) {
	store := newStub(model.Booking{ID: "b1", ProviderID: "p1", ServiceID: "cut", StartTime: at(10, 0), Status: model.StatusCancelled})
	res, err := NewCalculator(store, time.UTC).Available(context.Background(), "p1", "cut", at(0, 0))
	require.NoError(t, err)
	assert.Contains(t, res.Slots, "10:00")
	assert.Len(t, res.Slots, 20)
}

func TestAvailable_MissingServiceUsesFallbackDuration(t *testing.T) {
	store := newStub(model.Booking{ID: "b1", ProviderID: "p1", ServiceID: "deleted", StartTime: at(10, 0), Status: model.StatusConfirmed})
	calc := NewCalculator(store, time.UTC)

	busy, err := calc.Occupied(context.Background(), "p1", Interval{Start: at(0, 0), End: at(23, 59)}, "")
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.Equal(t, FallbackDuration, busy[0].End.Sub(busy[0].Start))

	res, err := calc.Available(context.Background(), "p1", "short", at(0, 0))
	require.NoError(t, err)
	assert.NotContains(t, res.Slots, "10:00")
	assert.Contains(t, res.Slots, "10:30")
}

func TestAvailable_UsesEachBookingsOwnService(t *testing.T) {
	store := newStub(model.Booking{ID: "b1", ProviderID: "p1", ServiceID: "cut", StartTime: at(10, 0), Status: model.StatusConfirmed})
	res, err := NewCalculator(store, time.UTC).Available(context.Background(), "p1", "short", at(0, 0))
	require.NoError(t, err)
	assert.NotContains(t, res.Slots, "10:30", "the 45-minute booking runs until 10:45")
	assert.Contains(t, res.Slots, "11:00")
}

func TestAvailable_UnknownService(t *testing.T) {
	_, err := NewCalculator(newStub(), time.UTC).Available(context.Background(), "p1", "nope", at(0, 0))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestAvailable_UnknownProviderHasEverything(t *testing.T) {
	res, err := NewCalculator(newStub(), time.UTC).Available(context.Background(), "ghost", "short", at(0, 0))
	require.NoError(t, err)
	assert.Len(t, res.Slots, 20)
}

func TestAvailable_ClosedDay(t *testing.T) {
	res, err := NewCalculator(newStub(), time.UTC).Available(context.Background(), "p1", "short", at(0, 0).AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Equal(t, "2030-01-06", res.Date)
	assert.Empty(t, res.Slots)
}

func TestAvailable_StoreFailureSurfaces(t *testing.T) {
	store := newStub()
	store.listErr = errors.New("connection reset")
	_, err := NewCalculator(store, time.UTC).Available(context.Background(), "p1", "short", at(0, 0))
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrNotFound)
}

func TestConflicts_ExcludesSelf(t *testing.T) {
	store := newStub(model.Booking{ID: "b1", ProviderID: "p1", ServiceID: "cut", StartTime: at(10, 0), Status: model.StatusConfirmed})
	calc := NewCalculator(store, time.UTC)

	conflict, err := calc.Conflicts(context.Background(), "p1", Interval{Start: at(10, 0), End: at(10, 45)}, "b1")
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestOccupied_BookingFromPreviousDayReachesIn(t *testing.T) {
	store := newStub(model.Booking{ID: "late", ProviderID: "p1", ServiceID: "cut", StartTime: at(0, 0).Add(-15 * time.Minute), Status: model.StatusConfirmed})
	busy, err := NewCalculator(store, time.UTC).Occupied(context.Background(), "p1", Interval{Start: at(0, 0), End: at(0, 0).AddDate(0, 0, 1)}, "")
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.Equal(t, at(0, 30), busy[0].End)
}

func TestInterval_Days(t *testing.T) {
	iv := Interval{Start: at(23, 30), End: at(23, 30).Add(45 * time.Minute)}
	assert.Equal(t, []string{"2030-01-07", "2030-01-08"}, iv.Days(time.UTC))

	iv = Interval{Start: at(10, 0), End: at(10, 45)}
	assert.Equal(t, []string{"2030-01-07"}, iv.Days(time.UTC))
}
