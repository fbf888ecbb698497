package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

func booking(id, provider string, start time.Time, status model.Status) model.Booking {
	return model.Booking{ID: id, UserID: "u-" + id, ProviderID: provider, ServiceID: "cut", StartTime: start, Status: status}
}

func TestMemoryStore_BookingLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	start := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.InsertBooking(ctx, booking("b1", "p1", start, model.StatusPending)))
	err := s.InsertBooking(ctx, booking("b2", "p1", start, model.StatusPending))
	assert.ErrorIs(t, err, model.ErrConflict, "same provider and start")

	require.NoError(t, s.InsertBooking(ctx, booking("b3", "p1", start.Add(time.Hour), model.StatusConfirmed)))

	got, err := s.GetBooking(ctx, "b1")
	require.NoError(t, err)
	got.Status = model.StatusCancelled
	require.NoError(t, s.UpdateBooking(ctx, got))

	active, err := s.ListActiveBookings(ctx, "p1", start.Add(-time.Hour), start.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "b3", active[0].ID)

	require.NoError(t, s.InsertBooking(ctx, booking("b4", "p1", start, model.StatusPending)), "cancelled start no longer blocks")

	ids, err := s.DeleteCancelled(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, ids)

	_, err = s.GetBooking(ctx, "b1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.DeleteBooking(ctx, "b1"), model.ErrNotFound)
}

func TestMemoryStore_ListBookingsFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	day := time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.InsertBooking(ctx, booking("a", "p1", day.Add(9*time.Hour), model.StatusPending)))
	require.NoError(t, s.InsertBooking(ctx, booking("b", "p1", day.Add(11*time.Hour), model.StatusConfirmed)))
	require.NoError(t, s.InsertBooking(ctx, booking("c", "p2", day.Add(33*time.Hour), model.StatusPending)))

	all, err := s.ListBookings(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(all), "newest first")

	onDay, err := s.ListBookings(ctx, Filter{From: day, To: day.Add(24 * time.Hour), Status: model.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(onDay))

	mine, err := s.ListBookings(ctx, Filter{OwnerID: "u-b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(mine))
}

func TestMemoryStore_SettingsDefaults(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	st, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), st)

	require.NoError(t, s.PutSettings(ctx, model.Settings{OpeningTime: "08:00", ClosingTime: "12:00", TimeSlots: []string{}}))
	st, err = s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "08:00", st.OpeningTime)
	assert.Empty(t, st.TimeSlots)
	assert.Equal(t, model.Lead1Hour, st.ReminderLead)
}

func TestMemoryStore_DeleteCatalogEntries(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.UpsertService(ctx, model.Service{ID: "cut", Name: "Haircut", DurationMinutes: 30}))
	require.NoError(t, s.UpsertProvider(ctx, model.Provider{ID: "p1", Name: "Maria"}))

	require.NoError(t, s.DeleteService(ctx, "cut"))
	_, err := s.GetService(ctx, "cut")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.DeleteService(ctx, "cut"), model.ErrNotFound)

	require.NoError(t, s.DeleteProvider(ctx, "p1"))
	_, err = s.GetProvider(ctx, "p1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.DeleteProvider(ctx, "p1"), model.ErrNotFound)
}

func TestMemoryStore_Preferences(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p, err := s.GetPreferences(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.UserID)
	assert.NotNil(t, p.ReminderLeads)
	assert.Empty(t, p.ReminderLeads)

	leads := []model.ReminderLead{model.Lead30Min, model.Lead1Day}
	require.NoError(t, s.PutPreferences(ctx, model.Preferences{UserID: "alice", ReminderLeads: leads}))
	leads[0] = model.Lead10Min

	p, err = s.GetPreferences(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []model.ReminderLead{model.Lead30Min, model.Lead1Day}, p.ReminderLeads)
}

func TestMemoryStore_WithLocksSerializesOverlappingKeys(t *testing.T) {
	s := NewMemoryStore()
	var inside, maxInside int32
	var wg sync.WaitGroup
	keySets := [][]string{{"p1|2030-01-07"}, {"p1|2030-01-08", "p1|2030-01-07"}, {"p1|2030-01-07", "p1|2030-01-07"}}
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(keys []string) {
			defer wg.Done()
			_ = s.WithLocks(context.Background(), keys, func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}(keySets[i%len(keySets)])
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
	assert.Empty(t, s.locks.locks, "idle keys are released")
}

func ids(bs []model.Booking) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.ID
	}
	return out
}
