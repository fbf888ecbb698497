package reminders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	To   string
	Body string
}

type recorder struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (r *recorder) Send(_ context.Context, to, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{To: to, Body: body})
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

var t0 = time.Date(2030, 1, 7, 8, 0, 0, 0, time.UTC)

func newTestScheduler() (*Scheduler, *ManualClock, *recorder) {
	clock := NewManualClock(t0)
	rec := &recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewScheduler(rec, logger, Config{Clock: clock}), clock, rec
}

func TestArm_FiresOneLeadBeforeStart(t *testing.T) {
	s, clock, rec := newTestScheduler()

	fireAt := s.Arm(Job{BookingID: "b1", StartTime: t0.Add(3 * time.Hour), To: "+1555", Body: "see you"})
	assert.Equal(t, t0.Add(2*time.Hour), fireAt)

	clock.Advance(2*time.Hour - time.Second)
	assert.Equal(t, 0, rec.count())

	clock.Advance(time.Second)
	require.Equal(t, 1, rec.count())
	assert.Equal(t, sent{To: "+1555", Body: "see you"}, rec.sent[0])
	assert.Empty(t, s.Pending(), "fired jobs are discarded")
}

func TestArm_PastFireTimeIsClamped(t *testing.T) {
	s, clock, rec := newTestScheduler()

	fireAt := s.Arm(Job{BookingID: "b1", StartTime: t0.Add(30 * time.Minute), To: "+1555"})
	assert.Equal(t, t0.Add(DefaultGrace), fireAt)

	clock.Advance(DefaultGrace)
	assert.Equal(t, 1, rec.count(), "a booking under an hour away still gets its reminder")
}

func TestArm_CustomLead(t *testing.T) {
	s, _, _ := newTestScheduler()
	fireAt := s.Arm(Job{BookingID: "b1", StartTime: t0.Add(3 * time.Hour), Lead: 10 * time.Minute})
	assert.Equal(t, t0.Add(3*time.Hour-10*time.Minute), fireAt)
}

func TestRearm_ReplacesPreviousJob(t *testing.T) {
	s, clock, rec := newTestScheduler()

	s.Arm(Job{BookingID: "b1", StartTime: t0.Add(2 * time.Hour), Body: "old"})
	s.Arm(Job{BookingID: "b1", StartTime: t0.Add(5 * time.Hour), Body: "new"})

	pending := s.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, t0.Add(4*time.Hour), pending[0].FireAt)

	clock.Advance(time.Hour)
	assert.Equal(t, 0, rec.count(), "the replaced fire time passes silently")

	clock.Advance(3 * time.Hour)
	require.Equal(t, 1, rec.count())
	assert.Equal(t, "new", rec.sent[0].Body)

	clock.Advance(24 * time.Hour)
	assert.Equal(t, 1, rec.count(), "never fires twice")
}

func TestDisarm(t *testing.T) {
	s, clock, rec := newTestScheduler()

	s.Arm(Job{BookingID: "b1", StartTime: t0.Add(2 * time.Hour)})
	assert.True(t, s.Disarm("b1"))
	assert.False(t, s.Disarm("b1"), "second disarm is a no-op")
	assert.False(t, s.Disarm("missing"))

	clock.Advance(3 * time.Hour)
	assert.Equal(t, 0, rec.count())
}

func TestFire_StaleGenerationIsIgnored(t *testing.T) {
	s, _, rec := newTestScheduler()

	s.Arm(Job{BookingID: "b1", StartTime: t0.Add(2 * time.Hour)})
	staleGen := s.jobs["b1"].gen
	s.Arm(Job{BookingID: "b1", StartTime: t0.Add(2 * time.Hour)})

	// A timer from the first arm that slipped past Stop must not dispatch.
	s.fire("b1", staleGen)
	assert.Equal(t, 0, rec.count())
	assert.Len(t, s.Pending(), 1)
}

func TestDispatchFailureIsDropped(t *testing.T) {
	s, clock, rec := newTestScheduler()
	rec.err = errors.New("gateway down")

	s.Arm(Job{BookingID: "b1", StartTime: t0.Add(2 * time.Hour)})
	clock.Advance(time.Hour)
	assert.Equal(t, 1, rec.count())
	assert.Empty(t, s.Pending(), "no retry")
}

func TestStop(t *testing.T) {
	s, clock, rec := newTestScheduler()
	s.Arm(Job{BookingID: "b1", StartTime: t0.Add(2 * time.Hour)})
	s.Stop()

	s.Arm(Job{BookingID: "b2", StartTime: t0.Add(2 * time.Hour)})
	clock.Advance(3 * time.Hour)
	assert.Equal(t, 0, rec.count())
	assert.Empty(t, s.Pending())
}

func TestConcurrentArmDisarmNeverDuplicates(t *testing.T) {
	rec := &recorder{}
	s := NewScheduler(rec, slog.New(slog.NewTextHandler(io.Discard, nil)), Config{Grace: time.Millisecond})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Arm(Job{BookingID: "b1", StartTime: time.Now()})
		}()
		go func() {
			defer wg.Done()
			s.Disarm("b1")
		}()
	}
	wg.Wait()
	s.Arm(Job{BookingID: "b1", StartTime: time.Now()})

	require.Eventually(t, func() bool { return len(s.Pending()) == 0 }, time.Second, 5*time.Millisecond)
	s.Stop()
	// Each arm may fire at most once; the final arm always fires.
	assert.GreaterOrEqual(t, rec.count(), 1)
	assert.LessOrEqual(t, rec.count(), 51)
}
