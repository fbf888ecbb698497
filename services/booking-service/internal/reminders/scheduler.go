// Package reminders fires one notification per booking shortly before it starts.
package reminders

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/notify"
)

const (
	DefaultLead  = time.Hour
	DefaultGrace = 5 * time.Second
)

// Job is one pending reminder. Lead defaults to DefaultLead.
type Job struct {
	BookingID string
	StartTime time.Time
	Lead      time.Duration
	To        string
	Body      string
}

// Pending describes an armed job.
type Pending struct {
	BookingID string
	FireAt    time.Time
}

type Config struct {
	Clock Clock
	Grace time.Duration
}

// Scheduler keeps at most one armed job per booking. The table lives only in
// memory and is rebuilt from stored bookings at startup.
type Scheduler struct {
	dispatcher notify.Dispatcher
	logger     *slog.Logger
	clock      Clock
	grace      time.Duration

	mu       sync.Mutex
	jobs     map[string]*entry
	seq      uint64
	stopped  bool
	inFlight sync.WaitGroup
}

type entry struct {
	job    Job
	fireAt time.Time
	gen    uint64
	timer  Timer
}

func NewScheduler(dispatcher notify.Dispatcher, logger *slog.Logger, cfg Config) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultGrace
	}
	return &Scheduler{
		dispatcher: dispatcher,
		logger:     logger,
		clock:      cfg.Clock,
		grace:      cfg.Grace,
		jobs:       map[string]*entry{},
	}
}

// Arm schedules job, replacing any job already armed for the same booking.
// A fire time already in the past is pushed to now+grace so the reminder is
// still sent once. It returns the effective fire time.
func (s *Scheduler) Arm(job Job) time.Time {
	lead := job.Lead
	if lead <= 0 {
		lead = DefaultLead
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	fireAt := job.StartTime.Add(-lead)
	if !fireAt.After(now) {
		fireAt = now.Add(s.grace)
	}
	if s.stopped {
		s.logger.Warn("reminder not armed, scheduler stopped", "booking_id", job.BookingID)
		return fireAt
	}

	if old := s.jobs[job.BookingID]; old != nil {
		old.timer.Stop()
	}
	s.seq++
	e := &entry{job: job, fireAt: fireAt, gen: s.seq}
	gen := e.gen
	e.timer = s.clock.AfterFunc(fireAt.Sub(now), func() { s.fire(job.BookingID, gen) })
	s.jobs[job.BookingID] = e

	s.logger.Debug("reminder armed", "booking_id", job.BookingID, "fire_at", fireAt)
	return fireAt
}

// Disarm drops the job for bookingID. It reports whether one was armed. A
// fire that already started dispatching is allowed to finish.
func (s *Scheduler) Disarm(bookingID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.jobs[bookingID]
	if e == nil {
		return false
	}
	e.timer.Stop()
	delete(s.jobs, bookingID)
	return true
}

// Pending lists armed jobs ordered by fire time.
func (s *Scheduler) Pending() []Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Pending, 0, len(s.jobs))
	for id, e := range s.jobs {
		out = append(out, Pending{BookingID: id, FireAt: e.fireAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out
}

// Stop cancels every armed job and waits for in-flight dispatches.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, e := range s.jobs {
		e.timer.Stop()
		delete(s.jobs, id)
	}
	s.mu.Unlock()
	s.inFlight.Wait()
}

// fire claims the job only if gen is still the armed generation, so a job
// replaced or disarmed concurrently never dispatches, and a job dispatches at
// most once.
func (s *Scheduler) fire(bookingID string, gen uint64) {
	s.mu.Lock()
	e := s.jobs[bookingID]
	if s.stopped || e == nil || e.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.jobs, bookingID)
	s.inFlight.Add(1)
	s.mu.Unlock()
	defer s.inFlight.Done()

	ctx, span := otel.Tracer("booking-service/reminders").Start(context.Background(), "reminder.fire")
	span.SetAttributes(attribute.String("booking.id", bookingID))
	defer span.End()

	if err := s.dispatcher.Send(ctx, e.job.To, e.job.Body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
		s.logger.Error("reminder dispatch failed", "booking_id", bookingID, "err", err)
		return
	}
	s.logger.Info("reminder sent", "booking_id", bookingID)
}
