package storage

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

// MemoryStore keeps everything in process. It backs tests and runs without
// DATABASE_URL.
type MemoryStore struct {
	mu        sync.RWMutex
	services  map[string]model.Service
	providers map[string]model.Provider
	settings  *model.Settings
	prefs     map[string]model.Preferences
	bookings  map[string]model.Booking

	locks *keyedMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		services:  map[string]model.Service{},
		providers: map[string]model.Provider{},
		prefs:     map[string]model.Preferences{},
		bookings:  map[string]model.Booking{},
		locks:     newKeyedMutex(),
	}
}

func (s *MemoryStore) GetService(_ context.Context, id string) (model.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	if !ok {
		return model.Service{}, fmt.Errorf("service %q: %w", id, model.ErrNotFound)
	}
	return svc, nil
}

func (s *MemoryStore) ListServices(context.Context) ([]model.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Service, 0, len(s.services))
	for _, svc := range s.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) UpsertService(_ context.Context, svc model.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = svc
	return nil
}

func (s *MemoryStore) DeleteService(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.services[id]; !ok {
		return fmt.Errorf("service %q: %w", id, model.ErrNotFound)
	}
	delete(s.services, id)
	return nil
}

func (s *MemoryStore) GetProvider(_ context.Context, id string) (model.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[id]
	if !ok {
		return model.Provider{}, fmt.Errorf("provider %q: %w", id, model.ErrNotFound)
	}
	return p, nil
}

func (s *MemoryStore) ListProviders(context.Context) ([]model.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Provider, 0, len(s.providers))
	for _, p := range s.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) UpsertProvider(_ context.Context, p model.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Specialties = slices.Clone(p.Specialties)
	s.providers[p.ID] = p
	return nil
}

func (s *MemoryStore) DeleteProvider(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[id]; !ok {
		return fmt.Errorf("provider %q: %w", id, model.ErrNotFound)
	}
	delete(s.providers, id)
	return nil
}

func (s *MemoryStore) GetSettings(context.Context) (model.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return model.DefaultSettings(), nil
	}
	return s.settings.WithDefaults(), nil
}

func (s *MemoryStore) PutSettings(_ context.Context, settings model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings.WorkingDays = slices.Clone(settings.WorkingDays)
	settings.TimeSlots = slices.Clone(settings.TimeSlots)
	s.settings = &settings
	return nil
}

func (s *MemoryStore) GetPreferences(_ context.Context, userID string) (model.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prefs[userID]
	if !ok {
		return model.Preferences{UserID: userID, ReminderLeads: []model.ReminderLead{}}, nil
	}
	p.ReminderLeads = slices.Clone(p.ReminderLeads)
	return p, nil
}

func (s *MemoryStore) PutPreferences(_ context.Context, p model.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ReminderLeads = slices.Clone(p.ReminderLeads)
	if p.ReminderLeads == nil {
		p.ReminderLeads = []model.ReminderLead{}
	}
	s.prefs[p.UserID] = p
	return nil
}

func (s *MemoryStore) GetBooking(_ context.Context, id string) (model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, fmt.Errorf("booking %q: %w", id, model.ErrNotFound)
	}
	return b, nil
}

func (s *MemoryStore) ListBookings(_ context.Context, f Filter) ([]model.Booking, error) {
	return s.collect(func(b model.Booking) bool {
		if f.OwnerID != "" && b.UserID != f.OwnerID {
			return false
		}
		if f.Status != "" && b.Status != f.Status {
			return false
		}
		if !f.From.IsZero() && b.StartTime.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && !b.StartTime.Before(f.To) {
			return false
		}
		return true
	}, true), nil
}

func (s *MemoryStore) ListActiveBookings(_ context.Context, providerID string, from, to time.Time) ([]model.Booking, error) {
	return s.collect(func(b model.Booking) bool {
		return b.ProviderID == providerID && b.Status.Active() &&
			!b.StartTime.Before(from) && b.StartTime.Before(to)
	}, false), nil
}

func (s *MemoryStore) ListUpcoming(_ context.Context, from time.Time) ([]model.Booking, error) {
	return s.collect(func(b model.Booking) bool {
		return b.Status.Active() && !b.StartTime.Before(from)
	}, false), nil
}

// collect returns matching bookings ordered by start time.
func (s *MemoryStore) collect(match func(model.Booking) bool, newestFirst bool) []model.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Booking{}
	for _, b := range s.bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

func (s *MemoryStore) InsertBooking(_ context.Context, b model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; ok {
		return fmt.Errorf("booking %q already exists: %w", b.ID, model.ErrConflict)
	}
	if err := s.checkStartUnique(b); err != nil {
		return err
	}
	s.bookings[b.ID] = b
	return nil
}

// checkStartUnique mirrors the partial unique index on (provider_id, start_time).
func (s *MemoryStore) checkStartUnique(b model.Booking) error {
	if !b.Status.Active() {
		return nil
	}
	for _, other := range s.bookings {
		if other.ID != b.ID && other.ProviderID == b.ProviderID && other.Status.Active() && other.StartTime.Equal(b.StartTime) {
			return fmt.Errorf("provider %q already booked at %s: %w", b.ProviderID, b.StartTime.Format(time.RFC3339), model.ErrConflict)
		}
	}
	return nil
}

func (s *MemoryStore) UpdateBooking(_ context.Context, b model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; !ok {
		return fmt.Errorf("booking %q: %w", b.ID, model.ErrNotFound)
	}
	if err := s.checkStartUnique(b); err != nil {
		return err
	}
	s.bookings[b.ID] = b
	return nil
}

func (s *MemoryStore) DeleteBooking(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return fmt.Errorf("booking %q: %w", id, model.ErrNotFound)
	}
	delete(s.bookings, id)
	return nil
}

func (s *MemoryStore) DeleteCancelled(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, b := range s.bookings {
		if b.Status == model.StatusCancelled {
			ids = append(ids, id)
			delete(s.bookings, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) WithLocks(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	unlock := s.locks.lock(keys)
	defer unlock()
	return fn(ctx)
}

// keyedMutex hands out one mutex per key, dropping entries nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[string]*refMutex{}}
}

// lock acquires keys in sorted order so overlapping key sets cannot deadlock.
func (k *keyedMutex) lock(keys []string) func() {
	keys = sortedUnique(keys)
	held := make([]*refMutex, 0, len(keys))
	for _, key := range keys {
		k.mu.Lock()
		m := k.locks[key]
		if m == nil {
			m = &refMutex{}
			k.locks[key] = m
		}
		m.refs++
		k.mu.Unlock()

		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
			k.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(k.locks, keys[i])
			}
			k.mu.Unlock()
		}
	}
}

func sortedUnique(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}
