package booking

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/schedule"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

type ListFilter struct {
	Date    string // YYYY-MM-DD in the salon's time zone
	Status  string
	OwnerID string
}

// List returns bookings newest first. Non-admins only ever see their own.
func (s *Service) List(ctx context.Context, id model.Identity, f ListFilter) ([]model.Booking, error) {
	if id.ID == "" && !id.IsAdmin {
		return nil, fmt.Errorf("%w: caller identity required", model.ErrForbidden)
	}
	var sf storage.Filter
	if id.IsAdmin {
		sf.OwnerID = f.OwnerID
	} else {
		sf.OwnerID = id.ID
	}
	if f.Status != "" {
		st, err := model.ParseStatus(f.Status)
		if err != nil {
			return nil, err
		}
		sf.Status = st
	}
	if f.Date != "" {
		day, err := schedule.ParseDate(f.Date, s.loc)
		if err != nil {
			return nil, err
		}
		sf.From, sf.To = day, day.AddDate(0, 0, 1)
	}
	return s.store.ListBookings(ctx, sf)
}

func (s *Service) Services(ctx context.Context) ([]model.Service, error) {
	return s.store.ListServices(ctx)
}

func (s *Service) Providers(ctx context.Context) ([]model.Provider, error) {
	return s.store.ListProviders(ctx)
}

func (s *Service) Settings(ctx context.Context) (model.Settings, error) {
	return s.store.GetSettings(ctx)
}

// UpdateSettings validates and stores new salon settings. Unset fields keep
// their defaults.
func (s *Service) UpdateSettings(ctx context.Context, id model.Identity, st model.Settings) (model.Settings, error) {
	if err := requireAdmin(id); err != nil {
		return model.Settings{}, err
	}
	st = st.WithDefaults()
	if _, err := model.ParseReminderLead(string(st.ReminderLead)); err != nil {
		return model.Settings{}, err
	}
	if err := schedule.Validate(st); err != nil {
		return model.Settings{}, fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	st.AdminPhone = strings.TrimSpace(st.AdminPhone)
	if err := s.store.PutSettings(ctx, st); err != nil {
		return model.Settings{}, err
	}
	s.invalidateAll(ctx)
	return st, nil
}

// SaveService adds or replaces a catalog service.
func (s *Service) SaveService(ctx context.Context, id model.Identity, svc model.Service) (model.Service, error) {
	if err := requireAdmin(id); err != nil {
		return model.Service{}, err
	}
	svc.Name = strings.TrimSpace(svc.Name)
	if svc.Name == "" {
		return model.Service{}, fmt.Errorf("%w: service name is required", model.ErrValidation)
	}
	if svc.DurationMinutes <= 0 || time.Duration(svc.DurationMinutes)*time.Minute > 24*time.Hour {
		return model.Service{}, fmt.Errorf("%w: duration must be between 1 minute and 24 hours", model.ErrValidation)
	}
	if svc.Price < 0 {
		return model.Service{}, fmt.Errorf("%w: price must not be negative", model.ErrValidation)
	}
	if svc.ID == "" {
		svc.ID = s.newID()
	}
	if err := s.store.UpsertService(ctx, svc); err != nil {
		return model.Service{}, err
	}
	s.invalidateAll(ctx)
	return svc, nil
}

// SaveProvider adds or replaces a provider.
func (s *Service) SaveProvider(ctx context.Context, id model.Identity, p model.Provider) (model.Provider, error) {
	if err := requireAdmin(id); err != nil {
		return model.Provider{}, err
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return model.Provider{}, fmt.Errorf("%w: provider name is required", model.ErrValidation)
	}
	if p.ID == "" {
		p.ID = s.newID()
	}
	if err := s.store.UpsertProvider(ctx, p); err != nil {
		return model.Provider{}, err
	}
	return p, nil
}

// DeleteService removes a catalog service. Bookings that reference it stay and
// block the fallback duration from then on.
func (s *Service) DeleteService(ctx context.Context, id model.Identity, serviceID string) error {
	if err := requireAdmin(id); err != nil {
		return err
	}
	if err := s.store.DeleteService(ctx, serviceID); err != nil {
		return err
	}
	s.invalidateAll(ctx)
	return nil
}

// DeleteProvider removes a provider. Their bookings are kept.
func (s *Service) DeleteProvider(ctx context.Context, id model.Identity, providerID string) error {
	if err := requireAdmin(id); err != nil {
		return err
	}
	if err := s.store.DeleteProvider(ctx, providerID); err != nil {
		return err
	}
	s.cache.InvalidateProvider(ctx, providerID)
	return nil
}

// Preferences returns the caller's reminder choices.
func (s *Service) Preferences(ctx context.Context, id model.Identity) (model.Preferences, error) {
	if id.ID == "" {
		return model.Preferences{}, fmt.Errorf("%w: caller identity required", model.ErrForbidden)
	}
	return s.store.GetPreferences(ctx, id.ID)
}

// UpdatePreferences replaces the caller's reminder choices. Duplicates are
// dropped and an empty list falls back to the salon's lead. Bookings made
// from now on use the new choice.
func (s *Service) UpdatePreferences(ctx context.Context, id model.Identity, leads []string) (model.Preferences, error) {
	if id.ID == "" {
		return model.Preferences{}, fmt.Errorf("%w: caller identity required", model.ErrForbidden)
	}
	p := model.Preferences{UserID: id.ID, ReminderLeads: make([]model.ReminderLead, 0, len(leads))}
	for _, raw := range leads {
		l, err := model.ParseReminderLead(raw)
		if err != nil {
			return model.Preferences{}, err
		}
		if !slices.Contains(p.ReminderLeads, l) {
			p.ReminderLeads = append(p.ReminderLeads, l)
		}
	}
	if err := s.store.PutPreferences(ctx, p); err != nil {
		return model.Preferences{}, err
	}
	return p, nil
}
