package storage

import (
	"context"
	"fmt"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

var seedServices = []model.Service{
	{ID: "cut-men", Name: "Men's cut", DurationMinutes: 30, Price: 25, Description: "Classic or modern cut"},
	{ID: "cut-women", Name: "Women's cut", DurationMinutes: 45, Price: 35, Description: "Cut and styling"},
	{ID: "color", Name: "Color", DurationMinutes: 90, Price: 60, Description: "Full coloring"},
	{ID: "blow-dry", Name: "Blow-dry", DurationMinutes: 30, Price: 20, Description: "Wash and blow-dry"},
	{ID: "treatment", Name: "Treatment", DurationMinutes: 60, Price: 45, Description: "Hair care treatment"},
}

var seedProviders = []model.Provider{
	{ID: "marco", Name: "Marco", Specialties: []string{"cut-men", "cut-women"}},
	{ID: "laura", Name: "Laura", Specialties: []string{"color", "treatment"}},
	{ID: "giuseppe", Name: "Giuseppe", Specialties: []string{"cut-men", "blow-dry"}},
}

// SeedCatalog fills the services and providers collections, each only when
// it is empty. It reports how many records were written.
func SeedCatalog(ctx context.Context, s Store) (int, error) {
	written := 0
	services, err := s.ListServices(ctx)
	if err != nil {
		return 0, fmt.Errorf("list services: %w", err)
	}
	if len(services) == 0 {
		for _, svc := range seedServices {
			if err := s.UpsertService(ctx, svc); err != nil {
				return written, fmt.Errorf("seed service %s: %w", svc.ID, err)
			}
			written++
		}
	}

	providers, err := s.ListProviders(ctx)
	if err != nil {
		return written, fmt.Errorf("list providers: %w", err)
	}
	if len(providers) == 0 {
		for _, p := range seedProviders {
			if err := s.UpsertProvider(ctx, p); err != nil {
				return written, fmt.Errorf("seed provider %s: %w", p.ID, err)
			}
			written++
		}
	}
	return written, nil
}
