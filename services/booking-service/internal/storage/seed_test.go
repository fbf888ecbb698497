package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	n, err := SeedCatalog(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	services, err := s.ListServices(ctx)
	require.NoError(t, err)
	assert.Len(t, services, 5)

	n, err = SeedCatalog(ctx, s)
	require.NoError(t, err)
	assert.Zero(t, n, "second run leaves existing catalog alone")
}

func TestSeedCatalog_KeepsExistingServices(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.UpsertService(ctx, model.Service{ID: "x", Name: "Custom", DurationMinutes: 20}))

	n, err := SeedCatalog(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "only providers were empty")

	services, err := s.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "Custom", services[0].Name)
}
