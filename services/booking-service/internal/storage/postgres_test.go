package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr("booking b1", nil))
	assert.ErrorIs(t, mapErr("booking b1", pgx.ErrNoRows), model.ErrNotFound)

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "bookings_provider_start_active"})
	assert.ErrorIs(t, mapErr("insert booking", dup), model.ErrConflict)

	other := &pgconn.PgError{Code: "57014"}
	err := mapErr("list bookings", other)
	assert.False(t, errors.Is(err, model.ErrConflict))
	assert.ErrorAs(t, err, new(*pgconn.PgError))
}

func TestSchema_KeepsActiveStartUnique(t *testing.T) {
	assert.Contains(t, Schema, "CREATE UNIQUE INDEX IF NOT EXISTS")
	assert.Contains(t, Schema, "WHERE status <> 'cancelled'")
}

func TestSchema_StoresUserPreferences(t *testing.T) {
	assert.Contains(t, Schema, "CREATE TABLE IF NOT EXISTS user_preferences")
}
