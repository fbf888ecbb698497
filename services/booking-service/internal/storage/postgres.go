package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

//go:embed schema.sql
var Schema string

// PostgresStore keeps bookings in Postgres. WithLocks takes transaction-scoped
// advisory locks, and a partial unique index on (provider_id, start_time)
// backs it up for identical starts.
type PostgresStore struct {
	pool *db.Pool
}

func NewPostgresStore(pool *db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies the embedded schema. Statements are idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// q returns the transaction opened by WithLocks, if any, else the pool.
func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

func (s *PostgresStore) WithLocks(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	return s.pool.InTx(ctx, func(tx pgx.Tx) error {
		for _, key := range sortedUnique(keys) {
			if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, "booking:"+key); err != nil {
				return fmt.Errorf("advisory lock %s: %w", key, err)
			}
		}
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (s *PostgresStore) GetService(ctx context.Context, id string) (model.Service, error) {
	var svc model.Service
	err := s.q(ctx).QueryRow(ctx, `
		SELECT id, name, duration_minutes, price, description
		FROM services WHERE id = $1
	`, id).Scan(&svc.ID, &svc.Name, &svc.DurationMinutes, &svc.Price, &svc.Description)
	if err != nil {
		return model.Service{}, mapErr(fmt.Sprintf("service %q", id), err)
	}
	return svc, nil
}

func (s *PostgresStore) ListServices(ctx context.Context) ([]model.Service, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT id, name, duration_minutes, price, description
		FROM services ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Service, error) {
		var svc model.Service
		err := row.Scan(&svc.ID, &svc.Name, &svc.DurationMinutes, &svc.Price, &svc.Description)
		return svc, err
	})
}

func (s *PostgresStore) UpsertService(ctx context.Context, svc model.Service) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO services (id, name, duration_minutes, price, description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			duration_minutes = EXCLUDED.duration_minutes,
			price = EXCLUDED.price,
			description = EXCLUDED.description
	`, svc.ID, svc.Name, svc.DurationMinutes, svc.Price, svc.Description)
	return err
}

func (s *PostgresStore) DeleteService(ctx context.Context, id string) error {
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("service %q: %w", id, model.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) GetProvider(ctx context.Context, id string) (model.Provider, error) {
	var p model.Provider
	err := s.q(ctx).QueryRow(ctx, `
		SELECT id, name, specialties FROM providers WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Specialties)
	if err != nil {
		return model.Provider{}, mapErr(fmt.Sprintf("provider %q", id), err)
	}
	return p, nil
}

func (s *PostgresStore) ListProviders(ctx context.Context) ([]model.Provider, error) {
	rows, err := s.q(ctx).Query(ctx, `SELECT id, name, specialties FROM providers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Provider, error) {
		var p model.Provider
		err := row.Scan(&p.ID, &p.Name, &p.Specialties)
		return p, err
	})
}

func (s *PostgresStore) UpsertProvider(ctx context.Context, p model.Provider) error {
	specialties := p.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO providers (id, name, specialties)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, specialties = EXCLUDED.specialties
	`, p.ID, p.Name, specialties)
	return err
}

func (s *PostgresStore) DeleteProvider(ctx context.Context, id string) error {
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM providers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("provider %q: %w", id, model.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) GetSettings(ctx context.Context) (model.Settings, error) {
	var (
		st   model.Settings
		days []int32
		lead string
	)
	err := s.q(ctx).QueryRow(ctx, `
		SELECT opening_time, closing_time, working_days, time_slots, admin_phone, reminder_lead
		FROM salon_settings WHERE id = 1
	`).Scan(&st.OpeningTime, &st.ClosingTime, &days, &st.TimeSlots, &st.AdminPhone, &lead)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, err
	}
	st.WorkingDays = make([]int, len(days))
	for i, d := range days {
		st.WorkingDays[i] = int(d)
	}
	if st.TimeSlots == nil {
		st.TimeSlots = []string{}
	}
	st.ReminderLead = model.ReminderLead(lead)
	return st.WithDefaults(), nil
}

func (s *PostgresStore) PutSettings(ctx context.Context, st model.Settings) error {
	days := make([]int32, len(st.WorkingDays))
	for i, d := range st.WorkingDays {
		days[i] = int32(d)
	}
	slots := st.TimeSlots
	if slots == nil {
		slots = []string{}
	}
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO salon_settings (id, opening_time, closing_time, working_days, time_slots, admin_phone, reminder_lead, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			opening_time = EXCLUDED.opening_time,
			closing_time = EXCLUDED.closing_time,
			working_days = EXCLUDED.working_days,
			time_slots = EXCLUDED.time_slots,
			admin_phone = EXCLUDED.admin_phone,
			reminder_lead = EXCLUDED.reminder_lead,
			updated_at = now()
	`, st.OpeningTime, st.ClosingTime, days, slots, st.AdminPhone, string(st.ReminderLead))
	return err
}

func (s *PostgresStore) GetPreferences(ctx context.Context, userID string) (model.Preferences, error) {
	var leads []string
	err := s.q(ctx).QueryRow(ctx, `
		SELECT reminder_leads FROM user_preferences WHERE user_id = $1
	`, userID).Scan(&leads)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return model.Preferences{}, err
	}
	p := model.Preferences{UserID: userID, ReminderLeads: make([]model.ReminderLead, len(leads))}
	for i, l := range leads {
		p.ReminderLeads[i] = model.ReminderLead(l)
	}
	return p, nil
}

func (s *PostgresStore) PutPreferences(ctx context.Context, p model.Preferences) error {
	leads := make([]string, len(p.ReminderLeads))
	for i, l := range p.ReminderLeads {
		leads[i] = string(l)
	}
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO user_preferences (user_id, reminder_leads, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET
			reminder_leads = EXCLUDED.reminder_leads,
			updated_at = now()
	`, p.UserID, leads)
	return err
}

const bookingColumns = `id, user_id, user_name, user_phone, user_email, provider_id, provider_name,
	service_id, service_name, start_time, status, manual, created_at`

func scanBooking(row pgx.Row) (model.Booking, error) {
	var (
		b      model.Booking
		status string
	)
	err := row.Scan(&b.ID, &b.UserID, &b.UserName, &b.UserPhone, &b.UserEmail, &b.ProviderID, &b.ProviderName,
		&b.ServiceID, &b.ServiceName, &b.StartTime, &status, &b.Manual, &b.CreatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	b.Status = model.Status(status)
	b.StartTime = b.StartTime.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

func (s *PostgresStore) queryBookings(ctx context.Context, sql string, args ...any) ([]model.Booking, error) {
	rows, err := s.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Booking, error) {
		return scanBooking(row)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Booking{}
	}
	return out, nil
}

func (s *PostgresStore) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	b, err := scanBooking(s.q(ctx).QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return model.Booking{}, mapErr(fmt.Sprintf("booking %q", id), err)
	}
	return b, nil
}

func (s *PostgresStore) ListBookings(ctx context.Context, f Filter) ([]model.Booking, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.OwnerID != "" {
		add("user_id = $%d", f.OwnerID)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if !f.From.IsZero() {
		add("start_time >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("start_time < $%d", f.To)
	}
	sql := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	return s.queryBookings(ctx, sql+` ORDER BY start_time DESC`, args...)
}

func (s *PostgresStore) ListActiveBookings(ctx context.Context, providerID string, from, to time.Time) ([]model.Booking, error) {
	return s.queryBookings(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE provider_id = $1 AND status <> 'cancelled' AND start_time >= $2 AND start_time < $3
		ORDER BY start_time
	`, providerID, from, to)
}

func (s *PostgresStore) ListUpcoming(ctx context.Context, from time.Time) ([]model.Booking, error) {
	return s.queryBookings(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status <> 'cancelled' AND start_time >= $1
		ORDER BY start_time
	`, from)
}

func (s *PostgresStore) InsertBooking(ctx context.Context, b model.Booking) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, b.ID, b.UserID, b.UserName, b.UserPhone, b.UserEmail, b.ProviderID, b.ProviderName,
		b.ServiceID, b.ServiceName, b.StartTime, string(b.Status), b.Manual, b.CreatedAt)
	return mapErr(fmt.Sprintf("insert booking %q", b.ID), err)
}

func (s *PostgresStore) UpdateBooking(ctx context.Context, b model.Booking) error {
	tag, err := s.q(ctx).Exec(ctx, `
		UPDATE bookings
		SET start_time = $2, status = $3, user_name = $4, user_phone = $5, user_email = $6
		WHERE id = $1
	`, b.ID, b.StartTime, string(b.Status), b.UserName, b.UserPhone, b.UserEmail)
	if err != nil {
		return mapErr(fmt.Sprintf("update booking %q", b.ID), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking %q: %w", b.ID, model.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteBooking(ctx context.Context, id string) error {
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking %q: %w", id, model.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteCancelled(ctx context.Context) ([]string, error) {
	rows, err := s.q(ctx).Query(ctx, `DELETE FROM bookings WHERE status = 'cancelled' RETURNING id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// mapErr translates driver errors into model errors, leaving others wrapped as is.
func mapErr(what string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, model.ErrNotFound)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", what, model.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
