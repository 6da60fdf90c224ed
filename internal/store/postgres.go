package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cornerstone-fellowship/backend/internal/models"
)

// PostgresStore is the RowStore for deployments that have outgrown the
// spreadsheet. Attendee and t-shirt lines live in jsonb; the upsert is a
// single INSERT ... ON CONFLICT so a write either lands whole or not at all.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ RowStore = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, email string) (*models.Registration, error) {
	const q = `SELECT email, paid, suite, attendees, mobile, tshirts, total_fee,
			registration_date, last_updated_at, checkin_staff, checkin_at
		FROM registrations WHERE email = $1`

	var (
		reg          models.Registration
		attendees    []byte
		tshirts      []byte
		suite, staff *string
		checkinAt    *time.Time
	)
	err := s.pool.QueryRow(ctx, q, models.NormalizeEmail(email)).Scan(
		&reg.Email, &reg.Paid, &suite, &attendees, &reg.Mobile, &tshirts,
		&reg.TotalFee, &reg.RegistrationDate, &reg.LastUpdatedAt, &staff, &checkinAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select registration: %w", err)
	}
	if suite != nil {
		reg.Suite = *suite
	}
	if staff != nil {
		reg.CheckinStaff = *staff
	}
	reg.CheckinAt = checkinAt
	if len(attendees) > 0 {
		if err := json.Unmarshal(attendees, &reg.Attendees); err != nil {
			return nil, fmt.Errorf("decode attendees: %w", err)
		}
	}
	if len(tshirts) > 0 {
		if err := json.Unmarshal(tshirts, &reg.TShirts); err != nil {
			return nil, fmt.Errorf("decode tshirts: %w", err)
		}
	}
	return &reg, nil
}

func (s *PostgresStore) Save(ctx context.Context, reg *models.Registration) error {
	attendees, err := json.Marshal(reg.Attendees)
	if err != nil {
		return fmt.Errorf("encode attendees: %w", err)
	}
	tshirts, err := json.Marshal(reg.TShirts)
	if err != nil {
		return fmt.Errorf("encode tshirts: %w", err)
	}

	const q = `INSERT INTO registrations
			(email, paid, suite, attendees, mobile, tshirts, total_fee,
			 registration_date, last_updated_at, checkin_staff, checkin_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (email) DO UPDATE SET
			paid              = EXCLUDED.paid,
			suite             = EXCLUDED.suite,
			attendees         = EXCLUDED.attendees,
			mobile            = EXCLUDED.mobile,
			tshirts           = EXCLUDED.tshirts,
			total_fee         = EXCLUDED.total_fee,
			registration_date = EXCLUDED.registration_date,
			last_updated_at   = EXCLUDED.last_updated_at,
			checkin_staff     = EXCLUDED.checkin_staff,
			checkin_at        = EXCLUDED.checkin_at`

	_, err = s.pool.Exec(ctx, q,
		models.NormalizeEmail(reg.Email), reg.Paid, reg.Suite, attendees,
		reg.Mobile, tshirts, reg.TotalFee, reg.RegistrationDate,
		reg.LastUpdatedAt, reg.CheckinStaff, reg.CheckinAt,
	)
	if err != nil {
		return fmt.Errorf("upsert registration: %w", err)
	}
	return nil
}

func (s *PostgresStore) SystemOpen(ctx context.Context) (bool, error) {
	const q = `SELECT open FROM system_control WHERE keyword = $1`
	var open bool
	err := s.pool.QueryRow(ctx, q, controlKeyword).Scan(&open)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("select control flag: %w", err)
	}
	return open, nil
}

func (s *PostgresStore) MessageTemplate(ctx context.Context) (string, error) {
	const q = `SELECT body FROM message_template LIMIT 1`
	var body string
	err := s.pool.QueryRow(ctx, q).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("select message template: %w", err)
	}
	return body, nil
}

func (s *PostgresStore) LogDeliveryFailure(ctx context.Context, f models.DeliveryFailure) error {
	const q = `INSERT INTO delivery_failures (email, failed_at, error_message) VALUES ($1, $2, $3)`
	if _, err := s.pool.Exec(ctx, q, f.Email, f.FailedAt, f.ErrorMessage); err != nil {
		return fmt.Errorf("insert delivery failure: %w", err)
	}
	return nil
}
