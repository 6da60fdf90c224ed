// Package registrations implements the registration upsert: one record per
// email, merged field-by-field so server-owned values survive re-submission.
package registrations

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/backend/internal/apperr"
	"github.com/cornerstone-fellowship/backend/internal/metrics"
	"github.com/cornerstone-fellowship/backend/internal/models"
	"github.com/cornerstone-fellowship/backend/internal/store"
)

// Payload is the registrant-supplied portion of a record. Server-owned
// fields (payment flag, registration date, suite, check-in state) are absent
// on purpose and cannot be set through this path.
type Payload struct {
	Email     string
	Attendees []models.Attendee
	Mobile    string
	TShirts   []models.TShirtOrder
	TotalFee  string
}

// Service merges payloads into persisted records. Upserts for the same email
// are serialized on a per-email lock shared with the check-in path so both
// never race on one row.
type Service struct {
	rows    store.RowStore
	locks   *store.KeyedMutex
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(rows store.RowStore, locks *store.KeyedMutex, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{rows: rows, locks: locks, logger: logger, metrics: m, now: time.Now}
}

// Upsert writes the record for the payload's email, creating it if absent.
// It returns the persisted record and whether it was created. The whole row
// is written in one store call, so a store failure leaves the record as it
// was.
func (s *Service) Upsert(ctx context.Context, p Payload) (*models.Registration, bool, error) {
	email := models.NormalizeEmail(p.Email)
	if email == "" {
		return nil, false, apperr.NewMissingFieldError("email is required")
	}

	s.locks.Lock(email)
	defer s.locks.Unlock(email)

	existing, err := s.rows.Get(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, false, apperr.NewStoreUnavailableError("failed to read registration", err)
	}
	created := existing == nil

	reg := &models.Registration{
		Email:         email,
		Attendees:     p.Attendees,
		Mobile:        p.Mobile,
		TShirts:       p.TShirts,
		TotalFee:      p.TotalFee,
		LastUpdatedAt: s.now(),
	}
	if created {
		reg.Paid = models.PaidNo
		reg.RegistrationDate = s.now().Format(models.DateLayout)
	} else {
		reg.Paid = existing.Paid
		reg.RegistrationDate = existing.RegistrationDate
		reg.Suite = existing.Suite
		reg.CheckinStaff = existing.CheckinStaff
		reg.CheckinAt = existing.CheckinAt
	}

	if err := s.rows.Save(ctx, reg); err != nil {
		return nil, false, apperr.NewStoreUnavailableError("failed to save registration", err)
	}

	outcome := "updated"
	if created {
		outcome = "created"
	}
	s.metrics.CountUpsert(outcome)
	s.logger.Info("registration saved",
		zap.String("email", email),
		zap.Bool("created", created))
	return reg, created, nil
}
