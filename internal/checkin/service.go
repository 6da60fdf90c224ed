package checkin

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/backend/internal/apperr"
	"github.com/cornerstone-fellowship/backend/internal/metrics"
	"github.com/cornerstone-fellowship/backend/internal/models"
	"github.com/cornerstone-fellowship/backend/internal/staff"
	"github.com/cornerstone-fellowship/backend/internal/store"
)

// Outcome reports a redemption result. AlreadyRedeemed is a success outcome:
// the record was checked in earlier and StaffName/CheckedInAt carry the
// original redemption, which is never overwritten.
type Outcome struct {
	AlreadyRedeemed bool      `json:"alreadyRedeemed"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	StaffName       string    `json:"staffName"`
	CheckedInAt     time.Time `json:"checkedInAt"`
}

// Coordinator applies the NotCheckedIn -> CheckedIn transition. A record has
// no reverse transition in this design.
type Coordinator struct {
	rows       store.RowStore
	codec      *Codec
	locks      *store.KeyedMutex
	credential *staff.Credential
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewCoordinator(rows store.RowStore, codec *Codec, locks *store.KeyedMutex, credential *staff.Credential, logger *zap.Logger, m *metrics.Metrics) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		rows:       rows,
		codec:      codec,
		locks:      locks,
		credential: credential,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
	}
}

// Redeem validates the staff secret, decodes the token, and performs the
// first-wins check-in transition. The read-then-conditionally-write is held
// under the per-email lock so exactly one of N racing scans wins.
func (s *Coordinator) Redeem(ctx context.Context, token, staffName, password string) (*Outcome, error) {
	if staffName == "" {
		return nil, apperr.NewMissingFieldError("staffName")
	}
	if !s.credential.Matches(password) {
		s.metrics.CountRedemption("unauthorized")
		return nil, apperr.NewUnauthorizedError("invalid staff password")
	}

	email, err := s.codec.Decode(token)
	if err != nil {
		s.metrics.CountRedemption("invalid_token")
		return nil, err
	}
	email = models.NormalizeEmail(email)

	s.locks.Lock(email)
	defer s.locks.Unlock(email)

	reg, err := s.rows.Get(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.CountRedemption("not_found")
			return nil, apperr.NewNotFoundError("no registration for this token")
		}
		return nil, apperr.NewStoreUnavailableError("failed to look up registration", err)
	}

	if reg.CheckedIn() {
		s.metrics.CountRedemption("already_redeemed")
		return &Outcome{
			AlreadyRedeemed: true,
			Email:           reg.Email,
			Name:            displayName(reg),
			StaffName:       reg.CheckinStaff,
			CheckedInAt:     *reg.CheckinAt,
		}, nil
	}

	at := s.now()
	reg.CheckinStaff = staffName
	reg.CheckinAt = &at
	if err := s.rows.Save(ctx, reg); err != nil {
		return nil, apperr.NewStoreUnavailableError("failed to record check-in", err)
	}

	s.metrics.CountRedemption("redeemed")
	s.logger.Info("checked in",
		zap.String("email", email),
		zap.String("staff", staffName),
	)
	return &Outcome{
		Email:       reg.Email,
		Name:        displayName(reg),
		StaffName:   staffName,
		CheckedInAt: at,
	}, nil
}

// Status reports a record's check-in state without mutating it. Used by the
// scanner app's lookup view.
func (s *Coordinator) Status(ctx context.Context, email string) (*Outcome, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, apperr.NewMissingFieldError("email")
	}

	reg, err := s.rows.Get(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NewNotFoundError("no registration for this email")
		}
		return nil, apperr.NewStoreUnavailableError("failed to look up registration", err)
	}

	out := &Outcome{
		AlreadyRedeemed: reg.CheckedIn(),
		Email:           reg.Email,
		Name:            displayName(reg),
	}
	if reg.CheckedIn() {
		out.StaffName = reg.CheckinStaff
		out.CheckedInAt = *reg.CheckinAt
	}
	return out, nil
}

func displayName(reg *models.Registration) string {
	if len(reg.Attendees) > 0 {
		a := reg.Attendees[0]
		if a.FirstName != "" || a.LastName != "" {
			return a.FirstName + " " + a.LastName
		}
	}
	return reg.Email
}
