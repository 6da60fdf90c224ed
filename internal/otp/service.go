package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/backend/internal/apperr"
	"github.com/cornerstone-fellowship/backend/internal/metrics"
	"github.com/cornerstone-fellowship/backend/internal/models"
)

// CodeSender delivers a one-time code to the recipient.
type CodeSender interface {
	SendCode(ctx context.Context, email, code string) error
}

// Service is the OTP ledger: it issues 6-digit codes and verifies them
// exactly once.
type Service struct {
	store   Store
	sender  CodeSender
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, sender CodeSender, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, sender: sender, ttl: ttl, logger: logger, metrics: m}
}

// Issue generates a fresh code for the email, replacing any unconsumed one,
// and delivers it. A delivery failure fails the issuance and removes the
// stored code so no code the user never saw is left claimable.
func (s *Service) Issue(ctx context.Context, email string) error {
	if email == "" {
		return apperr.NewMissingFieldError("email")
	}
	email = models.NormalizeEmail(email)

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	if err := s.store.Put(ctx, email, code, s.ttl); err != nil {
		return apperr.NewStoreUnavailableError("failed to store code", err)
	}

	if err := s.sender.SendCode(ctx, email, code); err != nil {
		if _, claimErr := s.store.Claim(ctx, email, code); claimErr != nil {
			s.logger.Warn("failed to discard undelivered code", zap.String("email", email), zap.Error(claimErr))
		}
		s.metrics.CountOTPIssued("delivery_failed")
		return apperr.NewDeliveryFailedError("failed to send OTP", err)
	}

	s.metrics.CountOTPIssued("sent")
	s.logger.Info("otp issued", zap.String("email", email))
	return nil
}

// Verify consumes the stored code when it matches. A mismatch leaves the
// entry untouched; a match can succeed at most once per issuance.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	if email == "" {
		return apperr.NewMissingFieldError("email")
	}
	if code == "" {
		return apperr.NewMissingFieldError("otp")
	}

	ok, err := s.store.Claim(ctx, models.NormalizeEmail(email), code)
	if err != nil {
		return apperr.NewStoreUnavailableError("failed to verify code", err)
	}
	if !ok {
		s.metrics.CountOTPVerified("invalid")
		return apperr.NewInvalidCodeError("invalid OTP")
	}
	s.metrics.CountOTPVerified("ok")
	return nil
}

// generateCode draws uniformly from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
