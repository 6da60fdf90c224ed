package otp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornerstone-fellowship/backend/internal/apperr"
)

type mockSender struct {
	sendCode func(ctx context.Context, email, code string) error
}

func (m *mockSender) SendCode(ctx context.Context, email, code string) error {
	return m.sendCode(ctx, email, code)
}

func TestServiceIssueAndVerifyScenario(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var sentCode string
	sender := &mockSender{sendCode: func(_ context.Context, _, code string) error {
		sentCode = code
		return nil
	}}
	svc := NewService(store, sender, 0, nil, nil)

	require.NoError(t, svc.Issue(ctx, "a@x.com"))
	require.Len(t, sentCode, 6)

	wrong := "654321"
	if wrong == sentCode {
		wrong = "123456"
	}
	err := svc.Verify(ctx, "a@x.com", wrong)
	assert.Equal(t, apperr.REASON_INVALID_CODE, apperr.ReasonOf(err))

	require.NoError(t, svc.Verify(ctx, "a@x.com", sentCode))

	err = svc.Verify(ctx, "a@x.com", sentCode)
	assert.Equal(t, apperr.REASON_INVALID_CODE, apperr.ReasonOf(err), "a consumed code must not verify again")
}

func TestServiceIssueMissingEmail(t *testing.T) {
	svc := NewService(NewMemoryStore(), &mockSender{}, 0, nil, nil)
	err := svc.Issue(context.Background(), "")
	assert.Equal(t, apperr.REASON_MISSING_FIELD, apperr.ReasonOf(err))
}

func TestServiceVerifyMissingFields(t *testing.T) {
	svc := NewService(NewMemoryStore(), &mockSender{}, 0, nil, nil)

	err := svc.Verify(context.Background(), "", "123456")
	assert.Equal(t, apperr.REASON_MISSING_FIELD, apperr.ReasonOf(err))

	err = svc.Verify(context.Background(), "a@x.com", "")
	assert.Equal(t, apperr.REASON_MISSING_FIELD, apperr.ReasonOf(err))
}

func TestServiceIssueDeliveryFailureDiscardsCode(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var sentCode string
	sender := &mockSender{sendCode: func(_ context.Context, _, code string) error {
		sentCode = code
		return errors.New("smtp down")
	}}
	svc := NewService(store, sender, 0, nil, nil)

	err := svc.Issue(ctx, "a@x.com")
	assert.Equal(t, apperr.REASON_DELIVERY_FAILED, apperr.ReasonOf(err))

	ok, claimErr := store.Claim(ctx, "a@x.com", sentCode)
	require.NoError(t, claimErr)
	assert.False(t, ok, "a code the user never saw must not stay claimable")
}

func TestServiceNormalizesEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var sentCode string
	sender := &mockSender{sendCode: func(_ context.Context, _, code string) error {
		sentCode = code
		return nil
	}}
	svc := NewService(store, sender, 0, nil, nil)

	require.NoError(t, svc.Issue(ctx, "  A@X.Com "))
	assert.NoError(t, svc.Verify(ctx, "a@x.com", sentCode))
}
