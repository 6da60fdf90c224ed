package registrations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornerstone-fellowship/backend/internal/apperr"
	"github.com/cornerstone-fellowship/backend/internal/models"
	"github.com/cornerstone-fellowship/backend/internal/store"
)

func newTestService(rows store.RowStore) *Service {
	return NewService(rows, store.NewKeyedMutex(), nil, nil)
}

func TestUpsertCreateDefaults(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	now := time.Date(2026, 5, 1, 10, 30, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	reg, created, err := svc.Upsert(context.Background(), Payload{
		Email:     "New@X.Com",
		Attendees: []models.Attendee{{FirstName: "Grace", LastName: "Park"}},
		Mobile:    "555-0101",
		TShirts:   []models.TShirtOrder{{Size: "M", Quantity: 2}},
		TotalFee:  "40",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "new@x.com", reg.Email)
	assert.Equal(t, models.PaidNo, reg.Paid)
	assert.Equal(t, "2026-05-01", reg.RegistrationDate)
	assert.Empty(t, reg.Suite)
	assert.False(t, reg.CheckedIn())
	assert.Equal(t, now, reg.LastUpdatedAt)
}

func TestUpsertUpdatePreservesServerOwnedFields(t *testing.T) {
	rows := store.NewMemoryStore()
	svc := newTestService(rows)
	ctx := context.Background()

	firstNow := time.Date(2026, 5, 1, 10, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return firstNow }
	_, created, err := svc.Upsert(ctx, Payload{Email: "a@x.com", Mobile: "555-0101"})
	require.NoError(t, err)
	require.True(t, created)

	// Mark paid and assign a suite out of band, the way the privileged paths do.
	reg, err := rows.Get(ctx, "a@x.com")
	require.NoError(t, err)
	reg.Paid = models.PaidYes
	reg.Suite = "B-12"
	require.NoError(t, rows.Save(ctx, reg))

	laterNow := time.Date(2026, 6, 2, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return laterNow }
	updated, created, err := svc.Upsert(ctx, Payload{Email: "A@x.com ", Mobile: "555-9999"})
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, "555-9999", updated.Mobile, "client fields are replaced")
	assert.Equal(t, models.PaidYes, updated.Paid, "payment flag is never reset by the upsert")
	assert.Equal(t, "2026-05-01", updated.RegistrationDate, "registration date is write-once")
	assert.Equal(t, "B-12", updated.Suite)
	assert.Equal(t, laterNow, updated.LastUpdatedAt)
}

func TestUpsertUpdatePreservesCheckinState(t *testing.T) {
	rows := store.NewMemoryStore()
	svc := newTestService(rows)
	ctx := context.Background()

	_, _, err := svc.Upsert(ctx, Payload{Email: "a@x.com"})
	require.NoError(t, err)

	checkinAt := time.Date(2026, 6, 10, 18, 0, 0, 0, time.Local)
	reg, err := rows.Get(ctx, "a@x.com")
	require.NoError(t, err)
	reg.CheckinStaff = "Sam"
	reg.CheckinAt = &checkinAt
	require.NoError(t, rows.Save(ctx, reg))

	updated, _, err := svc.Upsert(ctx, Payload{Email: "a@x.com", Mobile: "555-0102"})
	require.NoError(t, err)
	assert.Equal(t, "Sam", updated.CheckinStaff)
	require.NotNil(t, updated.CheckinAt)
	assert.Equal(t, checkinAt, *updated.CheckinAt)
}

func TestUpsertMissingEmail(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())

	_, _, err := svc.Upsert(context.Background(), Payload{Email: "   "})
	assert.Equal(t, apperr.REASON_MISSING_FIELD, apperr.ReasonOf(err))
}

// failingStore wraps a RowStore and fails selected operations.
type failingStore struct {
	store.RowStore
	failGet  bool
	failSave bool
}

func (f *failingStore) Get(ctx context.Context, email string) (*models.Registration, error) {
	if f.failGet {
		return nil, errors.New("sheet unreachable")
	}
	return f.RowStore.Get(ctx, email)
}

func (f *failingStore) Save(ctx context.Context, reg *models.Registration) error {
	if f.failSave {
		return errors.New("sheet unreachable")
	}
	return f.RowStore.Save(ctx, reg)
}

func TestUpsertStoreFailureLeavesRecordUnchanged(t *testing.T) {
	rows := store.NewMemoryStore()
	svc := newTestService(rows)
	ctx := context.Background()

	_, _, err := svc.Upsert(ctx, Payload{Email: "a@x.com", Mobile: "555-0101"})
	require.NoError(t, err)

	failing := &failingStore{RowStore: rows, failSave: true}
	svc = newTestService(failing)
	_, _, err = svc.Upsert(ctx, Payload{Email: "a@x.com", Mobile: "555-9999"})
	assert.Equal(t, apperr.REASON_STORE_UNAVAILABLE, apperr.ReasonOf(err))

	reg, err := rows.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "555-0101", reg.Mobile, "a failed write must not mutate the record")
}

func TestUpsertReadFailure(t *testing.T) {
	failing := &failingStore{RowStore: store.NewMemoryStore(), failGet: true}
	svc := newTestService(failing)

	_, _, err := svc.Upsert(context.Background(), Payload{Email: "a@x.com"})
	assert.Equal(t, apperr.REASON_STORE_UNAVAILABLE, apperr.ReasonOf(err))
}
