package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornerstone-fellowship/backend/internal/models"
)

func TestMemoryStoreGetSave(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "a@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	reg := &models.Registration{Email: "A@X.Com", Paid: models.PaidNo, Mobile: "555-0101"}
	require.NoError(t, s.Save(ctx, reg))

	got, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "555-0101", got.Mobile)

	// Lookup is case-insensitive on the stored key.
	got, err = s.Get(ctx, "  A@x.COM ")
	require.NoError(t, err)
	assert.Equal(t, "A@X.Com", got.Email)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &models.Registration{
		Email:     "a@x.com",
		Attendees: []models.Attendee{{FirstName: "Grace"}},
	}))

	got, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	got.Attendees[0].FirstName = "Mallory"
	got.Mobile = "555-6666"

	fresh, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Grace", fresh.Attendees[0].FirstName, "callers must not share backing slices")
	assert.Empty(t, fresh.Mobile)
}

func TestMemoryStoreControlAndTemplate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	open, err := s.SystemOpen(ctx)
	require.NoError(t, err)
	assert.True(t, open)

	s.SetSystemOpen(false)
	open, err = s.SystemOpen(ctx)
	require.NoError(t, err)
	assert.False(t, open)

	s.SetMessageTemplate("Welcome!")
	tmpl, err := s.MessageTemplate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Welcome!", tmpl)
}

func TestMemoryStoreDeliveryFailures(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	f := models.DeliveryFailure{Email: "a@x.com", FailedAt: time.Now(), ErrorMessage: "smtp down"}
	require.NoError(t, s.LogDeliveryFailure(ctx, f))

	failures := s.DeliveryFailures()
	require.Len(t, failures, 1)
	assert.Equal(t, "a@x.com", failures[0].Email)
}

func TestKeyedMutexSerializesSameKeyOnly(t *testing.T) {
	locks := NewKeyedMutex()

	// Different keys must not block each other.
	locks.Lock("a@x.com")
	done := make(chan struct{})
	go func() {
		locks.Lock("b@x.com")
		locks.Unlock("b@x.com")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
	locks.Unlock("a@x.com")

	// Same key serializes: counter increments must not interleave.
	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock("a@x.com")
			defer locks.Unlock("a@x.com")
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}
