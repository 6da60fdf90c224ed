package otp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreClaimIsSingleUse(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a@x.com", "123456", 0))

	ok, err := s.Claim(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Claim(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok, "second claim of the same code must fail")
}

func TestMemoryStoreMismatchLeavesEntry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a@x.com", "123456", 0))

	ok, err := s.Claim(ctx, "a@x.com", "654321")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Claim(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.True(t, ok, "entry must survive a mismatched claim")
}

func TestMemoryStoreReissueReplacesCode(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a@x.com", "111111", 0))
	require.NoError(t, s.Put(ctx, "a@x.com", "222222", 0))

	ok, err := s.Claim(ctx, "a@x.com", "111111")
	require.NoError(t, err)
	assert.False(t, ok, "replaced code must not be claimable")

	ok, err = s.Claim(ctx, "a@x.com", "222222")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	current := time.Now()
	s.now = func() time.Time { return current }

	require.NoError(t, s.Put(ctx, "a@x.com", "123456", 10*time.Minute))

	current = current.Add(11 * time.Minute)
	ok, err := s.Claim(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok, "expired code must not be claimable")
}

func TestMemoryStoreZeroTTLNeverExpires(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	current := time.Now()
	s.now = func() time.Time { return current }

	require.NoError(t, s.Put(ctx, "a@x.com", "123456", 0))

	current = current.Add(365 * 24 * time.Hour)
	ok, err := s.Claim(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreConcurrentClaimsOneWinner(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a@x.com", "123456", 0))

	const n = 32
	var wg sync.WaitGroup
	wins := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Claim(ctx, "a@x.com", "123456")
			assert.NoError(t, err)
			if ok {
				wins <- true
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1, "exactly one concurrent claim may succeed")
}
