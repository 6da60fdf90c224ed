// Package otp issues and verifies one-time login codes keyed by email.
package otp

import (
	"context"
	"sync"
	"time"
)

// Store keeps at most one live code per normalized email. Claim is the
// single-use primitive: it deletes the entry and reports true only when the
// supplied code matches, atomically with respect to concurrent claims and
// re-issues for the same email. A mismatch leaves the entry in place so the
// user may retry.
type Store interface {
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	Claim(ctx context.Context, email, code string) (bool, error)
}

type memoryEntry struct {
	code      string
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is the process-local Store. One mutex is enough: entries are
// tiny and operations never block on anything external.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memoryEntry{code: code}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[email] = e
	return nil
}

func (s *MemoryStore) Claim(_ context.Context, email, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[email]
	if !ok {
		return false, nil
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.entries, email)
		return false, nil
	}
	if e.code != code {
		return false, nil
	}
	delete(s.entries, email)
	return true, nil
}
