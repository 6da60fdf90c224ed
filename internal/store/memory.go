package store

import (
	"context"
	"sync"

	"github.com/cornerstone-fellowship/backend/internal/models"
)

// MemoryStore keeps registrations in process memory. It backs tests and
// local development; it intentionally favors clarity over performance.
type MemoryStore struct {
	mu       sync.RWMutex
	rows     map[string]*models.Registration
	failures []models.DeliveryFailure
	open     bool
	template string
}

var _ RowStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[string]*models.Registration),
		open: true,
	}
}

func (s *MemoryStore) Get(_ context.Context, email string) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.rows[models.NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRegistration(reg), nil
}

func (s *MemoryStore) Save(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[models.NormalizeEmail(reg.Email)] = cloneRegistration(reg)
	return nil
}

func (s *MemoryStore) SystemOpen(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open, nil
}

func (s *MemoryStore) MessageTemplate(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.template, nil
}

func (s *MemoryStore) LogDeliveryFailure(_ context.Context, f models.DeliveryFailure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, f)
	return nil
}

// SetSystemOpen flips the control flag (test hook).
func (s *MemoryStore) SetSystemOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = open
}

// SetMessageTemplate sets the template override (test hook).
func (s *MemoryStore) SetMessageTemplate(t string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.template = t
}

// DeliveryFailures returns logged failures (test hook).
func (s *MemoryStore) DeliveryFailures() []models.DeliveryFailure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DeliveryFailure, len(s.failures))
	copy(out, s.failures)
	return out
}

func cloneRegistration(reg *models.Registration) *models.Registration {
	out := *reg
	out.Attendees = append([]models.Attendee(nil), reg.Attendees...)
	out.TShirts = append([]models.TShirtOrder(nil), reg.TShirts...)
	if reg.CheckinAt != nil {
		t := *reg.CheckinAt
		out.CheckinAt = &t
	}
	return &out
}
