package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/repository"
)

// StaffStore is the in-memory StaffRepository.
type StaffStore struct {
	mu         sync.RWMutex
	byID       map[string]*domain.StaffUser
	byUsername map[string]string
}

// NewStaffStore builds an empty store.
func NewStaffStore() repository.StaffRepository {
	return &StaffStore{
		byID:       make(map[string]*domain.StaffUser),
		byUsername: make(map[string]string),
	}
}

func (s *StaffStore) Create(ctx context.Context, staff *domain.StaffUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staff.ID = uuid.NewString()
	now := time.Now()
	staff.CreatedAt = now
	staff.UpdatedAt = now
	clone := *staff
	s.byID[staff.ID] = &clone
	s.byUsername[staff.Username] = staff.ID
	return nil
}

func (s *StaffStore) GetByID(ctx context.Context, id string) (*domain.StaffUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	staff, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *staff
	return &clone, nil
}

func (s *StaffStore) GetByUsername(ctx context.Context, username string) (*domain.StaffUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *s.byID[id]
	return &clone, nil
}
