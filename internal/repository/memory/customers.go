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

// CustomerStore is the in-memory CustomerRepository.
type CustomerStore struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Customer
	byPhone map[string]string
}

// NewCustomerStore builds an empty store.
func NewCustomerStore() repository.CustomerRepository {
	return &CustomerStore{
		byID:    make(map[string]*domain.Customer),
		byPhone: make(map[string]string),
	}
}

func (s *CustomerStore) Create(ctx context.Context, customer *domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	customer.ID = uuid.NewString()
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	clone := *customer
	s.byID[customer.ID] = &clone
	s.byPhone[customer.PhoneNumber] = customer.ID
	return nil
}

func (s *CustomerStore) Update(ctx context.Context, customer *domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[customer.ID]; !ok {
		return pgx.ErrNoRows
	}
	customer.UpdatedAt = time.Now()
	clone := *customer
	s.byID[customer.ID] = &clone
	return nil
}

func (s *CustomerStore) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customer, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *customer
	return &clone, nil
}

func (s *CustomerStore) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPhone[phone]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *s.byID[id]
	return &clone, nil
}
