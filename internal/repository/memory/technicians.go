package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/repository"
)

// TechnicianStore is the in-memory TechnicianRepository.
type TechnicianStore struct {
	mu           sync.RWMutex
	byID         map[string]*domain.Technician
	byEmployeeID map[string]string
}

// NewTechnicianStore builds an empty store.
func NewTechnicianStore() repository.TechnicianRepository {
	return &TechnicianStore{
		byID:         make(map[string]*domain.Technician),
		byEmployeeID: make(map[string]string),
	}
}

func (s *TechnicianStore) Create(ctx context.Context, technician *domain.Technician) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmployeeID[technician.EmployeeID]; ok {
		return repository.ErrDuplicate
	}
	technician.ID = uuid.NewString()
	technician.CreatedAt = time.Now()
	clone := *technician
	s.byID[technician.ID] = &clone
	s.byEmployeeID[technician.EmployeeID] = technician.ID
	return nil
}

func (s *TechnicianStore) Update(ctx context.Context, technician *domain.Technician) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[technician.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	clone := *technician
	// The counter only moves through the workload methods.
	clone.CurrentLoad = existing.CurrentLoad
	s.byID[technician.ID] = &clone
	return nil
}

func (s *TechnicianStore) ReserveCapacity(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	technician, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	if technician.CurrentLoad >= technician.MaxLoad {
		return false, nil
	}
	technician.CurrentLoad++
	return true, nil
}

func (s *TechnicianStore) IncrementWorkload(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	technician, ok := s.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	technician.CurrentLoad++
	return nil
}

func (s *TechnicianStore) DecrementWorkload(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	technician, ok := s.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if technician.CurrentLoad > 0 {
		technician.CurrentLoad--
	}
	return nil
}

func (s *TechnicianStore) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	technician, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *technician
	return &clone, nil
}

func (s *TechnicianStore) List(ctx context.Context, activeOnly bool) ([]domain.Technician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Technician
	for _, technician := range s.byID {
		if activeOnly && !technician.Active {
			continue
		}
		result = append(result, *technician)
	}
	// Same ordering as the SQL store: workload, then id for stable ties.
	sort.Slice(result, func(i, j int) bool {
		if result[i].CurrentLoad != result[j].CurrentLoad {
			return result[i].CurrentLoad < result[j].CurrentLoad
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
