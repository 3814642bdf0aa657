package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/repository"
)

// TicketHistoryStore is the in-memory TicketHistoryRepository.
type TicketHistoryStore struct {
	mu      sync.RWMutex
	entries []domain.TicketStatusHistory
}

// NewTicketHistoryStore builds an empty store.
func NewTicketHistoryStore() repository.TicketHistoryRepository {
	return &TicketHistoryStore{}
}

func (s *TicketHistoryStore) Create(ctx context.Context, entry *domain.TicketStatusHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	s.entries = append(s.entries, cloneHistory(entry))
	return nil
}

func (s *TicketHistoryStore) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketStatusHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.TicketStatusHistory
	for i := range s.entries {
		if s.entries[i].TicketID == ticketID {
			result = append(result, cloneHistory(&s.entries[i]))
		}
	}
	return result, nil
}

func cloneHistory(entry *domain.TicketStatusHistory) domain.TicketStatusHistory {
	clone := *entry
	if entry.OldStatus != nil {
		status := *entry.OldStatus
		clone.OldStatus = &status
	}
	if entry.NewStatus != nil {
		status := *entry.NewStatus
		clone.NewStatus = &status
	}
	return clone
}
