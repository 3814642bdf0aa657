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

// TicketStore is the in-memory TicketRepository.
type TicketStore struct {
	mu       sync.RWMutex
	byID     map[string]*domain.Ticket
	byNumber map[string]string
	order    []string
}

// NewTicketStore builds an empty store.
func NewTicketStore() repository.TicketRepository {
	return &TicketStore{
		byID:     make(map[string]*domain.Ticket),
		byNumber: make(map[string]string),
	}
}

func (s *TicketStore) Create(ctx context.Context, ticket *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byNumber[ticket.Number]; exists {
		return repository.ErrDuplicate
	}
	ticket.ID = uuid.NewString()
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	clone := cloneTicket(ticket)
	s.byID[ticket.ID] = clone
	s.byNumber[ticket.Number] = ticket.ID
	s.order = append(s.order, ticket.ID)
	return nil
}

func (s *TicketStore) Update(ctx context.Context, ticket *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	s.byID[ticket.ID] = cloneTicket(ticket)
	return nil
}

func (s *TicketStore) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ticket, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneTicket(ticket), nil
}

func (s *TicketStore) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNumber[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneTicket(s.byID[id]), nil
}

func (s *TicketStore) ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 10
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Ticket
	// order is insertion order; walk backwards for newest-first.
	for i := len(s.order) - 1; i >= 0 && len(result) < limit; i-- {
		ticket := s.byID[s.order[i]]
		if ticket.CustomerID == customerID {
			result = append(result, *cloneTicket(ticket))
		}
	}
	return result, nil
}

func (s *TicketStore) ListByStatus(ctx context.Context, statuses []domain.TicketStatus) ([]domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Ticket
	for _, id := range s.order {
		ticket := s.byID[id]
		if statusIn(ticket.Status, statuses) {
			result = append(result, *cloneTicket(ticket))
		}
	}
	sortByCreatedAsc(result)
	return result, nil
}

func (s *TicketStore) ListByTechnician(ctx context.Context, technicianID string, statuses []domain.TicketStatus) ([]domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Ticket
	for _, id := range s.order {
		ticket := s.byID[id]
		if ticket.AssignedTechnicianID != nil && *ticket.AssignedTechnicianID == technicianID &&
			statusIn(ticket.Status, statuses) {
			result = append(result, *cloneTicket(ticket))
		}
	}
	sortByCreatedAsc(result)
	return result, nil
}

func (s *TicketStore) ListInReviewBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Ticket
	for _, id := range s.order {
		ticket := s.byID[id]
		if ticket.InReview() && ticket.CreatedAt.Before(cutoff) {
			result = append(result, *cloneTicket(ticket))
		}
	}
	sortByCreatedAsc(result)
	return result, nil
}

func (s *TicketStore) Stats(ctx context.Context, since time.Time) (repository.TicketStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats repository.TicketStats
	for _, ticket := range s.byID {
		stats.Total++
		if ticket.Status == domain.TicketStatusPendingReview {
			stats.Pending++
		}
		if ticket.TechnicalDecision == domain.DecisionApproved {
			stats.Approved++
		}
		if ticket.Status == domain.TicketStatusRejected {
			stats.Rejected++
		}
		if ticket.Status == domain.TicketStatusCompleted {
			stats.Completed++
		}
		if !ticket.CreatedAt.Before(since) {
			stats.NewThisWeek++
		}
		if ticket.Status == domain.TicketStatusPendingFinance {
			stats.PendingFinance++
		}
		if ticket.Status == domain.TicketStatusPendingInventory {
			stats.PendingInventory++
		}
	}
	return stats, nil
}

func cloneTicket(ticket *domain.Ticket) *domain.Ticket {
	clone := *ticket
	clone.Photos = append([]string(nil), ticket.Photos...)
	return &clone
}

func statusIn(status domain.TicketStatus, statuses []domain.TicketStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func sortByCreatedAsc(tickets []domain.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.Before(tickets[j].CreatedAt)
	})
}
