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

// NotificationStore is the in-memory NotificationRepository.
type NotificationStore struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Notification
	order []string
}

// NewNotificationStore builds an empty store.
func NewNotificationStore() repository.NotificationRepository {
	return &NotificationStore{byID: make(map[string]*domain.Notification)}
}

func (s *NotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notification.ID = uuid.NewString()
	notification.CreatedAt = time.Now()
	clone := *notification
	s.byID[notification.ID] = &clone
	s.order = append(s.order, notification.ID)
	return nil
}

func (s *NotificationStore) Update(ctx context.Context, notification *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[notification.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *notification
	s.byID[notification.ID] = &clone
	return nil
}

func (s *NotificationStore) LatestForTicket(ctx context.Context, ticketID string, kind domain.NotificationKind) (*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		notification := s.byID[s.order[i]]
		if notification.Kind != kind || notification.TicketID == nil || *notification.TicketID != ticketID {
			continue
		}
		clone := *notification
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *NotificationStore) ListFailed(ctx context.Context, maxAttempts, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Notification
	for _, id := range s.order {
		notification := s.byID[id]
		if notification.Status == domain.NotificationFailed && notification.Attempts < maxAttempts {
			result = append(result, *notification)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}
