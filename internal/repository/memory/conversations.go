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

// ConversationStateStore is the in-memory ConversationStateRepository.
type ConversationStateStore struct {
	mu         sync.RWMutex
	byCustomer map[string]*domain.ConversationState
}

// NewConversationStateStore builds an empty store.
func NewConversationStateStore() repository.ConversationStateRepository {
	return &ConversationStateStore{byCustomer: make(map[string]*domain.ConversationState)}
}

func (s *ConversationStateStore) Create(ctx context.Context, state *domain.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state.ID = uuid.NewString()
	state.UpdatedAt = time.Now()
	clone := cloneState(state)
	s.byCustomer[state.CustomerID] = clone
	return nil
}

func (s *ConversationStateStore) Update(ctx context.Context, state *domain.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byCustomer[state.CustomerID]
	if !ok || existing.ID != state.ID {
		return pgx.ErrNoRows
	}
	state.UpdatedAt = time.Now()
	s.byCustomer[state.CustomerID] = cloneState(state)
	return nil
}

func (s *ConversationStateStore) GetByCustomer(ctx context.Context, customerID string) (*domain.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.byCustomer[customerID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneState(state), nil
}

func cloneState(state *domain.ConversationState) *domain.ConversationState {
	clone := *state
	clone.Collected.Photos = append([]string(nil), state.Collected.Photos...)
	return &clone
}

// ConversationMessageStore is the in-memory ConversationMessageRepository.
type ConversationMessageStore struct {
	mu          sync.RWMutex
	messages    []domain.ConversationMessage
	providerIDs map[string]bool
}

// NewConversationMessageStore builds an empty store.
func NewConversationMessageStore() repository.ConversationMessageRepository {
	return &ConversationMessageStore{providerIDs: make(map[string]bool)}
}

func (s *ConversationMessageStore) Create(ctx context.Context, message *domain.ConversationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message.ID = uuid.NewString()
	message.CreatedAt = time.Now()
	s.messages = append(s.messages, *message)
	if message.ProviderID != nil {
		s.providerIDs[*message.ProviderID] = true
	}
	return nil
}

func (s *ConversationMessageStore) ExistsByProviderID(ctx context.Context, providerID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.providerIDs[providerID], nil
}

func (s *ConversationMessageStore) ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.ConversationMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Newest first, like the SQL store.
	var result []domain.ConversationMessage
	for i := len(s.messages) - 1; i >= 0 && len(result) < limit; i-- {
		if s.messages[i].CustomerID == customerID {
			result = append(result, s.messages[i])
		}
	}
	return result, nil
}
