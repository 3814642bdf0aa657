package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

// ConversationStateRepository persists the single live session state per
// customer.
type ConversationStateRepository interface {
	Create(ctx context.Context, state *domain.ConversationState) error
	Update(ctx context.Context, state *domain.ConversationState) error
	GetByCustomer(ctx context.Context, customerID string) (*domain.ConversationState, error)
}

// ConversationMessageRepository persists chat history rows.
// ListByCustomer returns the newest rows first.
type ConversationMessageRepository interface {
	Create(ctx context.Context, message *domain.ConversationMessage) error
	ExistsByProviderID(ctx context.Context, providerID string) (bool, error)
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.ConversationMessage, error)
}

type conversationStateRepository struct {
	pool *pgxpool.Pool
}

// NewConversationStateRepository instantiates the repository.
func NewConversationStateRepository(pool *pgxpool.Pool) ConversationStateRepository {
	return &conversationStateRepository{pool: pool}
}

func (r *conversationStateRepository) Create(ctx context.Context, state *domain.ConversationState) error {
	const query = `
        INSERT INTO conversation_states (customer_id, current_step, current_ticket_id, collected_data, session_start, last_message_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, updated_at`
	return querierFrom(ctx, r.pool).QueryRow(ctx, query,
		state.CustomerID,
		state.CurrentStep,
		state.CurrentTicketID,
		state.Collected.ToMap(),
		state.SessionStart,
		state.LastMessageAt,
	).Scan(&state.ID, &state.UpdatedAt)
}

func (r *conversationStateRepository) Update(ctx context.Context, state *domain.ConversationState) error {
	const query = `
        UPDATE conversation_states SET current_step=$1, current_ticket_id=$2, collected_data=$3,
            session_start=$4, last_message_at=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		state.CurrentStep,
		state.CurrentTicketID,
		state.Collected.ToMap(),
		state.SessionStart,
		state.LastMessageAt,
		state.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *conversationStateRepository) GetByCustomer(ctx context.Context, customerID string) (*domain.ConversationState, error) {
	const query = `
        SELECT id, customer_id, current_step, current_ticket_id, collected_data, session_start, last_message_at, updated_at
        FROM conversation_states WHERE customer_id=$1`
	var (
		state     domain.ConversationState
		step      string
		collected map[string]any
	)
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, customerID).Scan(
		&state.ID,
		&state.CustomerID,
		&step,
		&state.CurrentTicketID,
		&collected,
		&state.SessionStart,
		&state.LastMessageAt,
		&state.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := domain.ParseStep(step)
	if err != nil {
		return nil, err
	}
	state.CurrentStep = parsed
	state.Collected = domain.CollectedDataFromMap(collected)
	return &state, nil
}

type conversationMessageRepository struct {
	pool *pgxpool.Pool
}

// NewConversationMessageRepository instantiates the repository.
func NewConversationMessageRepository(pool *pgxpool.Pool) ConversationMessageRepository {
	return &conversationMessageRepository{pool: pool}
}

func (r *conversationMessageRepository) Create(ctx context.Context, message *domain.ConversationMessage) error {
	const query = `
        INSERT INTO conversation_messages (provider_message_id, customer_id, ticket_id, direction, message_type, content, media_ref, intent)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return querierFrom(ctx, r.pool).QueryRow(ctx, query,
		message.ProviderID,
		message.CustomerID,
		message.TicketID,
		message.Direction,
		message.MessageType,
		message.Content,
		message.MediaRef,
		message.Intent,
	).Scan(&message.ID, &message.CreatedAt)
}

func (r *conversationMessageRepository) ExistsByProviderID(ctx context.Context, providerID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM conversation_messages WHERE provider_message_id=$1)`
	var exists bool
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, providerID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *conversationMessageRepository) ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.ConversationMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, provider_message_id, customer_id, ticket_id, direction, message_type, content, media_ref, intent, created_at
        FROM conversation_messages WHERE customer_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func scanMessages(rows pgx.Rows) ([]domain.ConversationMessage, error) {
	var result []domain.ConversationMessage
	for rows.Next() {
		var message domain.ConversationMessage
		if err := rows.Scan(
			&message.ID,
			&message.ProviderID,
			&message.CustomerID,
			&message.TicketID,
			&message.Direction,
			&message.MessageType,
			&message.Content,
			&message.MediaRef,
			&message.Intent,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, message)
	}
	return result, rows.Err()
}
