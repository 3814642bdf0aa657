package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

// TicketHistoryRepository stores the append-only audit trail.
type TicketHistoryRepository interface {
	Create(ctx context.Context, entry *domain.TicketStatusHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketStatusHistory, error)
}

type ticketHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTicketHistoryRepository builds the repository.
func NewTicketHistoryRepository(pool *pgxpool.Pool) TicketHistoryRepository {
	return &ticketHistoryRepository{pool: pool}
}

func (r *ticketHistoryRepository) Create(ctx context.Context, entry *domain.TicketStatusHistory) error {
	const query = `
        INSERT INTO ticket_status_history (ticket_id, old_status, new_status, changed_by, reason)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return querierFrom(ctx, r.pool).QueryRow(ctx, query,
		entry.TicketID,
		entry.OldStatus,
		entry.NewStatus,
		entry.ChangedBy,
		entry.Reason,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketStatusHistory, error) {
	const query = `
        SELECT id, ticket_id, old_status, new_status, changed_by, reason, created_at
        FROM ticket_status_history WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketStatusHistory
	for rows.Next() {
		var (
			entry     domain.TicketStatusHistory
			oldStatus *string
			newStatus *string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&oldStatus,
			&newStatus,
			&entry.ChangedBy,
			&entry.Reason,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if oldStatus != nil {
			status, err := domain.ParseTicketStatus(*oldStatus)
			if err != nil {
				return nil, err
			}
			entry.OldStatus = &status
		}
		if newStatus != nil {
			status, err := domain.ParseTicketStatus(*newStatus)
			if err != nil {
				return nil, err
			}
			entry.NewStatus = &status
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
