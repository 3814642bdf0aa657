package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

// NotificationRepository stores outbound delivery attempts so failures stay
// observable instead of being dropped.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	Update(ctx context.Context, notification *domain.Notification) error
	ListFailed(ctx context.Context, maxAttempts, limit int) ([]domain.Notification, error)
	// LatestForTicket returns the most recent notification of the given
	// kind, or pgx.ErrNoRows when none was ever recorded.
	LatestForTicket(ctx context.Context, ticketID string, kind domain.NotificationKind) (*domain.Notification, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates the repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (customer_id, ticket_id, kind, content, status, attempts, last_error, sent_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return querierFrom(ctx, r.pool).QueryRow(ctx, query,
		notification.CustomerID,
		notification.TicketID,
		notification.Kind,
		notification.Content,
		notification.Status,
		notification.Attempts,
		notification.LastError,
		notification.SentAt,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) Update(ctx context.Context, notification *domain.Notification) error {
	const query = `
        UPDATE notifications SET status=$1, attempts=$2, last_error=$3, sent_at=$4
        WHERE id=$5`
	cmd, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		notification.Status,
		notification.Attempts,
		notification.LastError,
		notification.SentAt,
		notification.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) LatestForTicket(ctx context.Context, ticketID string, kind domain.NotificationKind) (*domain.Notification, error) {
	const query = `
        SELECT id, customer_id, ticket_id, kind, content, status, attempts, last_error, sent_at, created_at
        FROM notifications WHERE ticket_id=$1 AND kind=$2 ORDER BY created_at DESC LIMIT 1`
	var notification domain.Notification
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, ticketID, kind).Scan(
		&notification.ID,
		&notification.CustomerID,
		&notification.TicketID,
		&notification.Kind,
		&notification.Content,
		&notification.Status,
		&notification.Attempts,
		&notification.LastError,
		&notification.SentAt,
		&notification.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) ListFailed(ctx context.Context, maxAttempts, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, customer_id, ticket_id, kind, content, status, attempts, last_error, sent_at, created_at
        FROM notifications WHERE status=$1 AND attempts < $2 ORDER BY created_at ASC LIMIT $3`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, domain.NotificationFailed, maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var notification domain.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.CustomerID,
			&notification.TicketID,
			&notification.Kind,
			&notification.Content,
			&notification.Status,
			&notification.Attempts,
			&notification.LastError,
			&notification.SentAt,
			&notification.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, notification)
	}
	return result, rows.Err()
}
