package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

// TicketStats aggregates counts for the operations dashboard.
type TicketStats struct {
	Total            int
	Pending          int
	Approved         int
	Rejected         int
	Completed        int
	NewThisWeek      int
	PendingFinance   int
	PendingInventory int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Ticket, error)
	ListByStatus(ctx context.Context, statuses []domain.TicketStatus) ([]domain.Ticket, error)
	ListByTechnician(ctx context.Context, technicianID string, statuses []domain.TicketStatus) ([]domain.Ticket, error)
	ListInReviewBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error)
	Stats(ctx context.Context, since time.Time) (TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, customer_id, product_name, product_sku, purchase_date,
               quantity, issue_description, issue_category, photos, status, priority,
               assigned_technician_id, technical_decision, technical_notes, technical_reviewed_at,
               compensation_type, sales_order_number, replacement_tracking,
               created_at, updated_at, completed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, customer_id, product_name, product_sku, purchase_date,
            quantity, issue_description, issue_category, photos, status, priority, technical_decision)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query,
		ticket.Number,
		ticket.CustomerID,
		ticket.ProductName,
		ticket.ProductSKU,
		ticket.PurchaseDate,
		ticket.Quantity,
		ticket.IssueDescription,
		ticket.IssueCategory,
		ticket.Photos,
		ticket.Status,
		ticket.Priority,
		ticket.TechnicalDecision,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		return MapUniqueViolation(err)
	}
	return nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET product_name=$1, product_sku=$2, purchase_date=$3, quantity=$4,
            issue_description=$5, issue_category=$6, photos=$7, status=$8, priority=$9,
            assigned_technician_id=$10, technical_decision=$11, technical_notes=$12,
            technical_reviewed_at=$13, compensation_type=$14, sales_order_number=$15,
            replacement_tracking=$16, completed_at=$17, updated_at=NOW()
        WHERE id=$18`
	cmd, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		ticket.ProductName,
		ticket.ProductSKU,
		ticket.PurchaseDate,
		ticket.Quantity,
		ticket.IssueDescription,
		ticket.IssueCategory,
		ticket.Photos,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedTechnicianID,
		ticket.TechnicalDecision,
		ticket.TechnicalNotes,
		ticket.TechnicalReviewedAt,
		ticket.CompensationType,
		ticket.SalesOrderNumber,
		ticket.ReplacementTrack,
		ticket.CompletedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_number=$1`
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE customer_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByStatus(ctx context.Context, statuses []domain.TicketStatus) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE status = ANY($1) ORDER BY created_at ASC`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, statusStrings(statuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByTechnician(ctx context.Context, technicianID string, statuses []domain.TicketStatus) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets
        WHERE assigned_technician_id=$1 AND status = ANY($2) ORDER BY created_at ASC`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, technicianID, statusStrings(statuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListInReviewBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets
        WHERE status = ANY($1) AND created_at < $2 ORDER BY created_at ASC`
	reviewStatuses := statusStrings([]domain.TicketStatus{
		domain.TicketStatusPendingReview,
		domain.TicketStatusUnderReview,
	})
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, reviewStatuses, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Stats(ctx context.Context, since time.Time) (TicketStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status='pending_review'),
               COUNT(*) FILTER (WHERE technical_decision='approved'),
               COUNT(*) FILTER (WHERE status='rejected'),
               COUNT(*) FILTER (WHERE status='completed'),
               COUNT(*) FILTER (WHERE created_at >= $1),
               COUNT(*) FILTER (WHERE status='pending_finance'),
               COUNT(*) FILTER (WHERE status='pending_inventory')
        FROM tickets`
	var stats TicketStats
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, since).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.Approved,
		&stats.Rejected,
		&stats.Completed,
		&stats.NewThisWeek,
		&stats.PendingFinance,
		&stats.PendingInventory,
	); err != nil {
		return TicketStats{}, err
	}
	return stats, nil
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}
	return scanTicket(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(rows pgx.Rows) (*domain.Ticket, error) {
	var (
		ticket           domain.Ticket
		status           string
		category         *string
		compensationType *string
	)
	if err := rows.Scan(
		&ticket.ID,
		&ticket.Number,
		&ticket.CustomerID,
		&ticket.ProductName,
		&ticket.ProductSKU,
		&ticket.PurchaseDate,
		&ticket.Quantity,
		&ticket.IssueDescription,
		&category,
		&ticket.Photos,
		&status,
		&ticket.Priority,
		&ticket.AssignedTechnicianID,
		&ticket.TechnicalDecision,
		&ticket.TechnicalNotes,
		&ticket.TechnicalReviewedAt,
		&compensationType,
		&ticket.SalesOrderNumber,
		&ticket.ReplacementTrack,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.CompletedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := domain.ParseTicketStatus(status)
	if err != nil {
		return nil, err
	}
	ticket.Status = parsed
	if category != nil {
		ticket.IssueCategory = domain.IssueCategory(*category)
	}
	if compensationType != nil {
		value := domain.CompensationType(*compensationType)
		ticket.CompensationType = &value
	}
	return &ticket, nil
}

func statusStrings(statuses []domain.TicketStatus) []string {
	out := make([]string, len(statuses))
	for i, status := range statuses {
		out[i] = string(status)
	}
	return out
}
