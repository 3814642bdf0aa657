package dto

import (
	"time"

	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/repository"
)

// DecisionRequest records a technical review verdict.
type DecisionRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

// AssignRequest hands a ticket to a technician.
type AssignRequest struct {
	TechnicianID string `json:"technician_id"`
}

// FinanceApprovalRequest records the refund sales order.
type FinanceApprovalRequest struct {
	SalesOrderNumber string `json:"sales_order_number"`
}

// InventoryRequest records the replacement tracking reference.
type InventoryRequest struct {
	Tracking string `json:"tracking"`
}

// CancelRequest terminates a ticket in review.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// TicketResponse is the management API ticket view.
type TicketResponse struct {
	ID                   string                   `json:"id"`
	TicketNumber         string                   `json:"ticket_number"`
	CustomerID           string                   `json:"customer_id"`
	ProductName          string                   `json:"product_name"`
	ProductSKU           *string                  `json:"product_sku,omitempty"`
	PurchaseDate         *time.Time               `json:"purchase_date,omitempty"`
	Quantity             int                      `json:"quantity"`
	IssueDescription     string                   `json:"issue_description"`
	IssueCategory        domain.IssueCategory     `json:"issue_category"`
	Photos               []string                 `json:"photos"`
	Status               domain.TicketStatus      `json:"status"`
	Priority             domain.TicketPriority    `json:"priority"`
	AssignedTechnicianID *string                  `json:"assigned_technician_id,omitempty"`
	TechnicalDecision    domain.TechnicalDecision `json:"technical_decision"`
	TechnicalNotes       *string                  `json:"technical_notes,omitempty"`
	TechnicalReviewedAt  *time.Time               `json:"technical_reviewed_at,omitempty"`
	CompensationType     *domain.CompensationType `json:"compensation_type,omitempty"`
	SalesOrderNumber     *string                  `json:"sales_order_number,omitempty"`
	ReplacementTracking  *string                  `json:"replacement_tracking,omitempty"`
	CreatedAt            time.Time                `json:"created_at"`
	UpdatedAt            time.Time                `json:"updated_at"`
	CompletedAt          *time.Time               `json:"completed_at,omitempty"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                   ticket.ID,
		TicketNumber:         ticket.Number,
		CustomerID:           ticket.CustomerID,
		ProductName:          ticket.ProductName,
		ProductSKU:           ticket.ProductSKU,
		PurchaseDate:         ticket.PurchaseDate,
		Quantity:             ticket.Quantity,
		IssueDescription:     ticket.IssueDescription,
		IssueCategory:        ticket.IssueCategory,
		Photos:               ticket.Photos,
		Status:               ticket.Status,
		Priority:             ticket.Priority,
		AssignedTechnicianID: ticket.AssignedTechnicianID,
		TechnicalDecision:    ticket.TechnicalDecision,
		TechnicalNotes:       ticket.TechnicalNotes,
		TechnicalReviewedAt:  ticket.TechnicalReviewedAt,
		CompensationType:     ticket.CompensationType,
		SalesOrderNumber:     ticket.SalesOrderNumber,
		ReplacementTracking:  ticket.ReplacementTrack,
		CreatedAt:            ticket.CreatedAt,
		UpdatedAt:            ticket.UpdatedAt,
		CompletedAt:          ticket.CompletedAt,
	}
}

// NewTicketResponses maps a slice.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	result := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, NewTicketResponse(&tickets[i]))
	}
	return result
}

// HistoryEntryResponse is one audit trail row.
type HistoryEntryResponse struct {
	ID        string               `json:"id"`
	OldStatus *domain.TicketStatus `json:"old_status,omitempty"`
	NewStatus *domain.TicketStatus `json:"new_status,omitempty"`
	ChangedBy string               `json:"changed_by"`
	Reason    string               `json:"reason,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// NewHistoryResponses maps audit entries.
func NewHistoryResponses(entries []domain.TicketStatusHistory) []HistoryEntryResponse {
	result := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		result = append(result, HistoryEntryResponse{
			ID:        entry.ID,
			OldStatus: entry.OldStatus,
			NewStatus: entry.NewStatus,
			ChangedBy: entry.ChangedBy,
			Reason:    entry.Reason,
			CreatedAt: entry.CreatedAt,
		})
	}
	return result
}

// StatsResponse is the dashboard aggregate.
type StatsResponse struct {
	Total            int `json:"total"`
	Pending          int `json:"pending"`
	Approved         int `json:"approved"`
	Rejected         int `json:"rejected"`
	Completed        int `json:"completed"`
	NewThisWeek      int `json:"new_this_week"`
	PendingFinance   int `json:"pending_finance"`
	PendingInventory int `json:"pending_inventory"`
}

// NewStatsResponse maps repository stats.
func NewStatsResponse(stats repository.TicketStats) StatsResponse {
	return StatsResponse{
		Total:            stats.Total,
		Pending:          stats.Pending,
		Approved:         stats.Approved,
		Rejected:         stats.Rejected,
		Completed:        stats.Completed,
		NewThisWeek:      stats.NewThisWeek,
		PendingFinance:   stats.PendingFinance,
		PendingInventory: stats.PendingInventory,
	}
}
