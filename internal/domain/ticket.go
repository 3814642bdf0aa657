package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for compensation tickets.
type TicketStatus string

const (
	TicketStatusPendingData       TicketStatus = "pending_data"
	TicketStatusPendingReview     TicketStatus = "pending_review"
	TicketStatusUnderReview       TicketStatus = "under_review"
	TicketStatusApproved          TicketStatus = "approved"
	TicketStatusRejected          TicketStatus = "rejected"
	TicketStatusPendingFinance    TicketStatus = "pending_finance"
	TicketStatusFinanceApproved   TicketStatus = "finance_approved"
	TicketStatusPendingInventory  TicketStatus = "pending_inventory"
	TicketStatusInventoryPrepared TicketStatus = "inventory_prepared"
	TicketStatusInDelivery        TicketStatus = "in_delivery"
	TicketStatusCompleted         TicketStatus = "completed"
	TicketStatusCancelled         TicketStatus = "cancelled"
)

// ParseTicketStatus validates a stored status value.
func ParseTicketStatus(value string) (TicketStatus, error) {
	switch TicketStatus(value) {
	case TicketStatusPendingData, TicketStatusPendingReview, TicketStatusUnderReview,
		TicketStatusApproved, TicketStatusRejected, TicketStatusPendingFinance,
		TicketStatusFinanceApproved, TicketStatusPendingInventory,
		TicketStatusInventoryPrepared, TicketStatusInDelivery,
		TicketStatusCompleted, TicketStatusCancelled:
		return TicketStatus(value), nil
	}
	return "", fmt.Errorf("unknown ticket status %q", value)
}

// TechnicalDecision is the outcome of human technical review.
type TechnicalDecision string

const (
	DecisionPending  TechnicalDecision = "pending"
	DecisionApproved TechnicalDecision = "approved"
	DecisionRejected TechnicalDecision = "rejected"
)

// ParseTechnicalDecision validates a decision value from a public operation.
func ParseTechnicalDecision(value string) (TechnicalDecision, error) {
	switch TechnicalDecision(value) {
	case DecisionApproved, DecisionRejected:
		return TechnicalDecision(value), nil
	}
	return "", fmt.Errorf("decision must be approved or rejected, got %q", value)
}

// CompensationType is chosen from the customer's account status at approval time.
type CompensationType string

const (
	CompensationRefund      CompensationType = "refund"
	CompensationReplacement CompensationType = "replacement"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityNormal TicketPriority = "normal"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// IssueCategory is the classifier's suggested complaint category.
type IssueCategory string

const (
	CategoryQuality      IssueCategory = "quality"
	CategoryWrongProduct IssueCategory = "wrong_product"
	CategoryMissingParts IssueCategory = "missing_parts"
	CategoryNotWorking   IssueCategory = "not_working"
	CategoryExpired      IssueCategory = "expired"
	CategoryPackaging    IssueCategory = "packaging"
	CategoryOther        IssueCategory = "other"
)

// Ticket is the aggregate for compensation requests.
type Ticket struct {
	ID         string
	Number     string
	CustomerID string

	ProductName  string
	ProductSKU   *string
	PurchaseDate *time.Time
	Quantity     int

	IssueDescription string
	IssueCategory    IssueCategory
	Photos           []string

	Status   TicketStatus
	Priority TicketPriority

	AssignedTechnicianID *string
	TechnicalDecision    TechnicalDecision
	TechnicalNotes       *string
	TechnicalReviewedAt  *time.Time

	CompensationType *CompensationType
	SalesOrderNumber *string
	ReplacementTrack *string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// InReview reports whether the ticket is still waiting on technical review.
func (t *Ticket) InReview() bool {
	return t.Status == TicketStatusPendingReview || t.Status == TicketStatusUnderReview
}
