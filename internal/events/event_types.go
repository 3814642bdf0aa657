package events

import (
	"time"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventDecisionRecorded    EventType = "decision_recorded"
	EventMessageReceived     EventType = "message_received"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	CustomerID   string                `json:"customer_id"`
	Priority     domain.TicketPriority `json:"priority"`
	Category     domain.IssueCategory  `json:"category"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Reason    string              `json:"reason,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TechnicianID string `json:"technician_id"`
}

// DecisionRecordedPayload payload.
type DecisionRecordedPayload struct {
	Decision domain.TechnicalDecision `json:"decision"`
	Notes    string                   `json:"notes,omitempty"`
}

// MessageReceivedPayload payload.
type MessageReceivedPayload struct {
	CustomerID string          `json:"customer_id"`
	Intent     string          `json:"intent"`
	Language   domain.Language `json:"language"`
}
