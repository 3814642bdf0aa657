package domain

import "time"

// Actor labels recorded in the audit trail.
const (
	ActorSystem        = "System"
	ActorFinanceTeam   = "Finance Team"
	ActorInventoryTeam = "Inventory Team"
)

// TicketStatusHistory is an append-only audit entry. Status fields are nil for
// non-status events (creation rows carry a nil old status, assignment rows
// carry both nil).
type TicketStatusHistory struct {
	ID        string
	TicketID  string
	OldStatus *TicketStatus
	NewStatus *TicketStatus
	ChangedBy string
	Reason    string
	CreatedAt time.Time
}
