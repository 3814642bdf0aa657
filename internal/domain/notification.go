package domain

import "time"

// NotificationStatus tracks outbound delivery outcomes.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// NotificationKind labels why a notification was generated.
type NotificationKind string

const (
	NotificationDecision NotificationKind = "decision"
	NotificationReminder NotificationKind = "reminder"
)

// Notification is a persisted outbound message attempt. Failed rows stay
// visible and are retried by the delivery worker.
type Notification struct {
	ID         string
	CustomerID string
	TicketID   *string
	Kind       NotificationKind
	Content    string
	Status     NotificationStatus
	Attempts   int
	LastError  *string
	SentAt     *time.Time
	CreatedAt  time.Time
}
