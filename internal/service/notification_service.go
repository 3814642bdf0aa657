package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/events"
	"github.com/spec-kit/compensation-agent/internal/observability"
	"github.com/spec-kit/compensation-agent/internal/repository"
	"github.com/spec-kit/compensation-agent/internal/templates"
	"github.com/spec-kit/compensation-agent/internal/transport/whatsapp"
)

// NotificationService turns lifecycle events into customer messages. Every
// attempt is persisted; failures stay as rows for the retry worker instead of
// being dropped.
type NotificationService struct {
	notifications repository.NotificationRepository
	customers     repository.CustomerRepository
	tickets       repository.TicketRepository
	messages      repository.ConversationMessageRepository
	templates     templates.Resolver
	sender        whatsapp.Sender
	logger        *zap.Logger
	metrics       *observability.Metrics

	reminderThrottle time.Duration
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	CustomerRepo     repository.CustomerRepository
	TicketRepo       repository.TicketRepository
	MessageRepo      repository.ConversationMessageRepository
	Templates        templates.Resolver
	Sender           whatsapp.Sender
	Logger           *zap.Logger
	Metrics          *observability.Metrics
	// ReminderThrottle is the minimum gap between reminders for the same
	// ticket. Zero means the 24h default.
	ReminderThrottle time.Duration
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	throttle := deps.ReminderThrottle
	if throttle <= 0 {
		throttle = 24 * time.Hour
	}
	return &NotificationService{
		notifications:    deps.NotificationRepo,
		customers:        deps.CustomerRepo,
		tickets:          deps.TicketRepo,
		messages:         deps.MessageRepo,
		templates:        deps.Templates,
		sender:           deps.Sender,
		logger:           deps.Logger,
		metrics:          deps.Metrics,
		reminderThrottle: throttle,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventDecisionRecorded, n.handleDecisionRecorded)
}

func (n *NotificationService) handleDecisionRecorded(ctx context.Context, event events.Event) error {
	ticket, err := n.tickets.GetByID(ctx, event.TicketID)
	if err != nil {
		n.logger.Warn("decision notification skipped", zap.String("ticket_id", event.TicketID), zap.Error(err))
		return err
	}
	return n.NotifyDecision(ctx, ticket)
}

// NotifyDecision tells the customer about the technical verdict in their
// language. Delivery failure is recorded, never propagated to the caller.
func (n *NotificationService) NotifyDecision(ctx context.Context, ticket *domain.Ticket) error {
	customer, err := n.customers.GetByID(ctx, ticket.CustomerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			n.logger.Warn("customer missing for notification", zap.String("ticket_id", ticket.ID))
			return nil
		}
		return err
	}

	key := templates.KeyTicketRejected
	if ticket.TechnicalDecision == domain.DecisionApproved {
		key = templates.KeyApprovedReplacement
		if ticket.CompensationType != nil && *ticket.CompensationType == domain.CompensationRefund {
			key = templates.KeyApprovedRefund
		}
	}

	params := templates.Params{"ticket_number": ticket.Number, "reason": ""}
	if ticket.TechnicalNotes != nil {
		params["reason"] = *ticket.TechnicalNotes
	}
	content := n.templates.Resolve(key, params, customer.Language)

	// The history row is written whether or not delivery succeeds.
	record := &domain.ConversationMessage{
		CustomerID:  customer.ID,
		TicketID:    &ticket.ID,
		Direction:   domain.DirectionOutbound,
		MessageType: domain.MessageTypeText,
		Content:     content,
	}
	if err := n.messages.Create(ctx, record); err != nil {
		n.logger.Error("history append failed", zap.Error(err))
	}

	n.deliver(ctx, customer, &ticket.ID, domain.NotificationDecision, content)
	return nil
}

// SendReminder nudges the customer that their ticket is still in review.
// The persisted reminder rows throttle repeats: a ticket is nudged at most
// once per throttle window, however often the sweep runs.
func (n *NotificationService) SendReminder(ctx context.Context, ticket *domain.Ticket) error {
	last, err := n.notifications.LatestForTicket(ctx, ticket.ID, domain.NotificationReminder)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if last != nil && time.Since(last.CreatedAt) < n.reminderThrottle {
		return nil
	}

	customer, err := n.customers.GetByID(ctx, ticket.CustomerID)
	if err != nil {
		return err
	}
	content := n.templates.Resolve(templates.KeyReminderReview, templates.Params{
		"ticket_number": ticket.Number,
	}, customer.Language)
	n.deliver(ctx, customer, &ticket.ID, domain.NotificationReminder, content)
	return nil
}

// RetryFailed re-attempts delivery of failed notifications up to maxAttempts.
func (n *NotificationService) RetryFailed(ctx context.Context, maxAttempts, limit int) (int, error) {
	failed, err := n.notifications.ListFailed(ctx, maxAttempts, limit)
	if err != nil {
		return 0, err
	}
	retried := 0
	for i := range failed {
		notification := &failed[i]
		customer, err := n.customers.GetByID(ctx, notification.CustomerID)
		if err != nil {
			continue
		}
		n.attempt(ctx, customer, notification)
		if notification.Status == domain.NotificationSent {
			retried++
		}
	}
	return retried, nil
}

func (n *NotificationService) deliver(ctx context.Context, customer *domain.Customer, ticketID *string, kind domain.NotificationKind, content string) {
	notification := &domain.Notification{
		CustomerID: customer.ID,
		TicketID:   ticketID,
		Kind:       kind,
		Content:    content,
		Status:     domain.NotificationPending,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Error("notification record failed", zap.Error(err))
		return
	}
	n.attempt(ctx, customer, notification)
}

func (n *NotificationService) attempt(ctx context.Context, customer *domain.Customer, notification *domain.Notification) {
	notification.Attempts++
	if err := n.sender.SendText(ctx, customer.PhoneNumber, notification.Content); err != nil {
		msg := err.Error()
		notification.Status = domain.NotificationFailed
		notification.LastError = &msg
		n.metrics.RecordNotification(string(notification.Kind), "failed")
		n.logger.Warn("notification delivery failed",
			zap.String("customer_id", customer.ID),
			zap.Int("attempts", notification.Attempts),
			zap.Error(err))
	} else {
		now := time.Now()
		notification.Status = domain.NotificationSent
		notification.SentAt = &now
		notification.LastError = nil
		n.metrics.RecordNotification(string(notification.Kind), "sent")
	}
	if err := n.notifications.Update(ctx, notification); err != nil {
		n.logger.Error("notification update failed", zap.Error(err))
	}
}
