package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/events"
	"github.com/spec-kit/compensation-agent/internal/observability"
	"github.com/spec-kit/compensation-agent/internal/repository"
	"github.com/spec-kit/compensation-agent/internal/repository/memory"
	"github.com/spec-kit/compensation-agent/internal/templates"
)

type stubSender struct {
	mu   sync.Mutex
	fail bool
	sent []string
}

func (s *stubSender) SendText(ctx context.Context, toPhone, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("provider unreachable")
	}
	s.sent = append(s.sent, body)
	return nil
}

type notificationFixture struct {
	service       *NotificationService
	sender        *stubSender
	notifications repository.NotificationRepository
	customers     repository.CustomerRepository
	tickets       repository.TicketRepository
	messages      repository.ConversationMessageRepository
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()
	f := &notificationFixture{
		sender:        &stubSender{},
		notifications: memory.NewNotificationStore(),
		customers:     memory.NewCustomerStore(),
		tickets:       memory.NewTicketStore(),
		messages:      memory.NewConversationMessageStore(),
	}
	f.service = NewNotificationService(NotificationDependencies{
		NotificationRepo: f.notifications,
		CustomerRepo:     f.customers,
		TicketRepo:       f.tickets,
		MessageRepo:      f.messages,
		Templates:        templates.NewCatalog(),
		Sender:           f.sender,
		Logger:           zap.NewNop(),
		Metrics:          observability.NewMetrics(),
	})
	return f
}

func (f *notificationFixture) seedTicket(t *testing.T, hasAccount bool, decision domain.TechnicalDecision, compensation *domain.CompensationType) *domain.Ticket {
	t.Helper()
	customer := &domain.Customer{
		PhoneNumber: "01012345678",
		HasAccount:  hasAccount,
		Language:    domain.LanguageEnglish,
	}
	require.NoError(t, f.customers.Create(context.Background(), customer))
	ticket := &domain.Ticket{
		Number:            "TKT-2026-00042",
		CustomerID:        customer.ID,
		ProductName:       "White paint 10L",
		Quantity:          1,
		Status:            domain.TicketStatusPendingFinance,
		Priority:          domain.TicketPriorityNormal,
		TechnicalDecision: decision,
		CompensationType:  compensation,
	}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))
	return ticket
}

func TestNotifyDecisionRefundApproval(t *testing.T) {
	f := newNotificationFixture(t)
	refund := domain.CompensationRefund
	ticket := f.seedTicket(t, true, domain.DecisionApproved, &refund)

	require.NoError(t, f.service.NotifyDecision(context.Background(), ticket))

	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0], "TKT-2026-00042")
	assert.Contains(t, f.sender.sent[0], "refund")

	// The outbound text lands in conversation history too.
	history, err := f.messages.ListByCustomer(context.Background(), ticket.CustomerID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.DirectionOutbound, history[0].Direction)
	assert.Equal(t, f.sender.sent[0], history[0].Content)
}

func TestNotifyDecisionRejectionIncludesReason(t *testing.T) {
	f := newNotificationFixture(t)
	ticket := f.seedTicket(t, false, domain.DecisionRejected, nil)
	notes := "out of warranty"
	ticket.TechnicalNotes = &notes
	require.NoError(t, f.tickets.Update(context.Background(), ticket))

	require.NoError(t, f.service.NotifyDecision(context.Background(), ticket))

	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0], "out of warranty")
}

func TestNotifyDecisionRecordsHistoryWhenDeliveryFails(t *testing.T) {
	f := newNotificationFixture(t)
	f.sender.fail = true
	replacement := domain.CompensationReplacement
	ticket := f.seedTicket(t, false, domain.DecisionApproved, &replacement)

	require.NoError(t, f.service.NotifyDecision(context.Background(), ticket))

	history, err := f.messages.ListByCustomer(context.Background(), ticket.CustomerID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1, "history row is written regardless of delivery outcome")

	failed, err := f.notifications.ListFailed(context.Background(), 3, 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].Attempts)
	require.NotNil(t, failed[0].LastError)
}

func TestRetryFailedRecovers(t *testing.T) {
	f := newNotificationFixture(t)
	f.sender.fail = true
	refund := domain.CompensationRefund
	ticket := f.seedTicket(t, true, domain.DecisionApproved, &refund)
	require.NoError(t, f.service.NotifyDecision(context.Background(), ticket))

	f.sender.fail = false
	retried, err := f.service.RetryFailed(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, retried)

	failed, err := f.notifications.ListFailed(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Empty(t, failed)
}

func TestRetryFailedStopsAtMaxAttempts(t *testing.T) {
	f := newNotificationFixture(t)
	f.sender.fail = true
	refund := domain.CompensationRefund
	ticket := f.seedTicket(t, true, domain.DecisionApproved, &refund)
	require.NoError(t, f.service.NotifyDecision(context.Background(), ticket))

	for i := 0; i < 2; i++ {
		_, err := f.service.RetryFailed(context.Background(), 3, 10)
		require.NoError(t, err)
	}

	// Three attempts recorded; the row is no longer eligible.
	failed, err := f.notifications.ListFailed(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Empty(t, failed)
}

func TestSendReminder(t *testing.T) {
	f := newNotificationFixture(t)
	ticket := f.seedTicket(t, true, domain.DecisionPending, nil)

	require.NoError(t, f.service.SendReminder(context.Background(), ticket))
	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0], "TKT-2026-00042")
}

func TestSendReminderThrottledPerTicket(t *testing.T) {
	f := newNotificationFixture(t)
	ticket := f.seedTicket(t, true, domain.DecisionPending, nil)

	require.NoError(t, f.service.SendReminder(context.Background(), ticket))
	require.NoError(t, f.service.SendReminder(context.Background(), ticket))
	assert.Len(t, f.sender.sent, 1, "re-sweeping inside the window stays quiet")

	// Age the recorded reminder past the window; the next sweep nudges again.
	last, err := f.notifications.LatestForTicket(context.Background(), ticket.ID, domain.NotificationReminder)
	require.NoError(t, err)
	last.CreatedAt = time.Now().Add(-25 * time.Hour)
	require.NoError(t, f.notifications.Update(context.Background(), last))

	require.NoError(t, f.service.SendReminder(context.Background(), ticket))
	assert.Len(t, f.sender.sent, 2)
}

func TestDecisionEventTriggersNotification(t *testing.T) {
	f := newNotificationFixture(t)
	refund := domain.CompensationRefund
	ticket := f.seedTicket(t, true, domain.DecisionApproved, &refund)

	dispatcher := events.NewInMemoryDispatcher()
	f.service.RegisterHandlers(dispatcher)

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventDecisionRecorded,
		TicketID: ticket.ID,
		Actor:    "reviewer",
		Payload:  events.DecisionRecordedPayload{Decision: domain.DecisionApproved},
	}))

	assert.Len(t, f.sender.sent, 1)
}
