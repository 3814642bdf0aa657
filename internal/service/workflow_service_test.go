package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/compensation-agent/internal/classifier"
	"github.com/spec-kit/compensation-agent/internal/dedup"
	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/events"
	"github.com/spec-kit/compensation-agent/internal/repository"
	"github.com/spec-kit/compensation-agent/internal/repository/memory"
	"github.com/spec-kit/compensation-agent/internal/templates"
)

type workflowFixture struct {
	service    *WorkflowService
	tickets    repository.TicketRepository
	customers  repository.CustomerRepository
	states     repository.ConversationStateRepository
	messages   repository.ConversationMessageRepository
	dispatcher events.Dispatcher
}

func newWorkflowFixture(t *testing.T, structuredIntake bool) *workflowFixture {
	t.Helper()
	f := &workflowFixture{
		tickets:    memory.NewTicketStore(),
		customers:  memory.NewCustomerStore(),
		states:     memory.NewConversationStateStore(),
		messages:   memory.NewConversationMessageStore(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	ticketService := NewTicketService(TicketDependencies{
		TicketRepo:     f.tickets,
		CustomerRepo:   f.customers,
		TechnicianRepo: memory.NewTechnicianStore(),
		HistoryRepo:    memory.NewTicketHistoryStore(),
		Tx:             memory.NewTxManager(),
		Dispatcher:     f.dispatcher,
	})
	f.service = NewWorkflowService(WorkflowDependencies{
		CustomerRepo:     f.customers,
		StateRepo:        f.states,
		MessageRepo:      f.messages,
		Tickets:          ticketService,
		Classifier:       classifier.NewKeyword(),
		Templates:        templates.NewCatalog(),
		Dedup:            dedup.NewMemoryCache(time.Hour),
		Dispatcher:       f.dispatcher,
		Logger:           zap.NewNop(),
		StructuredIntake: structuredIntake,
	})
	return f
}

func (f *workflowFixture) send(t *testing.T, sender, text string) string {
	t.Helper()
	reply, err := f.service.HandleMessage(context.Background(), IncomingMessage{
		SenderID: sender,
		Text:     text,
	})
	require.NoError(t, err)
	return reply
}

func (f *workflowFixture) sendImage(t *testing.T, sender, mediaRef string) string {
	t.Helper()
	reply, err := f.service.HandleMessage(context.Background(), IncomingMessage{
		SenderID:    sender,
		MessageType: domain.MessageTypeImage,
		MediaRef:    &mediaRef,
	})
	require.NoError(t, err)
	return reply
}

func (f *workflowFixture) stateFor(t *testing.T, sender string) *domain.ConversationState {
	t.Helper()
	customer, err := f.customers.GetByPhone(context.Background(), sender)
	require.NoError(t, err)
	state, err := f.states.GetByCustomer(context.Background(), customer.ID)
	require.NoError(t, err)
	return state
}

const phone = "01098765432"

func TestWorkflowHappyPath(t *testing.T) {
	f := newWorkflowFixture(t, false)

	reply := f.send(t, phone, "hello")
	assert.Contains(t, reply, "Hello")

	reply = f.send(t, phone, "I have a problem with my order")
	assert.Contains(t, reply, "Product name")

	reply = f.send(t, phone, "White paint 10L")
	assert.Contains(t, reply, "describe the issue")

	reply = f.send(t, phone, "the paint arrived damaged")
	assert.Contains(t, reply, "photo")

	reply = f.send(t, phone, "skip")
	assert.Contains(t, reply, "White paint 10L")
	assert.Contains(t, reply, "the paint arrived damaged")

	reply = f.send(t, phone, "yes")
	assert.Contains(t, reply, "TKT-")

	state := f.stateFor(t, phone)
	assert.Equal(t, domain.StepIdle, state.CurrentStep)
	assert.True(t, state.Collected.Empty())
	require.NotNil(t, state.CurrentTicketID)

	ticket, err := f.tickets.GetByID(context.Background(), *state.CurrentTicketID)
	require.NoError(t, err)
	assert.Equal(t, "White paint 10L", ticket.ProductName)
	assert.Equal(t, domain.CategoryQuality, ticket.IssueCategory)
	assert.Equal(t, domain.TicketStatusPendingReview, ticket.Status)
}

func TestWorkflowFirstContactGetsMenu(t *testing.T) {
	f := newWorkflowFixture(t, false)

	// Unclassifiable first contact gets the menu, not the unknown reply.
	reply := f.send(t, phone, "qwerty xyzzy")
	assert.Contains(t, reply, "How can I help you")
}

func TestWorkflowCancelAnywhere(t *testing.T) {
	f := newWorkflowFixture(t, false)

	f.send(t, phone, "I have a complaint")
	f.send(t, phone, "Sealant tube")

	reply := f.send(t, phone, "cancel")
	assert.Contains(t, reply, "cancelled")

	state := f.stateFor(t, phone)
	assert.Equal(t, domain.StepIdle, state.CurrentStep)
	assert.True(t, state.Collected.Empty())
}

func TestWorkflowDuplicateDeliveryDropped(t *testing.T) {
	f := newWorkflowFixture(t, false)

	msg := IncomingMessage{SenderID: phone, Text: "hello", ProviderID: "wamid.001"}
	reply, err := f.service.HandleMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.NotEmpty(t, reply)

	reply, err = f.service.HandleMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Empty(t, reply, "redelivery of the same provider id is silently dropped")

	// Only the first delivery produced a history pair.
	customer, err := f.customers.GetByPhone(context.Background(), phone)
	require.NoError(t, err)
	history, err := f.messages.ListByCustomer(context.Background(), customer.ID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

// flakyMessageStore fails the first Create calls, then delegates.
type flakyMessageStore struct {
	repository.ConversationMessageRepository
	failures int
}

func (s *flakyMessageStore) Create(ctx context.Context, message *domain.ConversationMessage) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("store unavailable")
	}
	return s.ConversationMessageRepository.Create(ctx, message)
}

func TestWorkflowRedeliveryAfterFailureIsProcessed(t *testing.T) {
	f := newWorkflowFixture(t, false)
	f.service.messages = &flakyMessageStore{ConversationMessageRepository: f.messages, failures: 1}

	msg := IncomingMessage{SenderID: phone, Text: "hello", ProviderID: "wamid.042"}
	_, err := f.service.HandleMessage(context.Background(), msg)
	require.Error(t, err, "first delivery fails before anything is persisted")

	// The provider retries the identical delivery; it must not be treated
	// as a duplicate of the failed attempt.
	reply, err := f.service.HandleMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.NotEmpty(t, reply, "redelivery of an unprocessed message must be handled")

	// A third delivery of the now-processed message is dropped as usual.
	reply, err = f.service.HandleMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestWorkflowPhotoLoop(t *testing.T) {
	f := newWorkflowFixture(t, false)

	f.send(t, phone, "I have a complaint")
	f.send(t, phone, "Primer bucket")
	f.send(t, phone, "lid was broken")

	reply := f.sendImage(t, phone, "media-1")
	assert.Contains(t, reply, "photo")
	reply = f.sendImage(t, phone, "media-2")
	assert.Contains(t, reply, "photo")

	state := f.stateFor(t, phone)
	assert.Equal(t, domain.StepCollectingPhotos, state.CurrentStep)
	assert.Equal(t, []string{"media-1", "media-2"}, state.Collected.Photos)

	f.send(t, phone, "done")
	reply = f.send(t, phone, "yes")
	assert.Contains(t, reply, "TKT-")

	state = f.stateFor(t, phone)
	require.NotNil(t, state.CurrentTicketID)
	ticket, err := f.tickets.GetByID(context.Background(), *state.CurrentTicketID)
	require.NoError(t, err)
	assert.Equal(t, []string{"media-1", "media-2"}, ticket.Photos)
}

func TestWorkflowConfirmNoRestartsCollection(t *testing.T) {
	f := newWorkflowFixture(t, false)

	f.send(t, phone, "I have a complaint")
	f.send(t, phone, "Wood varnish")
	f.send(t, phone, "wrong color delivered")
	f.send(t, phone, "skip")

	reply := f.send(t, phone, "no")
	assert.Contains(t, reply, "start again")
	assert.Contains(t, reply, "Product name")

	state := f.stateFor(t, phone)
	assert.Equal(t, domain.StepCollectingProduct, state.CurrentStep)
	assert.True(t, state.Collected.Empty())
}

func TestWorkflowConfirmUnclearRepeatsSummary(t *testing.T) {
	f := newWorkflowFixture(t, false)

	f.send(t, phone, "I have a complaint")
	f.send(t, phone, "Wood varnish")
	f.send(t, phone, "it is expired")
	f.send(t, phone, "skip")

	reply := f.send(t, phone, "maybe later")
	assert.Contains(t, reply, "Wood varnish")

	state := f.stateFor(t, phone)
	assert.Equal(t, domain.StepConfirmingData, state.CurrentStep)
}

func TestWorkflowStatusCheck(t *testing.T) {
	f := newWorkflowFixture(t, false)

	f.send(t, phone, "I have a complaint")
	f.send(t, phone, "White paint 10L")
	f.send(t, phone, "the paint arrived damaged")
	f.send(t, phone, "skip")
	f.send(t, phone, "yes")

	state := f.stateFor(t, phone)
	require.NotNil(t, state.CurrentTicketID)
	ticket, err := f.tickets.GetByID(context.Background(), *state.CurrentTicketID)
	require.NoError(t, err)

	reply := f.send(t, phone, "check the status please")
	assert.Contains(t, reply, ticket.Number)
	assert.Contains(t, reply, "White paint 10L")
	assert.Contains(t, reply, "Under technical review")

	// Explicit ticket number lookup.
	reply = f.send(t, phone, "status of "+ticket.Number)
	assert.Contains(t, reply, ticket.Number)
}

func TestWorkflowStatusCheckWithoutTickets(t *testing.T) {
	f := newWorkflowFixture(t, false)

	reply := f.send(t, phone, "check status")
	assert.Contains(t, reply, "No complaints found")
}

func TestWorkflowStatusCheckIgnoresForeignTicket(t *testing.T) {
	f := newWorkflowFixture(t, false)

	other := "01055555555"
	f.send(t, other, "I have a complaint")
	f.send(t, other, "Thinner bottle")
	f.send(t, other, "bottle is damaged")
	f.send(t, other, "skip")
	f.send(t, other, "yes")

	otherState := f.stateFor(t, other)
	require.NotNil(t, otherState.CurrentTicketID)
	foreign, err := f.tickets.GetByID(context.Background(), *otherState.CurrentTicketID)
	require.NoError(t, err)

	// Asking about someone else's ticket falls back to "no tickets".
	reply := f.send(t, phone, "status of "+foreign.Number)
	assert.Contains(t, reply, "No complaints found")
}

func TestWorkflowLanguageFollowsCustomer(t *testing.T) {
	f := newWorkflowFixture(t, false)

	reply := f.send(t, phone, "hello")
	assert.Contains(t, reply, "Hello")

	reply = f.send(t, phone, "مرحبا")
	assert.Contains(t, reply, "مرحباً")

	customer, err := f.customers.GetByPhone(context.Background(), phone)
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageArabic, customer.Language)
}

func TestWorkflowStructuredIntake(t *testing.T) {
	f := newWorkflowFixture(t, true)

	reply := f.send(t, phone, "I have a complaint")
	assert.Contains(t, reply, "name")

	f.send(t, phone, "Ahmed Samir")
	customer, err := f.customers.GetByPhone(context.Background(), phone)
	require.NoError(t, err)
	require.NotNil(t, customer.Name)
	assert.Equal(t, "Ahmed Samir", *customer.Name)

	f.send(t, phone, "White paint 10L")
	f.send(t, phone, "bought on 2/1/2026")
	f.send(t, phone, "3")
	f.send(t, phone, "color is damaged")
	f.send(t, phone, "skip")
	reply = f.send(t, phone, "yes")
	assert.Contains(t, reply, "TKT-")

	state := f.stateFor(t, phone)
	require.NotNil(t, state.CurrentTicketID)
	ticket, err := f.tickets.GetByID(context.Background(), *state.CurrentTicketID)
	require.NoError(t, err)
	assert.Equal(t, 3, ticket.Quantity)
	require.NotNil(t, ticket.PurchaseDate)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), *ticket.PurchaseDate)
}

func TestWorkflowRequiresSender(t *testing.T) {
	f := newWorkflowFixture(t, false)

	_, err := f.service.HandleMessage(context.Background(), IncomingMessage{Text: "hello"})
	assert.Error(t, err)
}

func TestWorkflowRecordsHistoryWithIntent(t *testing.T) {
	f := newWorkflowFixture(t, false)

	f.send(t, phone, "hello")

	customer, err := f.customers.GetByPhone(context.Background(), phone)
	require.NoError(t, err)
	history, err := f.service.ListHistory(context.Background(), customer.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	var inbound *domain.ConversationMessage
	for i := range history {
		if history[i].Direction == domain.DirectionInbound {
			inbound = &history[i]
		}
	}
	require.NotNil(t, inbound)
	require.NotNil(t, inbound.Intent)
	assert.Equal(t, "greeting", *inbound.Intent)
}

func TestListHistoryReturnsNewestFirst(t *testing.T) {
	f := newWorkflowFixture(t, false)

	f.send(t, phone, "hello")
	f.send(t, phone, "check status")

	customer, err := f.customers.GetByPhone(context.Background(), phone)
	require.NoError(t, err)

	// With limit 2 only the newest exchange survives the cut.
	history, err := f.service.ListHistory(context.Background(), customer.ID, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.DirectionOutbound, history[0].Direction)
	assert.Contains(t, history[0].Content, "No complaints found")
	assert.Equal(t, domain.DirectionInbound, history[1].Direction)
	assert.Equal(t, "check status", history[1].Content)
}

func TestWorkflowPublishesMessageReceived(t *testing.T) {
	f := newWorkflowFixture(t, false)

	var got []events.Event
	f.dispatcher.Subscribe(events.EventMessageReceived, func(ctx context.Context, event events.Event) error {
		got = append(got, event)
		return nil
	})

	f.send(t, phone, "hello")

	require.Len(t, got, 1)
	payload, ok := got[0].Payload.(events.MessageReceivedPayload)
	require.True(t, ok)
	assert.Equal(t, "greeting", payload.Intent)
	assert.Equal(t, domain.LanguageEnglish, payload.Language)
}
