package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/compensation-agent/internal/classifier"
	"github.com/spec-kit/compensation-agent/internal/dedup"
	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/events"
	"github.com/spec-kit/compensation-agent/internal/repository"
	"github.com/spec-kit/compensation-agent/internal/templates"
)

// IncomingMessage is the transport-agnostic inbound message handed to the
// orchestrator.
type IncomingMessage struct {
	SenderID    string
	ProviderID  string
	Text        string
	MessageType domain.MessageType
	MediaRef    *string
	DisplayName string
}

// WorkflowService is the per-customer conversation state machine. Messages
// from the same customer are serialized; different customers run in parallel.
type WorkflowService struct {
	customers  repository.CustomerRepository
	states     repository.ConversationStateRepository
	messages   repository.ConversationMessageRepository
	tickets    *TicketService
	classifier classifier.Classifier
	templates  templates.Resolver
	dedup      dedup.Cache
	dispatcher events.Dispatcher
	logger     *zap.Logger

	structuredIntake bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	now func() time.Time
}

// WorkflowDependencies bundles orchestrator collaborators.
type WorkflowDependencies struct {
	CustomerRepo     repository.CustomerRepository
	StateRepo        repository.ConversationStateRepository
	MessageRepo      repository.ConversationMessageRepository
	Tickets          *TicketService
	Classifier       classifier.Classifier
	Templates        templates.Resolver
	Dedup            dedup.Cache
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
	StructuredIntake bool
}

// NewWorkflowService constructs the orchestrator.
func NewWorkflowService(deps WorkflowDependencies) *WorkflowService {
	return &WorkflowService{
		customers:        deps.CustomerRepo,
		states:           deps.StateRepo,
		messages:         deps.MessageRepo,
		tickets:          deps.Tickets,
		classifier:       deps.Classifier,
		templates:        deps.Templates,
		dedup:            deps.Dedup,
		dispatcher:       deps.Dispatcher,
		logger:           deps.Logger,
		structuredIntake: deps.StructuredIntake,
		locks:            make(map[string]*sync.Mutex),
		now:              time.Now,
	}
}

// HandleMessage processes one inbound message end to end and returns the
// reply text. An empty reply with nil error means the message was a
// duplicate delivery and was dropped.
func (s *WorkflowService) HandleMessage(ctx context.Context, msg IncomingMessage) (string, error) {
	if strings.TrimSpace(msg.SenderID) == "" {
		return "", errors.New("sender id required")
	}
	if msg.MessageType == "" {
		msg.MessageType = domain.MessageTypeText
	}

	lock := s.customerLock(msg.SenderID)
	lock.Lock()
	defer lock.Unlock()

	claimed := false
	if msg.ProviderID != "" {
		seen, err := s.dedup.Seen(ctx, msg.ProviderID)
		if err != nil {
			s.logger.Warn("dedup check failed", zap.Error(err))
		} else if seen {
			return "", nil
		} else {
			claimed = true
		}
	}

	reply, err := s.handle(ctx, msg)
	if err != nil && claimed {
		// The message never got processed; release the claim so the
		// provider's redelivery is handled instead of dropped.
		if ferr := s.dedup.Forget(ctx, msg.ProviderID); ferr != nil {
			s.logger.Warn("dedup release failed",
				zap.String("provider_message_id", msg.ProviderID),
				zap.Error(ferr))
		}
	}
	return reply, err
}

func (s *WorkflowService) handle(ctx context.Context, msg IncomingMessage) (string, error) {
	if msg.ProviderID != "" {
		exists, err := s.messages.ExistsByProviderID(ctx, msg.ProviderID)
		if err != nil {
			return "", err
		}
		if exists {
			return "", nil
		}
	}

	customer, err := s.resolveCustomer(ctx, msg)
	if err != nil {
		return "", err
	}
	state, err := s.resolveState(ctx, customer.ID)
	if err != nil {
		return "", err
	}

	if msg.Text != "" {
		lang := s.classifier.DetectLanguage(msg.Text)
		if lang != customer.Language {
			customer.Language = lang
			if err := s.customers.Update(ctx, customer); err != nil {
				return "", err
			}
		}
	}

	intent := s.classifier.Classify(msg.Text, state.CurrentStep)
	entities := s.classifier.ExtractEntities(msg.Text)

	if err := s.recordInbound(ctx, customer.ID, state, msg, intent); err != nil {
		return "", err
	}

	reply := s.dispatch(ctx, customer, state, msg, intent, entities)

	now := s.now()
	state.LastMessageAt = now
	if err := s.states.Update(ctx, state); err != nil {
		return "", err
	}
	if err := s.recordOutbound(ctx, customer.ID, state, reply); err != nil {
		return "", err
	}

	s.publish(ctx, events.Event{
		Type:  events.EventMessageReceived,
		Actor: customer.PhoneNumber,
		Payload: events.MessageReceivedPayload{
			CustomerID: customer.ID,
			Intent:     string(intent),
			Language:   customer.Language,
		},
	})
	return reply, nil
}

func (s *WorkflowService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// dispatch is the (step, intent) transition table. Cancel is checked before
// step-specific branches so it is reachable everywhere.
func (s *WorkflowService) dispatch(ctx context.Context, customer *domain.Customer, state *domain.ConversationState, msg IncomingMessage, intent classifier.Intent, entities classifier.Entities) string {
	lang := customer.Language

	if intent == classifier.IntentCancel {
		state.Reset(s.now())
		return s.templates.Resolve(templates.KeyCancelled, nil, lang)
	}

	switch state.CurrentStep {
	case domain.StepIdle:
		return s.handleIdle(ctx, customer, state, intent, entities)
	case domain.StepCollectingName:
		state.Collected.CustomerName = strings.TrimSpace(msg.Text)
		if customer.Name == nil && state.Collected.CustomerName != "" {
			name := state.Collected.CustomerName
			customer.Name = &name
			if err := s.customers.Update(ctx, customer); err != nil {
				s.logger.Warn("name backfill failed", zap.Error(err))
			}
		}
		state.CurrentStep = domain.StepCollectingProduct
		return s.templates.Resolve(templates.KeyAskProduct, nil, lang)
	case domain.StepCollectingProduct:
		state.Collected.ProductName = strings.TrimSpace(msg.Text)
		if s.structuredIntake {
			state.CurrentStep = domain.StepCollectingPurchaseDate
			return s.templates.Resolve(templates.KeyAskPurchaseDate, nil, lang)
		}
		state.CurrentStep = domain.StepCollectingIssue
		return s.templates.Resolve(templates.KeyAskIssue, nil, lang)
	case domain.StepCollectingPurchaseDate:
		if entities.Date != nil {
			if parsed, ok := parseLooseDate(*entities.Date); ok {
				state.Collected.PurchaseDate = &parsed
			}
		}
		state.CurrentStep = domain.StepCollectingQuantity
		return s.templates.Resolve(templates.KeyAskQuantity, nil, lang)
	case domain.StepCollectingQuantity:
		if entities.Quantity != nil {
			state.Collected.Quantity = *entities.Quantity
		} else if n, err := parseBareNumber(msg.Text); err == nil {
			state.Collected.Quantity = n
		}
		state.CurrentStep = domain.StepCollectingIssue
		return s.templates.Resolve(templates.KeyAskIssue, nil, lang)
	case domain.StepCollectingIssue:
		state.Collected.IssueDescription = strings.TrimSpace(msg.Text)
		state.Collected.IssueCategory = s.classifier.SuggestCategory(msg.Text)
		state.CurrentStep = domain.StepCollectingPhotos
		return s.templates.Resolve(templates.KeyAskPhotos, nil, lang)
	case domain.StepCollectingPhotos:
		return s.handlePhotos(state, msg, intent, lang)
	case domain.StepConfirmingData:
		return s.handleConfirmation(ctx, customer, state, intent, lang)
	}

	return s.templates.Resolve(templates.KeyUnknown, nil, lang)
}

func (s *WorkflowService) handleIdle(ctx context.Context, customer *domain.Customer, state *domain.ConversationState, intent classifier.Intent, entities classifier.Entities) string {
	lang := customer.Language
	switch intent {
	case classifier.IntentGreeting:
		return s.templates.Resolve(templates.KeyGreeting, nil, lang)
	case classifier.IntentNewComplaint:
		state.Collected = domain.CollectedData{}
		if s.structuredIntake && customer.Name == nil {
			state.CurrentStep = domain.StepCollectingName
			return s.templates.Resolve(templates.KeyAskName, nil, lang)
		}
		state.CurrentStep = domain.StepCollectingProduct
		return s.templates.Resolve(templates.KeyAskProduct, nil, lang)
	case classifier.IntentCheckStatus:
		return s.statusSummary(ctx, customer, entities)
	case classifier.IntentHelp:
		return s.templates.Resolve(templates.KeyHelp, nil, lang)
	case classifier.IntentThanks:
		return s.templates.Resolve(templates.KeyThanks, nil, lang)
	default:
		// First contact always gets the menu, not "unknown".
		return s.templates.Resolve(templates.KeyGreeting, nil, lang)
	}
}

// handlePhotos loops: image messages append and stay at this step; skip or
// any text advances to confirmation.
func (s *WorkflowService) handlePhotos(state *domain.ConversationState, msg IncomingMessage, intent classifier.Intent, lang domain.Language) string {
	if msg.MessageType == domain.MessageTypeImage && msg.MediaRef != nil {
		state.Collected.Photos = append(state.Collected.Photos, *msg.MediaRef)
		return s.templates.Resolve(templates.KeyAskPhotos, nil, lang)
	}
	if intent == classifier.IntentSkip && len(state.Collected.Photos) == 0 {
		state.Collected.Photos = nil
	}
	state.CurrentStep = domain.StepConfirmingData
	return s.confirmSummary(state, lang)
}

func (s *WorkflowService) handleConfirmation(ctx context.Context, customer *domain.Customer, state *domain.ConversationState, intent classifier.Intent, lang domain.Language) string {
	switch intent {
	case classifier.IntentConfirmYes:
		ticket, err := s.tickets.Create(ctx, TicketCreateInput{
			CustomerID:       customer.ID,
			ProductName:      state.Collected.ProductName,
			PurchaseDate:     state.Collected.PurchaseDate,
			Quantity:         state.Collected.Quantity,
			IssueDescription: state.Collected.IssueDescription,
			IssueCategory:    state.Collected.IssueCategory,
			Photos:           state.Collected.Photos,
		})
		if err != nil {
			s.logger.Error("ticket creation failed", zap.String("customer_id", customer.ID), zap.Error(err))
			return s.templates.Resolve(templates.KeyUnknown, nil, lang)
		}
		state.Reset(s.now())
		state.CurrentTicketID = &ticket.ID
		return s.templates.Resolve(templates.KeyTicketCreated, templates.Params{
			"ticket_number": ticket.Number,
		}, lang)
	case classifier.IntentConfirmNo:
		state.Collected = domain.CollectedData{}
		state.CurrentStep = domain.StepCollectingProduct
		restart := s.templates.Resolve(templates.KeyRestart, nil, lang)
		ask := s.templates.Resolve(templates.KeyAskProduct, nil, lang)
		return restart + "\n\n" + ask
	default:
		return s.confirmSummary(state, lang)
	}
}

func (s *WorkflowService) confirmSummary(state *domain.ConversationState, lang domain.Language) string {
	return s.templates.Resolve(templates.KeyConfirmData, templates.Params{
		"product": state.Collected.ProductName,
		"issue":   state.Collected.IssueDescription,
	}, lang)
}

// statusSummary looks up an explicitly referenced ticket, falling back to the
// customer's most recent one. A miss is a defined reply, not an error.
func (s *WorkflowService) statusSummary(ctx context.Context, customer *domain.Customer, entities classifier.Entities) string {
	lang := customer.Language
	var ticket *domain.Ticket
	if entities.TicketNumber != nil {
		found, err := s.tickets.GetByNumber(ctx, *entities.TicketNumber)
		if err == nil && found.CustomerID == customer.ID {
			ticket = found
		}
	}
	if ticket == nil {
		recent, err := s.tickets.ListByCustomer(ctx, customer.ID, 1)
		if err != nil || len(recent) == 0 {
			return s.templates.Resolve(templates.KeyNoTickets, nil, lang)
		}
		ticket = &recent[0]
	}

	extra := ""
	if ticket.Status == domain.TicketStatusRejected && ticket.TechnicalNotes != nil {
		extra = *ticket.TechnicalNotes
	}
	return s.templates.Resolve(templates.KeyTicketStatus, templates.Params{
		"ticket_number": ticket.Number,
		"created_date":  ticket.CreatedAt.Format("2006-01-02"),
		"product":       ticket.ProductName,
		"status":        templates.StatusLabel(ticket.Status, lang),
		"extra_info":    extra,
	}, lang)
}

func (s *WorkflowService) resolveCustomer(ctx context.Context, msg IncomingMessage) (*domain.Customer, error) {
	customer, err := s.customers.GetByPhone(ctx, msg.SenderID)
	if err == nil {
		if customer.Name == nil && msg.DisplayName != "" {
			name := msg.DisplayName
			customer.Name = &name
			if err := s.customers.Update(ctx, customer); err != nil {
				return nil, err
			}
		}
		return customer, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	customer = &domain.Customer{
		PhoneNumber: msg.SenderID,
		HasAccount:  false,
		Language:    s.classifier.DetectLanguage(msg.Text),
	}
	if msg.DisplayName != "" {
		name := msg.DisplayName
		customer.Name = &name
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *WorkflowService) resolveState(ctx context.Context, customerID string) (*domain.ConversationState, error) {
	state, err := s.states.GetByCustomer(ctx, customerID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	now := s.now()
	state = &domain.ConversationState{
		CustomerID:    customerID,
		CurrentStep:   domain.StepIdle,
		SessionStart:  now,
		LastMessageAt: now,
	}
	if err := s.states.Create(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *WorkflowService) recordInbound(ctx context.Context, customerID string, state *domain.ConversationState, msg IncomingMessage, intent classifier.Intent) error {
	intentLabel := string(intent)
	record := &domain.ConversationMessage{
		CustomerID:  customerID,
		TicketID:    state.CurrentTicketID,
		Direction:   domain.DirectionInbound,
		MessageType: msg.MessageType,
		Content:     msg.Text,
		MediaRef:    msg.MediaRef,
		Intent:      &intentLabel,
	}
	if msg.ProviderID != "" {
		providerID := msg.ProviderID
		record.ProviderID = &providerID
	}
	return s.messages.Create(ctx, record)
}

func (s *WorkflowService) recordOutbound(ctx context.Context, customerID string, state *domain.ConversationState, content string) error {
	record := &domain.ConversationMessage{
		CustomerID:  customerID,
		TicketID:    state.CurrentTicketID,
		Direction:   domain.DirectionOutbound,
		MessageType: domain.MessageTypeText,
		Content:     content,
	}
	return s.messages.Create(ctx, record)
}

// ListHistory returns stored chat history for a customer, newest first.
func (s *WorkflowService) ListHistory(ctx context.Context, customerID string, limit int) ([]domain.ConversationMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.messages.ListByCustomer(ctx, customerID, limit)
}

func (s *WorkflowService) customerLock(senderID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[senderID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[senderID] = lock
	}
	return lock
}

func parseLooseDate(raw string) (time.Time, bool) {
	for _, layout := range []string{"2/1/2006", "02/01/2006", "2-1-2006", "02-01-2006", "2/1/06", "2-1-06"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseBareNumber(text string) (int, error) {
	fields := strings.Fields(text)
	for _, field := range fields {
		if n, err := strconv.Atoi(field); err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, errors.New("no number found")
}
