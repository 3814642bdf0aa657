package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/events"
	"github.com/spec-kit/compensation-agent/internal/repository"
	apperrors "github.com/spec-kit/compensation-agent/pkg/util"
)

const ticketNumberAttempts = 5

// TicketService owns the compensation ticket lifecycle. Every mutation runs
// inside one transaction so the ticket row, its history entry and any
// technician workload change commit together.
type TicketService struct {
	tickets     repository.TicketRepository
	customers   repository.CustomerRepository
	technicians repository.TechnicianRepository
	history     repository.TicketHistoryRepository
	tx          repository.TxManager
	dispatcher  events.Dispatcher
	now         func() time.Time
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CustomerRepo   repository.CustomerRepository
	TechnicianRepo repository.TechnicianRepository
	HistoryRepo    repository.TicketHistoryRepository
	Tx             repository.TxManager
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes a confirmed complaint ready to become a ticket.
type TicketCreateInput struct {
	CustomerID       string
	ProductName      string
	ProductSKU       *string
	PurchaseDate     *time.Time
	Quantity         int
	IssueDescription string
	IssueCategory    domain.IssueCategory
	Photos           []string
	Priority         domain.TicketPriority
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		customers:   deps.CustomerRepo,
		technicians: deps.TechnicianRepo,
		history:     deps.HistoryRepo,
		tx:          deps.Tx,
		dispatcher:  deps.Dispatcher,
		now:         time.Now,
	}
}

// Create opens a ticket in PENDING_REVIEW and auto-assigns a technician when
// one has capacity. Ticket numbers are regenerated on collision.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if input.CustomerID == "" {
		return nil, apperrors.NewValidationError("customer_id required", nil)
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityNormal
	}
	if input.IssueCategory == "" {
		input.IssueCategory = domain.CategoryOther
	}

	ticket := &domain.Ticket{
		CustomerID:        input.CustomerID,
		ProductName:       strings.TrimSpace(input.ProductName),
		ProductSKU:        input.ProductSKU,
		PurchaseDate:      input.PurchaseDate,
		Quantity:          input.Quantity,
		IssueDescription:  strings.TrimSpace(input.IssueDescription),
		IssueCategory:     input.IssueCategory,
		Photos:            input.Photos,
		Status:            domain.TicketStatusPendingReview,
		Priority:          input.Priority,
		TechnicalDecision: domain.DecisionPending,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.createWithNumber(ctx, ticket); err != nil {
			return err
		}
		if err := s.recordChange(ctx, ticket.ID, nil, ticket.Status, domain.ActorSystem, "ticket created"); err != nil {
			return err
		}
		return s.autoAssign(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    domain.ActorSystem,
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.Number,
			CustomerID:   ticket.CustomerID,
			Priority:     ticket.Priority,
			Category:     ticket.IssueCategory,
		},
	})
	return ticket, nil
}

func (s *TicketService) createWithNumber(ctx context.Context, ticket *domain.Ticket) error {
	for attempt := 0; attempt < ticketNumberAttempts; attempt++ {
		ticket.Number = generateTicketNumber(s.now())
		err := s.tickets.Create(ctx, ticket)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		return err
	}
	return apperrors.NewConflict("could not allocate ticket number", nil)
}

func generateTicketNumber(now time.Time) string {
	return fmt.Sprintf("TKT-%d-%05d", now.Year(), rand.Intn(100000))
}

// autoAssign picks the least loaded technician with spare capacity. No
// eligible technician leaves the ticket unassigned in PENDING_REVIEW.
// Capacity is reserved atomically in the store, so a candidate that filled
// up after the roster read is skipped rather than overloaded.
func (s *TicketService) autoAssign(ctx context.Context, ticket *domain.Ticket) error {
	list, err := s.technicians.List(ctx, true)
	if err != nil {
		return err
	}
	for i := range list {
		tech := &list[i]
		if !tech.HasCapacity() {
			continue
		}
		reserved, err := s.technicians.ReserveCapacity(ctx, tech.ID)
		if err != nil {
			return err
		}
		if !reserved {
			continue
		}
		return s.recordAssignment(ctx, ticket, tech, domain.ActorSystem)
	}
	return nil
}

// recordAssignment writes the assignment row with both statuses nil;
// assignment by itself is not a status transition. The workload counter has
// already been claimed by the caller.
func (s *TicketService) recordAssignment(ctx context.Context, ticket *domain.Ticket, tech *domain.Technician, actor string) error {
	ticket.AssignedTechnicianID = &tech.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return err
	}
	entry := &domain.TicketStatusHistory{
		TicketID:  ticket.ID,
		ChangedBy: actor,
		Reason:    "assigned to " + tech.Name,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload:  events.TicketAssignedPayload{TechnicianID: tech.ID},
	})
	return nil
}

// StartReview marks a pending ticket as actively being reviewed.
func (s *TicketService) StartReview(ctx context.Context, ticketID, actor string) (*domain.Ticket, error) {
	return s.advance(ctx, ticketID, domain.TicketStatusPendingReview, domain.TicketStatusUnderReview,
		actor, "review started", nil)
}

// Assign hands a ticket to a named technician. Direct assignment skips the
// capacity check; the roster view is the operator's responsibility.
func (s *TicketService) Assign(ctx context.Context, ticketID, technicianID, actor string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.getTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if !ticket.InReview() {
			return apperrors.NewConflict("ticket is not awaiting review", map[string]any{
				"status": ticket.Status,
			})
		}
		tech, err := s.technicians.GetByID(ctx, technicianID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("technician", map[string]any{"technician_id": technicianID})
			}
			return err
		}
		if !tech.Active {
			return apperrors.NewConflict("technician inactive", map[string]any{"technician_id": technicianID})
		}
		if err := s.releaseAssignee(ctx, ticket); err != nil {
			return err
		}
		if err := s.technicians.IncrementWorkload(ctx, tech.ID); err != nil {
			return err
		}
		return s.recordAssignment(ctx, ticket, tech, actor)
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) releaseAssignee(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.AssignedTechnicianID == nil {
		return nil
	}
	err := s.technicians.DecrementWorkload(ctx, *ticket.AssignedTechnicianID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

// RecordDecision applies the technical reviewer's verdict. Approval routes
// the ticket onward by the customer's account status; rejection terminates it.
func (s *TicketService) RecordDecision(ctx context.Context, ticketID string, decision domain.TechnicalDecision, notes, actor string) (*domain.Ticket, error) {
	if decision != domain.DecisionApproved && decision != domain.DecisionRejected {
		return nil, apperrors.NewValidationError("decision must be approved or rejected", nil)
	}
	var ticket *domain.Ticket
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.getTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if !ticket.InReview() {
			return apperrors.NewConflict("ticket already reviewed", map[string]any{
				"status": ticket.Status,
			})
		}

		now := s.now()
		oldStatus := ticket.Status
		ticket.TechnicalDecision = decision
		ticket.TechnicalReviewedAt = &now
		if notes != "" {
			ticket.TechnicalNotes = &notes
		}

		if err := s.releaseAssignee(ctx, ticket); err != nil {
			return err
		}

		if decision == domain.DecisionRejected {
			ticket.Status = domain.TicketStatusRejected
			if err := s.tickets.Update(ctx, ticket); err != nil {
				return err
			}
			return s.recordChange(ctx, ticket.ID, &oldStatus, ticket.Status, actor, notes)
		}

		ticket.Status = domain.TicketStatusApproved
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
		if err := s.recordChange(ctx, ticket.ID, &oldStatus, ticket.Status, actor, notes); err != nil {
			return err
		}
		return s.routeToCompensation(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventDecisionRecorded,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload:  events.DecisionRecordedPayload{Decision: decision, Notes: notes},
	})
	return ticket, nil
}

// routeToCompensation picks refund for account holders and replacement for
// everyone else, then parks the ticket with the owning team.
func (s *TicketService) routeToCompensation(ctx context.Context, ticket *domain.Ticket) error {
	customer, err := s.customers.GetByID(ctx, ticket.CustomerID)
	if err != nil {
		return err
	}

	oldStatus := ticket.Status
	var compensation domain.CompensationType
	if customer.HasAccount {
		compensation = domain.CompensationRefund
		ticket.Status = domain.TicketStatusPendingFinance
	} else {
		compensation = domain.CompensationReplacement
		ticket.Status = domain.TicketStatusPendingInventory
	}
	ticket.CompensationType = &compensation

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return err
	}
	return s.recordChange(ctx, ticket.ID, &oldStatus, ticket.Status, domain.ActorSystem,
		"compensation routed: "+string(compensation))
}

// ProcessFinanceApproval records the refund sales order.
func (s *TicketService) ProcessFinanceApproval(ctx context.Context, ticketID, salesOrderNumber string) (*domain.Ticket, error) {
	return s.advance(ctx, ticketID, domain.TicketStatusPendingFinance, domain.TicketStatusFinanceApproved,
		domain.ActorFinanceTeam, "refund sales order "+salesOrderNumber,
		func(ticket *domain.Ticket) {
			if salesOrderNumber != "" {
				ticket.SalesOrderNumber = &salesOrderNumber
			}
		})
}

// ProcessInventoryPreparation records that the replacement is boxed.
func (s *TicketService) ProcessInventoryPreparation(ctx context.Context, ticketID, tracking string) (*domain.Ticket, error) {
	return s.advance(ctx, ticketID, domain.TicketStatusPendingInventory, domain.TicketStatusInventoryPrepared,
		domain.ActorInventoryTeam, "replacement prepared",
		func(ticket *domain.Ticket) {
			if tracking != "" {
				ticket.ReplacementTrack = &tracking
			}
		})
}

// StartDelivery moves a prepared replacement into transit.
func (s *TicketService) StartDelivery(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.advance(ctx, ticketID, domain.TicketStatusInventoryPrepared, domain.TicketStatusInDelivery,
		domain.ActorInventoryTeam, "out for delivery", nil)
}

// Cancel terminates a ticket still in review.
func (s *TicketService) Cancel(ctx context.Context, ticketID, actor, reason string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.getTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if !ticket.InReview() {
			return apperrors.NewConflict("only tickets in review can be cancelled", map[string]any{
				"status": ticket.Status,
			})
		}
		if err := s.releaseAssignee(ctx, ticket); err != nil {
			return err
		}
		oldStatus := ticket.Status
		ticket.Status = domain.TicketStatusCancelled
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
		return s.recordChange(ctx, ticket.ID, &oldStatus, ticket.Status, actor, reason)
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// Complete closes out a fulfilled ticket.
func (s *TicketService) Complete(ctx context.Context, ticketID, actor string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.getTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		switch ticket.Status {
		case domain.TicketStatusFinanceApproved, domain.TicketStatusInventoryPrepared, domain.TicketStatusInDelivery:
		default:
			return apperrors.NewConflict("ticket cannot be completed in current status", map[string]any{
				"status": ticket.Status,
			})
		}
		now := s.now()
		oldStatus := ticket.Status
		ticket.Status = domain.TicketStatusCompleted
		ticket.CompletedAt = &now
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
		return s.recordChange(ctx, ticket.ID, &oldStatus, ticket.Status, actor, "compensation delivered")
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) advance(ctx context.Context, ticketID string, from, to domain.TicketStatus, actor, reason string, mutate func(*domain.Ticket)) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.getTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status != from {
			return apperrors.NewConflict("invalid status transition", map[string]any{
				"status":   ticket.Status,
				"expected": from,
			})
		}
		oldStatus := ticket.Status
		ticket.Status = to
		if mutate != nil {
			mutate(ticket)
		}
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
		return s.recordChange(ctx, ticket.ID, &oldStatus, to, actor, reason)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload:  events.TicketStatusChangedPayload{OldStatus: from, NewStatus: to, Reason: reason},
	})
	return ticket, nil
}

// GetByID fetches one ticket.
func (s *TicketService) GetByID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.getTicket(ctx, ticketID)
}

// GetByNumber fetches one ticket by its customer-facing number.
func (s *TicketService) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_number": number})
		}
		return nil, err
	}
	return ticket, nil
}

// ListByCustomer returns a customer's most recent tickets.
func (s *TicketService) ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.tickets.ListByCustomer(ctx, customerID, limit)
}

// ListByStatus returns tickets in the given states.
func (s *TicketService) ListByStatus(ctx context.Context, statuses []domain.TicketStatus) ([]domain.Ticket, error) {
	return s.tickets.ListByStatus(ctx, statuses)
}

// ListByTechnician returns a technician's open review queue.
func (s *TicketService) ListByTechnician(ctx context.Context, technicianID string) ([]domain.Ticket, error) {
	if _, err := s.technicians.GetByID(ctx, technicianID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"technician_id": technicianID})
		}
		return nil, err
	}
	return s.tickets.ListByTechnician(ctx, technicianID, []domain.TicketStatus{
		domain.TicketStatusPendingReview,
		domain.TicketStatusUnderReview,
	})
}

// History returns the audit trail for a ticket.
func (s *TicketService) History(ctx context.Context, ticketID string) ([]domain.TicketStatusHistory, error) {
	if _, err := s.getTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.history.ListByTicket(ctx, ticketID)
}

// Overdue lists tickets stuck in review for longer than the given number of
// days.
func (s *TicketService) Overdue(ctx context.Context, days int) ([]domain.Ticket, error) {
	if days <= 0 {
		days = 2
	}
	cutoff := s.now().AddDate(0, 0, -days)
	return s.tickets.ListInReviewBefore(ctx, cutoff)
}

// Statistics aggregates dashboard counters over the trailing week.
func (s *TicketService) Statistics(ctx context.Context) (repository.TicketStats, error) {
	since := s.now().AddDate(0, 0, -7)
	return s.tickets.Stats(ctx, since)
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) recordChange(ctx context.Context, ticketID string, oldStatus *domain.TicketStatus, newStatus domain.TicketStatus, actor, reason string) error {
	entry := &domain.TicketStatusHistory{
		TicketID:  ticketID,
		OldStatus: oldStatus,
		NewStatus: &newStatus,
		ChangedBy: actor,
		Reason:    reason,
	}
	return s.history.Create(ctx, entry)
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
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
