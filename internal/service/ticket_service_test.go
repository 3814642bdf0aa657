package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/events"
	"github.com/spec-kit/compensation-agent/internal/repository"
	"github.com/spec-kit/compensation-agent/internal/repository/memory"
)

type ticketFixture struct {
	service     *TicketService
	tickets     repository.TicketRepository
	customers   repository.CustomerRepository
	technicians repository.TechnicianRepository
	history     repository.TicketHistoryRepository
	dispatcher  events.Dispatcher
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	f := &ticketFixture{
		tickets:     memory.NewTicketStore(),
		customers:   memory.NewCustomerStore(),
		technicians: memory.NewTechnicianStore(),
		history:     memory.NewTicketHistoryStore(),
		dispatcher:  events.NewInMemoryDispatcher(),
	}
	f.service = NewTicketService(TicketDependencies{
		TicketRepo:     f.tickets,
		CustomerRepo:   f.customers,
		TechnicianRepo: f.technicians,
		HistoryRepo:    f.history,
		Tx:             memory.NewTxManager(),
		Dispatcher:     f.dispatcher,
	})
	return f
}

func (f *ticketFixture) addCustomer(t *testing.T, hasAccount bool) *domain.Customer {
	t.Helper()
	customer := &domain.Customer{
		PhoneNumber: "01012345678",
		HasAccount:  hasAccount,
		Language:    domain.LanguageArabic,
	}
	require.NoError(t, f.customers.Create(context.Background(), customer))
	return customer
}

func (f *ticketFixture) addTechnician(t *testing.T, employeeID string, maxLoad int) *domain.Technician {
	t.Helper()
	tech := &domain.Technician{
		EmployeeID: employeeID,
		Name:       "Tech " + employeeID,
		Email:      employeeID + "@example.com",
		Active:     true,
		MaxLoad:    maxLoad,
	}
	require.NoError(t, f.technicians.Create(context.Background(), tech))
	return tech
}

func (f *ticketFixture) createTicket(t *testing.T, customerID string) *domain.Ticket {
	t.Helper()
	ticket, err := f.service.Create(context.Background(), TicketCreateInput{
		CustomerID:       customerID,
		ProductName:      "White paint 10L",
		IssueDescription: "color is damaged",
		IssueCategory:    domain.CategoryQuality,
	})
	require.NoError(t, err)
	return ticket
}

func TestTicketCreateDefaults(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, false)

	ticket := f.createTicket(t, customer.ID)

	assert.Equal(t, domain.TicketStatusPendingReview, ticket.Status)
	assert.Equal(t, 1, ticket.Quantity)
	assert.Equal(t, domain.TicketPriorityNormal, ticket.Priority)
	assert.Equal(t, domain.DecisionPending, ticket.TechnicalDecision)
	assert.Regexp(t, regexp.MustCompile(`^TKT-\d{4}-\d{5}$`), ticket.Number)
	assert.Nil(t, ticket.AssignedTechnicianID)

	entries, err := f.service.History(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].OldStatus)
	require.NotNil(t, entries[0].NewStatus)
	assert.Equal(t, domain.TicketStatusPendingReview, *entries[0].NewStatus)
	assert.Equal(t, domain.ActorSystem, entries[0].ChangedBy)
}

func TestTicketCreateRequiresCustomer(t *testing.T) {
	f := newTicketFixture(t)

	_, err := f.service.Create(context.Background(), TicketCreateInput{ProductName: "paint"})
	assert.Error(t, err)
}

func TestTicketCreateAutoAssignsLeastLoaded(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, false)
	busy := f.addTechnician(t, "T-001", 5)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.technicians.IncrementWorkload(context.Background(), busy.ID))
	}
	idle := f.addTechnician(t, "T-002", 5)

	ticket := f.createTicket(t, customer.ID)

	require.NotNil(t, ticket.AssignedTechnicianID)
	assert.Equal(t, idle.ID, *ticket.AssignedTechnicianID)

	updated, err := f.technicians.GetByID(context.Background(), idle.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CurrentLoad)

	// Assignment is not a status transition; its audit row carries no
	// status values.
	entries, err := f.service.History(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[1].OldStatus)
	assert.Nil(t, entries[1].NewStatus)
}

func TestTicketCreateLeavesUnassignedWhenNoCapacity(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, false)
	full := f.addTechnician(t, "T-001", 1)
	require.NoError(t, f.technicians.IncrementWorkload(context.Background(), full.ID))

	ticket := f.createTicket(t, customer.ID)
	assert.Nil(t, ticket.AssignedTechnicianID)
	assert.Equal(t, domain.TicketStatusPendingReview, ticket.Status)

	// The full technician's counter never moved past the cap.
	unchanged, err := f.technicians.GetByID(context.Background(), full.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unchanged.CurrentLoad)
}

func TestAutoAssignNeverExceedsCapacity(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, false)
	tech := f.addTechnician(t, "T-001", 2)

	first := f.createTicket(t, customer.ID)
	second := f.createTicket(t, customer.ID)
	third := f.createTicket(t, customer.ID)

	require.NotNil(t, first.AssignedTechnicianID)
	require.NotNil(t, second.AssignedTechnicianID)
	assert.Nil(t, third.AssignedTechnicianID, "a full technician takes no more tickets")

	loaded, err := f.technicians.GetByID(context.Background(), tech.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.CurrentLoad)
}

func TestDirectAssignOverridesCapacity(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, false)
	ticket := f.createTicket(t, customer.ID)

	full := f.addTechnician(t, "T-001", 1)
	require.NoError(t, f.technicians.IncrementWorkload(context.Background(), full.ID))

	assigned, err := f.service.Assign(context.Background(), ticket.ID, full.ID, "operator")
	require.NoError(t, err)
	assert.Equal(t, full.ID, *assigned.AssignedTechnicianID)

	overloaded, err := f.technicians.GetByID(context.Background(), full.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, overloaded.CurrentLoad)
}

func TestStartReview(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, false)
	ticket := f.createTicket(t, customer.ID)

	reviewed, err := f.service.StartReview(context.Background(), ticket.ID, "reviewer")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusUnderReview, reviewed.Status)

	_, err = f.service.StartReview(context.Background(), ticket.ID, "reviewer")
	assert.Error(t, err, "second start must conflict")
}

func TestAssignReplacesTechnicianAndReleasesLoad(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, false)
	first := f.addTechnician(t, "T-001", 5)
	ticket := f.createTicket(t, customer.ID)
	require.NotNil(t, ticket.AssignedTechnicianID)
	require.Equal(t, first.ID, *ticket.AssignedTechnicianID)

	second := f.addTechnician(t, "T-002", 5)
	reassigned, err := f.service.Assign(context.Background(), ticket.ID, second.ID, "operator")
	require.NoError(t, err)
	assert.Equal(t, second.ID, *reassigned.AssignedTechnicianID)

	released, err := f.technicians.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, released.CurrentLoad)

	loaded, err := f.technicians.GetByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.CurrentLoad)
}

func TestAssignRejectsInactiveTechnician(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, false)
	ticket := f.createTicket(t, customer.ID)

	inactive := f.addTechnician(t, "T-009", 5)
	inactive.Active = false
	require.NoError(t, f.technicians.Update(context.Background(), inactive))

	_, err := f.service.Assign(context.Background(), ticket.ID, inactive.ID, "operator")
	assert.Error(t, err)
}

func TestRecordDecisionApprovedRoutesRefundForAccountHolder(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, true)
	ticket := f.createTicket(t, customer.ID)

	decided, err := f.service.RecordDecision(context.Background(), ticket.ID, domain.DecisionApproved, "valid complaint", "reviewer")
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusPendingFinance, decided.Status)
	require.NotNil(t, decided.CompensationType)
	assert.Equal(t, domain.CompensationRefund, *decided.CompensationType)
	assert.Equal(t, domain.DecisionApproved, decided.TechnicalDecision)
	assert.NotNil(t, decided.TechnicalReviewedAt)

	// pending_review -> approved -> pending_finance, plus the creation row.
	entries, err := f.service.History(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.TicketStatusApproved, *entries[1].NewStatus)
	assert.Equal(t, domain.TicketStatusPendingFinance, *entries[2].NewStatus)
	assert.Equal(t, domain.ActorSystem, entries[2].ChangedBy)
}

func TestRecordDecisionApprovedRoutesReplacementWithoutAccount(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, false)
	ticket := f.createTicket(t, customer.ID)

	decided, err := f.service.RecordDecision(context.Background(), ticket.ID, domain.DecisionApproved, "", "reviewer")
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusPendingInventory, decided.Status)
	require.NotNil(t, decided.CompensationType)
	assert.Equal(t, domain.CompensationReplacement, *decided.CompensationType)
	assert.Nil(t, decided.TechnicalNotes)
}

func TestRecordDecisionRejected(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, true)
	tech := f.addTechnician(t, "T-001", 5)
	ticket := f.createTicket(t, customer.ID)

	decided, err := f.service.RecordDecision(context.Background(), ticket.ID, domain.DecisionRejected, "out of warranty", "reviewer")
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusRejected, decided.Status)
	assert.Nil(t, decided.CompensationType)
	require.NotNil(t, decided.TechnicalNotes)
	assert.Equal(t, "out of warranty", *decided.TechnicalNotes)

	released, err := f.technicians.GetByID(context.Background(), tech.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, released.CurrentLoad)

	_, err = f.service.RecordDecision(context.Background(), ticket.ID, domain.DecisionApproved, "", "reviewer")
	assert.Error(t, err, "terminal tickets take no further decisions")
}

func TestRecordDecisionValidatesVerdict(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, true)
	ticket := f.createTicket(t, customer.ID)

	_, err := f.service.RecordDecision(context.Background(), ticket.ID, domain.DecisionPending, "", "reviewer")
	assert.Error(t, err)
}

func TestRecordDecisionPublishesEvent(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, true)
	ticket := f.createTicket(t, customer.ID)

	var got []events.Event
	f.dispatcher.Subscribe(events.EventDecisionRecorded, func(ctx context.Context, event events.Event) error {
		got = append(got, event)
		return nil
	})

	_, err := f.service.RecordDecision(context.Background(), ticket.ID, domain.DecisionApproved, "ok", "reviewer")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, ticket.ID, got[0].TicketID)
	payload, ok := got[0].Payload.(events.DecisionRecordedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.DecisionApproved, payload.Decision)
}

func TestRefundFulfillmentChain(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, true)
	ticket := f.createTicket(t, customer.ID)
	_, err := f.service.RecordDecision(context.Background(), ticket.ID, domain.DecisionApproved, "", "reviewer")
	require.NoError(t, err)

	approved, err := f.service.ProcessFinanceApproval(context.Background(), ticket.ID, "SO-556677")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusFinanceApproved, approved.Status)
	require.NotNil(t, approved.SalesOrderNumber)
	assert.Equal(t, "SO-556677", *approved.SalesOrderNumber)

	// Refund tickets never pass through the inventory branch.
	_, err = f.service.ProcessInventoryPreparation(context.Background(), ticket.ID, "TRK-1")
	assert.Error(t, err)

	done, err := f.service.Complete(context.Background(), ticket.ID, "operator")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)
}

func TestReplacementFulfillmentChain(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, false)
	ticket := f.createTicket(t, customer.ID)
	_, err := f.service.RecordDecision(context.Background(), ticket.ID, domain.DecisionApproved, "", "reviewer")
	require.NoError(t, err)

	prepared, err := f.service.ProcessInventoryPreparation(context.Background(), ticket.ID, "TRK-889900")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInventoryPrepared, prepared.Status)
	require.NotNil(t, prepared.ReplacementTrack)
	assert.Equal(t, "TRK-889900", *prepared.ReplacementTrack)

	inTransit, err := f.service.StartDelivery(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInDelivery, inTransit.Status)

	done, err := f.service.Complete(context.Background(), ticket.ID, "operator")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCompleted, done.Status)
}

func TestCompleteRejectedFromReviewStates(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, true)
	ticket := f.createTicket(t, customer.ID)

	_, err := f.service.Complete(context.Background(), ticket.ID, "operator")
	assert.Error(t, err)
}

func TestCancelDuringReview(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, false)
	tech := f.addTechnician(t, "T-001", 5)
	ticket := f.createTicket(t, customer.ID)

	cancelled, err := f.service.Cancel(context.Background(), ticket.ID, "customer", "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCancelled, cancelled.Status)

	released, err := f.technicians.GetByID(context.Background(), tech.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, released.CurrentLoad)

	_, err = f.service.Cancel(context.Background(), ticket.ID, "customer", "again")
	assert.Error(t, err, "cancel is only valid while in review")
}

func TestGetByNumberRoundTrip(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, false)
	ticket := f.createTicket(t, customer.ID)

	found, err := f.service.GetByNumber(context.Background(), ticket.Number)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, found.ID)

	_, err = f.service.GetByNumber(context.Background(), "TKT-1999-00000")
	assert.Error(t, err)
}

func TestOverdueUsesCutoff(t *testing.T) {
	f := newTicketFixture(t)
	customer := f.addCustomer(t, false)

	old := f.createTicket(t, customer.ID)
	fresh := f.createTicket(t, customer.ID)

	stale, err := f.tickets.GetByID(context.Background(), old.ID)
	require.NoError(t, err)
	stale.CreatedAt = time.Now().AddDate(0, 0, -3)
	require.NoError(t, f.tickets.Update(context.Background(), stale))

	overdue, err := f.service.Overdue(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, old.ID, overdue[0].ID)
	assert.NotEqual(t, fresh.ID, overdue[0].ID)
}
