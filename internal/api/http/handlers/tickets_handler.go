package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compensation-agent/internal/api/dto"
	"github.com/spec-kit/compensation-agent/internal/auth"
	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/service"
	apperrors "github.com/spec-kit/compensation-agent/pkg/util"
)

// TicketsHandler exposes ticket lifecycle management endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// List GET /tickets?status=a,b.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	raw := c.Query("status")
	var statuses []domain.TicketStatus
	if raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, err := domain.ParseTicketStatus(strings.TrimSpace(part))
			if err != nil {
				return apperrors.NewValidationError("unknown status "+part, nil)
			}
			statuses = append(statuses, status)
		}
	}
	tickets, err := h.service.ListByStatus(c.Context(), statuses)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// Get GET /tickets/:id. Accepts either the row id or a customer-facing
// ticket number.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.resolve(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// History GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	ticket, err := h.resolve(c)
	if err != nil {
		return err
	}
	entries, err := h.service.History(c.Context(), ticket.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewHistoryResponses(entries)})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	ticket, err := h.resolve(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID == "" {
		return apperrors.NewValidationError("technician_id required", nil)
	}
	updated, err := h.service.Assign(c.Context(), ticket.ID, req.TechnicianID, actorLabel(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(updated)})
}

// StartReview POST /tickets/:id/review.
func (h *TicketsHandler) StartReview(c *fiber.Ctx) error {
	ticket, err := h.resolve(c)
	if err != nil {
		return err
	}
	updated, err := h.service.StartReview(c.Context(), ticket.ID, actorLabel(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(updated)})
}

// Decide POST /tickets/:id/decision.
func (h *TicketsHandler) Decide(c *fiber.Ctx) error {
	ticket, err := h.resolve(c)
	if err != nil {
		return err
	}
	var req dto.DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	decision, err := domain.ParseTechnicalDecision(req.Decision)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	updated, err := h.service.RecordDecision(c.Context(), ticket.ID, decision, req.Notes, actorLabel(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(updated)})
}

// FinanceApproval POST /tickets/:id/finance-approval.
func (h *TicketsHandler) FinanceApproval(c *fiber.Ctx) error {
	ticket, err := h.resolve(c)
	if err != nil {
		return err
	}
	var req dto.FinanceApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.service.ProcessFinanceApproval(c.Context(), ticket.ID, req.SalesOrderNumber)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(updated)})
}

// InventoryPrepared POST /tickets/:id/inventory-prepared.
func (h *TicketsHandler) InventoryPrepared(c *fiber.Ctx) error {
	ticket, err := h.resolve(c)
	if err != nil {
		return err
	}
	var req dto.InventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.service.ProcessInventoryPreparation(c.Context(), ticket.ID, req.Tracking)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(updated)})
}

// StartDelivery POST /tickets/:id/delivery.
func (h *TicketsHandler) StartDelivery(c *fiber.Ctx) error {
	ticket, err := h.resolve(c)
	if err != nil {
		return err
	}
	updated, err := h.service.StartDelivery(c.Context(), ticket.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(updated)})
}

// Complete POST /tickets/:id/complete.
func (h *TicketsHandler) Complete(c *fiber.Ctx) error {
	ticket, err := h.resolve(c)
	if err != nil {
		return err
	}
	updated, err := h.service.Complete(c.Context(), ticket.ID, actorLabel(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(updated)})
}

// Cancel POST /tickets/:id/cancel.
func (h *TicketsHandler) Cancel(c *fiber.Ctx) error {
	ticket, err := h.resolve(c)
	if err != nil {
		return err
	}
	var req dto.CancelRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.service.Cancel(c.Context(), ticket.ID, actorLabel(c), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(updated)})
}

// Overdue GET /tickets/overdue?days=N.
func (h *TicketsHandler) Overdue(c *fiber.Ctx) error {
	days := c.QueryInt("days", 2)
	tickets, err := h.service.Overdue(c.Context(), days)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// Stats GET /stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Statistics(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStatsResponse(stats)})
}

func (h *TicketsHandler) resolve(c *fiber.Ctx) (*domain.Ticket, error) {
	id := c.Params("id")
	if id == "" {
		return nil, apperrors.NewValidationError("ticket id required", nil)
	}
	if strings.HasPrefix(id, "TKT-") {
		return h.service.GetByNumber(c.Context(), id)
	}
	return h.service.GetByID(c.Context(), id)
}

func actorLabel(c *fiber.Ctx) string {
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.Staff != nil {
		if principal.Staff.FullName != "" {
			return principal.Staff.FullName
		}
		return principal.Staff.Username
	}
	return domain.ActorSystem
}
