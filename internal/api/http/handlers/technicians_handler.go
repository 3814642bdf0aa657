package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/compensation-agent/internal/api/dto"
	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/repository"
	"github.com/spec-kit/compensation-agent/internal/service"
	apperrors "github.com/spec-kit/compensation-agent/pkg/util"
)

const defaultMaxWorkload = 10

// TechniciansHandler manages the reviewer roster.
type TechniciansHandler struct {
	technicians repository.TechnicianRepository
	tickets     *service.TicketService
}

// NewTechniciansHandler constructs the handler.
func NewTechniciansHandler(technicians repository.TechnicianRepository, tickets *service.TicketService) *TechniciansHandler {
	return &TechniciansHandler{technicians: technicians, tickets: tickets}
}

// Create POST /technicians.
func (h *TechniciansHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.EmployeeID == "" || req.Name == "" {
		return apperrors.NewValidationError("employee_id and name required", nil)
	}
	if req.MaxWorkload <= 0 {
		req.MaxWorkload = defaultMaxWorkload
	}

	tech := &domain.Technician{
		EmployeeID:     req.EmployeeID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		Active:         true,
		MaxLoad:        req.MaxWorkload,
	}
	if err := h.technicians.Create(c.Context(), tech); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.NewConflict("employee_id taken", map[string]any{"employee_id": req.EmployeeID})
		}
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTechnicianResponse(tech)})
}

// List GET /technicians?active=true.
func (h *TechniciansHandler) List(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active", false)
	list, err := h.technicians.List(c.Context(), activeOnly)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTechnicianResponses(list)})
}

// Tickets GET /technicians/:id/tickets returns the open review queue.
func (h *TechniciansHandler) Tickets(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListByTechnician(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// Update PATCH /technicians/:id.
func (h *TechniciansHandler) Update(c *fiber.Ctx) error {
	tech, err := h.technicians.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("technician", map[string]any{"technician_id": c.Params("id")})
		}
		return err
	}

	var req dto.UpdateTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Active != nil {
		tech.Active = *req.Active
	}
	if req.MaxWorkload != nil {
		if *req.MaxWorkload <= 0 {
			return apperrors.NewValidationError("max_workload must be positive", nil)
		}
		tech.MaxLoad = *req.MaxWorkload
	}
	if err := h.technicians.Update(c.Context(), tech); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTechnicianResponse(tech)})
}
