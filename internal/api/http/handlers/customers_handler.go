package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/compensation-agent/internal/api/dto"
	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/repository"
	"github.com/spec-kit/compensation-agent/internal/service"
	apperrors "github.com/spec-kit/compensation-agent/pkg/util"
)

// CustomersHandler exposes customer lookups for the ops console.
type CustomersHandler struct {
	customers repository.CustomerRepository
	tickets   *service.TicketService
}

// NewCustomersHandler constructs the handler.
func NewCustomersHandler(customers repository.CustomerRepository, tickets *service.TicketService) *CustomersHandler {
	return &CustomersHandler{customers: customers, tickets: tickets}
}

// Get GET /customers/:id. Accepts either the row id or a phone number.
func (h *CustomersHandler) Get(c *fiber.Ctx) error {
	customer, err := h.resolve(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCustomerResponse(customer)})
}

// Tickets GET /customers/:id/tickets.
func (h *CustomersHandler) Tickets(c *fiber.Ctx) error {
	customer, err := h.resolve(c)
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 20)
	tickets, err := h.tickets.ListByCustomer(c.Context(), customer.ID, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

func (h *CustomersHandler) resolve(c *fiber.Ctx) (*domain.Customer, error) {
	id := c.Params("id")
	if id == "" {
		return nil, apperrors.NewValidationError("customer id required", nil)
	}
	customer, err := h.customers.GetByID(c.Context(), id)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	customer, err = h.customers.GetByPhone(c.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"customer": id})
		}
		return nil, err
	}
	return customer, nil
}
