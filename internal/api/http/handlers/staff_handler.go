package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compensation-agent/internal/api/dto"
	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/service"
	apperrors "github.com/spec-kit/compensation-agent/pkg/util"
)

// StaffHandler serves staff authentication endpoints.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler constructs the handler.
func NewStaffHandler(staff *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// Login POST /auth/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	result, err := h.staff.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StaffLoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		StaffID:   result.Staff.ID,
		Role:      string(result.Staff.Role),
	}})
}

// Register POST /staff. Admin only, enforced by routing.
func (h *StaffHandler) Register(c *fiber.Ctx) error {
	var req dto.StaffRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	staff, err := h.staff.Register(c.Context(), req.Username, req.Password, req.FullName, domain.StaffRole(req.Role))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"id":       staff.ID,
		"username": staff.Username,
		"role":     staff.Role,
	}})
}
