package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compensation-agent/internal/api/dto"
	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/service"
	apperrors "github.com/spec-kit/compensation-agent/pkg/util"
)

// ChatHandler exposes the orchestrator directly, bypassing the webhook
// transport. Used by the dev console and operator tooling.
type ChatHandler struct {
	workflow *service.WorkflowService
}

// NewChatHandler constructs the handler.
func NewChatHandler(workflow *service.WorkflowService) *ChatHandler {
	return &ChatHandler{workflow: workflow}
}

// Send POST /chat.
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.SenderID == "" {
		return apperrors.NewValidationError("sender_id required", nil)
	}
	if req.Text == "" && req.MediaRef == nil {
		return apperrors.NewValidationError("empty message", nil)
	}

	msg := service.IncomingMessage{
		SenderID:    req.SenderID,
		Text:        req.Text,
		MessageType: domain.MessageType(req.MessageType),
		MediaRef:    req.MediaRef,
		DisplayName: req.DisplayName,
	}
	reply, err := h.workflow.HandleMessage(c.Context(), msg)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ChatResponse{Reply: reply}})
}

// History GET /customers/:id/messages.
func (h *ChatHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	messages, err := h.workflow.ListHistory(c.Context(), c.Params("id"), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMessageResponses(messages)})
}
