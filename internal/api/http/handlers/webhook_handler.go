package handlers

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/compensation-agent/internal/domain"
	"github.com/spec-kit/compensation-agent/internal/service"
	"github.com/spec-kit/compensation-agent/internal/transport/whatsapp"
)

// WebhookHandler receives WhatsApp Cloud API callbacks.
type WebhookHandler struct {
	workflow    *service.WorkflowService
	sender      whatsapp.Sender
	verifyToken string
	logger      *zap.Logger
}

// NewWebhookHandler constructs the handler.
func NewWebhookHandler(workflow *service.WorkflowService, sender whatsapp.Sender, verifyToken string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{workflow: workflow, sender: sender, verifyToken: verifyToken, logger: logger}
}

// Verify GET /webhook handles the provider's subscription handshake.
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		return c.SendString(challenge)
	}
	return c.SendStatus(fiber.StatusForbidden)
}

// Receive POST /webhook processes inbound messages. The provider retries on
// non-2xx, so per-message failures are logged but the request still succeeds.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var payload whatsapp.WebhookPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		h.logger.Warn("unparseable webhook payload", zap.Error(err))
		return c.SendStatus(fiber.StatusOK)
	}

	reader, canMarkRead := h.sender.(interface {
		MarkRead(ctx context.Context, messageID string) error
	})

	for _, inbound := range payload.Flatten() {
		if canMarkRead && inbound.ProviderID != "" {
			if err := reader.MarkRead(c.Context(), inbound.ProviderID); err != nil {
				h.logger.Debug("read receipt failed", zap.Error(err))
			}
		}

		msg := service.IncomingMessage{
			SenderID:    inbound.FromPhone,
			ProviderID:  inbound.ProviderID,
			Text:        inbound.Text,
			MessageType: messageType(inbound.Type),
			DisplayName: inbound.ProfileName,
		}
		if inbound.MediaID != "" {
			mediaRef := inbound.MediaID
			msg.MediaRef = &mediaRef
		}

		reply, err := h.workflow.HandleMessage(c.Context(), msg)
		if err != nil {
			h.logger.Error("message handling failed",
				zap.String("sender", inbound.FromPhone),
				zap.Error(err))
			continue
		}
		if reply == "" {
			continue
		}
		if err := h.sender.SendText(c.Context(), inbound.FromPhone, reply); err != nil {
			h.logger.Warn("reply delivery failed",
				zap.String("sender", inbound.FromPhone),
				zap.Error(err))
		}
	}
	return c.SendString("EVENT_RECEIVED")
}

func messageType(providerType string) domain.MessageType {
	switch providerType {
	case "image":
		return domain.MessageTypeImage
	case "document":
		return domain.MessageTypeDocument
	default:
		return domain.MessageTypeText
	}
}
