// Package whatsapp integrates with the WhatsApp Cloud API: an outbound
// text sender and the inbound webhook payload model.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/compensation-agent/internal/config"
	apperrors "github.com/spec-kit/compensation-agent/pkg/util"
)

// Sender delivers outbound messages to a customer phone number.
type Sender interface {
	SendText(ctx context.Context, toPhone, body string) error
}

// Client calls the WhatsApp Cloud API.
type Client struct {
	apiURL  string
	token   string
	phoneID string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a Client from provider config.
func NewClient(cfg config.WhatsAppConfig, logger *zap.Logger) *Client {
	return &Client{
		apiURL:  cfg.APIURL,
		token:   cfg.AccessToken,
		phoneID: cfg.PhoneID,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

// SendText posts a text message to the Cloud API.
func (c *Client) SendText(ctx context.Context, toPhone, body string) error {
	payload := textPayload{
		MessagingProduct: "whatsapp",
		To:               toPhone,
		Type:             "text",
		Text:             textBody{Body: body},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.apiURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewUnavailable("whatsapp send failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("whatsapp send rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail))
		return apperrors.NewUnavailable(fmt.Sprintf("whatsapp send status %d", resp.StatusCode), nil)
	}
	return nil
}

type readReceipt struct {
	MessagingProduct string `json:"messaging_product"`
	Status           string `json:"status"`
	MessageID        string `json:"message_id"`
}

// MarkRead sends a read receipt for an inbound message. Failures are not
// actionable beyond logging; the conversation flow does not depend on them.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	raw, err := json.Marshal(readReceipt{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.apiURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewUnavailable("whatsapp read receipt failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return apperrors.NewUnavailable(fmt.Sprintf("whatsapp read receipt status %d", resp.StatusCode), nil)
	}
	return nil
}

// LoggingSender logs outbound messages instead of delivering them. Used
// when no provider credentials are configured.
type LoggingSender struct {
	Logger *zap.Logger
}

func (s *LoggingSender) SendText(ctx context.Context, toPhone, body string) error {
	s.Logger.Info("outbound message", zap.String("to", toPhone), zap.String("body", body))
	return nil
}
