package dto

import (
	"time"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

// ChatRequest is a direct (non-webhook) inbound message, used by the dev
// console and tests.
type ChatRequest struct {
	SenderID    string  `json:"sender_id"`
	Text        string  `json:"text"`
	MessageType string  `json:"message_type,omitempty"`
	MediaRef    *string `json:"media_ref,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
}

// ChatResponse carries the orchestrator reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// MessageResponse is one stored conversation history row.
type MessageResponse struct {
	ID          string    `json:"id"`
	Direction   string    `json:"direction"`
	MessageType string    `json:"message_type"`
	Content     string    `json:"content"`
	Intent      *string   `json:"intent,omitempty"`
	TicketID    *string   `json:"ticket_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewMessageResponses maps history rows.
func NewMessageResponses(messages []domain.ConversationMessage) []MessageResponse {
	result := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		result = append(result, MessageResponse{
			ID:          msg.ID,
			Direction:   string(msg.Direction),
			MessageType: string(msg.MessageType),
			Content:     msg.Content,
			Intent:      msg.Intent,
			TicketID:    msg.TicketID,
			CreatedAt:   msg.CreatedAt,
		})
	}
	return result
}
