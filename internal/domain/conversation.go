package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ConversationStep is the orchestrator's position in the per-customer state
// machine. GREETING and AWAITING_RESPONSE are declared for storage
// compatibility; no transition targets them.
type ConversationStep string

const (
	StepIdle                   ConversationStep = "idle"
	StepGreeting               ConversationStep = "greeting"
	StepCollectingName         ConversationStep = "collecting_name"
	StepCollectingProduct      ConversationStep = "collecting_product"
	StepCollectingPurchaseDate ConversationStep = "collecting_purchase_date"
	StepCollectingQuantity     ConversationStep = "collecting_quantity"
	StepCollectingIssue        ConversationStep = "collecting_issue"
	StepCollectingPhotos       ConversationStep = "collecting_photos"
	StepConfirmingData         ConversationStep = "confirming_data"
	StepAwaitingResponse       ConversationStep = "awaiting_response"
)

// ParseStep validates a stored step value.
func ParseStep(value string) (ConversationStep, error) {
	switch ConversationStep(value) {
	case StepIdle, StepGreeting, StepCollectingName, StepCollectingProduct,
		StepCollectingPurchaseDate, StepCollectingQuantity, StepCollectingIssue,
		StepCollectingPhotos, StepConfirmingData, StepAwaitingResponse:
		return ConversationStep(value), nil
	}
	return "", fmt.Errorf("unknown conversation step %q", value)
}

// CollectedData holds the fields gathered across collection steps. The map
// form exists only at the storage boundary.
type CollectedData struct {
	CustomerName     string
	ProductName      string
	PurchaseDate     *time.Time
	Quantity         int
	IssueDescription string
	IssueCategory    IssueCategory
	Photos           []string
}

// Empty reports whether nothing has been collected yet.
func (d CollectedData) Empty() bool {
	return d.CustomerName == "" && d.ProductName == "" && d.PurchaseDate == nil &&
		d.Quantity == 0 && d.IssueDescription == "" && d.IssueCategory == "" &&
		len(d.Photos) == 0
}

// ToMap serializes collected fields for storage.
func (d CollectedData) ToMap() map[string]any {
	out := map[string]any{}
	if d.CustomerName != "" {
		out["customer_name"] = d.CustomerName
	}
	if d.ProductName != "" {
		out["product_name"] = d.ProductName
	}
	if d.PurchaseDate != nil {
		out["purchase_date"] = d.PurchaseDate.Format("2006-01-02")
	}
	if d.Quantity != 0 {
		out["quantity"] = strconv.Itoa(d.Quantity)
	}
	if d.IssueDescription != "" {
		out["issue_description"] = d.IssueDescription
	}
	if d.IssueCategory != "" {
		out["issue_category"] = string(d.IssueCategory)
	}
	if len(d.Photos) > 0 {
		out["photos"] = strings.Join(d.Photos, ",")
	}
	return out
}

// CollectedDataFromMap deserializes stored collected fields. Unknown keys are
// ignored; malformed scalar values are dropped rather than failing the load.
func CollectedDataFromMap(raw map[string]any) CollectedData {
	var d CollectedData
	if v, ok := raw["customer_name"].(string); ok {
		d.CustomerName = v
	}
	if v, ok := raw["product_name"].(string); ok {
		d.ProductName = v
	}
	if v, ok := raw["purchase_date"].(string); ok {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			d.PurchaseDate = &t
		}
	}
	switch v := raw["quantity"].(type) {
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			d.Quantity = n
		}
	case float64:
		d.Quantity = int(v)
	}
	if v, ok := raw["issue_description"].(string); ok {
		d.IssueDescription = v
	}
	if v, ok := raw["issue_category"].(string); ok {
		d.IssueCategory = IssueCategory(v)
	}
	if v, ok := raw["photos"].(string); ok && v != "" {
		d.Photos = strings.Split(v, ",")
	}
	return d
}

// ConversationState is the single live session state per customer. Mutated
// only by the workflow orchestrator.
type ConversationState struct {
	ID              string
	CustomerID      string
	CurrentStep     ConversationStep
	CurrentTicketID *string
	Collected       CollectedData
	SessionStart    time.Time
	LastMessageAt   time.Time
	UpdatedAt       time.Time
}

// Reset returns the state to idle and clears collected data.
func (s *ConversationState) Reset(now time.Time) {
	s.CurrentStep = StepIdle
	s.CurrentTicketID = nil
	s.Collected = CollectedData{}
	s.SessionStart = now
}

// MessageDirection distinguishes inbound customer messages from replies.
type MessageDirection string

const (
	DirectionInbound  MessageDirection = "inbound"
	DirectionOutbound MessageDirection = "outbound"
)

// MessageType is the transport-level payload type.
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeDocument MessageType = "document"
)

// ConversationMessage is one stored chat history entry.
type ConversationMessage struct {
	ID          string
	ProviderID  *string
	CustomerID  string
	TicketID    *string
	Direction   MessageDirection
	MessageType MessageType
	Content     string
	MediaRef    *string
	Intent      *string
	CreatedAt   time.Time
}
