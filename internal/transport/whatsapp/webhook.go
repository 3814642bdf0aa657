package whatsapp

// WebhookPayload mirrors the Cloud API webhook envelope.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry groups changes for one account.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change carries one value block.
type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value holds contacts and messages for a change.
type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Contacts         []Contact `json:"contacts"`
	Messages         []Message `json:"messages"`
}

// Contact identifies the sender.
type Contact struct {
	WaID    string  `json:"wa_id"`
	Profile Profile `json:"profile"`
}

// Profile carries the sender display name.
type Profile struct {
	Name string `json:"name"`
}

// Message is one inbound message.
type Message struct {
	ID        string     `json:"id"`
	From      string     `json:"from"`
	Timestamp string     `json:"timestamp"`
	Type      string     `json:"type"`
	Text      *TextValue `json:"text,omitempty"`
	Image     *Media     `json:"image,omitempty"`
	Document  *Media     `json:"document,omitempty"`
}

// TextValue is the text body.
type TextValue struct {
	Body string `json:"body"`
}

// Media references uploaded media by provider ID.
type Media struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption,omitempty"`
}

// InboundMessage is the flattened form handed to the workflow.
type InboundMessage struct {
	ProviderID  string
	FromPhone   string
	ProfileName string
	Type        string
	Text        string
	MediaID     string
}

// Flatten extracts inbound messages from the webhook envelope.
func (p *WebhookPayload) Flatten() []InboundMessage {
	var result []InboundMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			names := make(map[string]string, len(change.Value.Contacts))
			for _, contact := range change.Value.Contacts {
				names[contact.WaID] = contact.Profile.Name
			}
			for _, msg := range change.Value.Messages {
				inbound := InboundMessage{
					ProviderID:  msg.ID,
					FromPhone:   msg.From,
					ProfileName: names[msg.From],
					Type:        msg.Type,
				}
				switch msg.Type {
				case "text":
					if msg.Text != nil {
						inbound.Text = msg.Text.Body
					}
				case "image":
					if msg.Image != nil {
						inbound.MediaID = msg.Image.ID
						inbound.Text = msg.Image.Caption
					}
				case "document":
					if msg.Document != nil {
						inbound.MediaID = msg.Document.ID
						inbound.Text = msg.Document.Caption
					}
				}
				result = append(result, inbound)
			}
		}
	}
	return result
}
