// Package templates resolves semantic message keys to customer-facing
// bilingual text. The workflow layer never builds display strings itself.
package templates

import (
	"strings"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

// Key identifies a customer-facing message.
type Key string

const (
	KeyGreeting            Key = "greeting"
	KeyAskProduct          Key = "ask_product"
	KeyAskIssue            Key = "ask_issue"
	KeyAskPhotos           Key = "ask_photos"
	KeyAskName             Key = "ask_name"
	KeyAskPurchaseDate     Key = "ask_purchase_date"
	KeyAskQuantity         Key = "ask_quantity"
	KeyConfirmData         Key = "confirm_data"
	KeyConfirmPrompt       Key = "confirm_prompt"
	KeyTicketCreated       Key = "ticket_created"
	KeyTicketStatus        Key = "ticket_status"
	KeyNoTickets           Key = "no_tickets"
	KeyUnknown             Key = "unknown"
	KeyHelp                Key = "help"
	KeyThanks              Key = "thanks"
	KeyCancelled           Key = "cancelled"
	KeyRestart             Key = "restart"
	KeyTicketRejected      Key = "ticket_rejected"
	KeyApprovedRefund      Key = "ticket_approved_refund"
	KeyApprovedReplacement Key = "ticket_approved_replacement"
	KeyReminderReview      Key = "reminder_pending_review"
	KeyReminderCustomer    Key = "reminder_awaiting_customer"
)

// Params are substituted into {placeholder} slots of the template text.
type Params map[string]string

// Resolver is the template lookup contract consumed by the workflow layer.
type Resolver interface {
	Resolve(key Key, params Params, lang domain.Language) string
}

// Catalog is the built-in static bilingual catalog.
type Catalog struct{}

// NewCatalog constructs the static resolver.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Resolve returns the template text for key in lang, falling back to Arabic
// when the language variant is missing.
func (c *Catalog) Resolve(key Key, params Params, lang domain.Language) string {
	byLang, ok := catalog[key]
	if !ok {
		return string(key)
	}
	text, ok := byLang[lang]
	if !ok {
		text = byLang[domain.LanguageArabic]
	}
	for name, value := range params {
		text = strings.ReplaceAll(text, "{"+name+"}", value)
	}
	return text
}

// StatusLabel renders a ticket status for customer display.
func StatusLabel(status domain.TicketStatus, lang domain.Language) string {
	if label, ok := statusLabels[status][lang]; ok {
		return label
	}
	return string(status)
}

var statusLabels = map[domain.TicketStatus]map[domain.Language]string{
	domain.TicketStatusPendingReview: {
		domain.LanguageArabic:  "قيد المراجعة الفنية",
		domain.LanguageEnglish: "Under technical review",
	},
	domain.TicketStatusUnderReview: {
		domain.LanguageArabic:  "قيد المراجعة الفنية",
		domain.LanguageEnglish: "Under technical review",
	},
	domain.TicketStatusRejected: {
		domain.LanguageArabic:  "مرفوضة",
		domain.LanguageEnglish: "Rejected",
	},
	domain.TicketStatusPendingFinance: {
		domain.LanguageArabic:  "قيد معالجة الاسترداد",
		domain.LanguageEnglish: "Refund in progress",
	},
	domain.TicketStatusFinanceApproved: {
		domain.LanguageArabic:  "تمت الموافقة المالية",
		domain.LanguageEnglish: "Finance approved",
	},
	domain.TicketStatusPendingInventory: {
		domain.LanguageArabic:  "قيد تجهيز البديل",
		domain.LanguageEnglish: "Replacement being prepared",
	},
	domain.TicketStatusInventoryPrepared: {
		domain.LanguageArabic:  "تم تجهيز البديل",
		domain.LanguageEnglish: "Replacement prepared",
	},
	domain.TicketStatusInDelivery: {
		domain.LanguageArabic:  "قيد التوصيل",
		domain.LanguageEnglish: "Out for delivery",
	},
	domain.TicketStatusCompleted: {
		domain.LanguageArabic:  "مكتملة",
		domain.LanguageEnglish: "Completed",
	},
	domain.TicketStatusCancelled: {
		domain.LanguageArabic:  "ملغاة",
		domain.LanguageEnglish: "Cancelled",
	},
}
