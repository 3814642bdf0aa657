// Package classifier maps free-text chat messages to intents, entities and
// language. The keyword implementation is deliberately simple; the Classifier
// interface is the seam for swapping in a real model without touching the
// workflow state machine.
package classifier

import (
	"strconv"
	"strings"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

// Intent is the classifier's label for what the customer is trying to do,
// conditioned on the current conversation step.
type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentNewComplaint Intent = "new_complaint"
	IntentCheckStatus  Intent = "check_status"
	IntentProvideInfo  Intent = "provide_info"
	IntentSendPhoto    Intent = "send_photo"
	IntentConfirmYes   Intent = "confirm_yes"
	IntentConfirmNo    Intent = "confirm_no"
	IntentSkip         Intent = "skip"
	IntentCancel       Intent = "cancel"
	IntentHelp         Intent = "help"
	IntentThanks       Intent = "thanks"
	IntentUnknown      Intent = "unknown"
)

// Entities holds structured values extracted independently of intent. At most
// one value per kind (first occurrence in the text).
type Entities struct {
	TicketNumber *string
	Phone        *string
	Date         *string
	Quantity     *int
	Email        *string
}

// Classifier is the pluggable text-understanding contract consumed by the
// workflow orchestrator. Implementations must be side-effect free.
type Classifier interface {
	Classify(text string, step domain.ConversationStep) Intent
	ExtractEntities(text string) Entities
	DetectLanguage(text string) domain.Language
	SuggestCategory(issueText string) domain.IssueCategory
}

// intentKeywords is ordered: the first matching category wins regardless of
// match length, so table order is part of the contract.
type intentKeywords struct {
	intent   Intent
	keywords []string
}

var intentTable = []intentKeywords{
	{IntentGreeting, []string{
		"hello", "hi", "hey", "good morning", "good evening",
		"السلام عليكم", "مرحبا", "اهلا", "صباح الخير", "مساء الخير", "هلا",
	}},
	{IntentNewComplaint, []string{
		"complaint", "problem", "issue", "defect", "broken", "damaged", "wrong",
		"شكوى", "مشكلة", "عطل", "خراب", "تالف", "معيب", "غلط", "مش شغال",
		"1", "one", "واحد",
	}},
	{IntentCheckStatus, []string{
		"status", "track", "follow up", "where", "check",
		"متابعة", "حالة", "تتبع", "فين", "وصلت فين",
		"2", "two", "اتنين",
	}},
	{IntentSendPhoto, []string{
		"photo", "image", "picture", "attached",
		"صورة", "صور",
	}},
	{IntentConfirmYes, yesKeywords},
	{IntentConfirmNo, noKeywords},
	{IntentSkip, skipKeywords},
	{IntentCancel, cancelKeywords},
	{IntentHelp, []string{
		"help", "assist", "support", "how",
		"مساعدة", "ساعدني", "ازاي", "كيف",
	}},
	{IntentThanks, []string{
		"thanks", "thank you", "thx",
		"شكرا", "متشكر",
	}},
}

var (
	yesKeywords = []string{
		"yes", "yeah", "yep", "ok", "okay", "correct", "right", "confirm", "sure",
		"نعم", "اه", "ايه", "ايوه", "صح", "تمام", "موافق", "اكيد", "ماشي",
	}
	noKeywords = []string{
		"no", "nope", "wrong", "incorrect", "change", "edit",
		"لا", "لأ", "غلط", "مش صح", "تعديل", "غير",
	}
	skipKeywords = []string{
		"skip", "no photo", "no photos", "none", "nothing", "done",
		"تخطي", "مفيش", "تم", "بدون", "لا صور", "مش هبعت",
	}
	cancelKeywords = []string{
		"cancel", "stop", "quit", "exit", "bye",
		"الغاء", "الغي", "وقف", "خلاص", "مع السلامة",
	}
)

var categoryTable = []struct {
	category domain.IssueCategory
	keywords []string
}{
	{domain.CategoryQuality, []string{"quality", "defect", "broken", "damaged", "جودة", "معيب", "مكسور"}},
	{domain.CategoryWrongProduct, []string{"wrong", "different", "not what", "غلط", "مختلف"}},
	{domain.CategoryMissingParts, []string{"missing", "incomplete", "ناقص", "مش كامل"}},
	{domain.CategoryNotWorking, []string{"not working", "doesnt work", "مش شغال", "مش بيشتغل"}},
	{domain.CategoryExpired, []string{"expired", "old", "منتهي", "قديم"}},
	{domain.CategoryPackaging, []string{"packaging", "box", "تغليف", "علبة"}},
}

// Keyword is the default keyword/regex classifier.
type Keyword struct{}

// NewKeyword constructs the default classifier.
func NewKeyword() *Keyword {
	return &Keyword{}
}

// Classify determines intent from message text and the current step. At
// collection steps the state, not the text, determines meaning.
func (k *Keyword) Classify(text string, step domain.ConversationStep) Intent {
	lower := strings.ToLower(strings.TrimSpace(text))

	// Cancel must win at every step, including collection steps where all
	// other text is the answer to the pending question.
	if matchAny(lower, cancelKeywords) {
		return IntentCancel
	}

	switch step {
	case domain.StepCollectingProduct, domain.StepCollectingIssue,
		domain.StepCollectingName, domain.StepCollectingPurchaseDate,
		domain.StepCollectingQuantity:
		return IntentProvideInfo
	case domain.StepCollectingPhotos:
		if matchAny(lower, skipKeywords) {
			return IntentSkip
		}
		// Media attachments are recognized by message type, not text.
		return IntentProvideInfo
	case domain.StepConfirmingData:
		if matchAny(lower, yesKeywords) {
			return IntentConfirmYes
		}
		if matchAny(lower, noKeywords) {
			return IntentConfirmNo
		}
		return IntentUnknown
	}

	for _, entry := range intentTable {
		if matchAny(lower, entry.keywords) {
			return entry.intent
		}
	}
	return IntentUnknown
}

// ExtractEntities runs every entity pattern against the text.
func (k *Keyword) ExtractEntities(text string) Entities {
	var e Entities
	if m := ticketNumberPattern.FindString(text); m != "" {
		e.TicketNumber = &m
	}
	if m := phonePattern.FindString(text); m != "" {
		e.Phone = &m
	}
	if m := datePattern.FindString(text); m != "" {
		e.Date = &m
	}
	if m := quantityPattern.FindStringSubmatch(text); m != nil {
		if qty, err := strconv.Atoi(m[1]); err == nil {
			e.Quantity = &qty
		}
	}
	if m := emailPattern.FindString(text); m != "" {
		e.Email = &m
	}
	return e
}

// DetectLanguage counts Arabic-script versus Latin letters. Arabic wins ties,
// so digit-only messages resolve to the service default language.
func (k *Keyword) DetectLanguage(text string) domain.Language {
	arabic, latin := 0, 0
	for _, r := range text {
		switch {
		case r >= 0x0600 && r <= 0x06FF:
			arabic++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			latin++
		}
	}
	if arabic >= latin {
		return domain.LanguageArabic
	}
	return domain.LanguageEnglish
}

// SuggestCategory maps issue free text to a complaint category.
func (k *Keyword) SuggestCategory(issueText string) domain.IssueCategory {
	lower := strings.ToLower(issueText)
	for _, entry := range categoryTable {
		if matchAny(lower, entry.keywords) {
			return entry.category
		}
	}
	return domain.CategoryOther
}

// matchAny uses substring matching, except single-rune keywords (the menu
// digits) which must match the whole trimmed message.
func matchAny(lower string, keywords []string) bool {
	for _, keyword := range keywords {
		if len([]rune(keyword)) == 1 {
			if lower == keyword {
				return true
			}
			continue
		}
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
