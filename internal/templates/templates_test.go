package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

func TestResolveSubstitutesParams(t *testing.T) {
	c := NewCatalog()

	text := c.Resolve(KeyTicketCreated, Params{"ticket_number": "TKT-2026-00007"}, domain.LanguageEnglish)
	assert.Contains(t, text, "TKT-2026-00007")
	assert.NotContains(t, text, "{ticket_number}")
}

func TestResolveLanguageVariants(t *testing.T) {
	c := NewCatalog()

	en := c.Resolve(KeyGreeting, nil, domain.LanguageEnglish)
	ar := c.Resolve(KeyGreeting, nil, domain.LanguageArabic)
	assert.NotEqual(t, en, ar)
	assert.Contains(t, en, "Hello")
	assert.Contains(t, ar, "مرحباً")
}

func TestResolveFallsBackToArabic(t *testing.T) {
	c := NewCatalog()

	// An unrecognized language gets the Arabic text rather than nothing.
	text := c.Resolve(KeyGreeting, nil, domain.Language("fr"))
	assert.Equal(t, c.Resolve(KeyGreeting, nil, domain.LanguageArabic), text)
}

func TestResolveUnknownKeyReturnsKey(t *testing.T) {
	c := NewCatalog()

	assert.Equal(t, "nonexistent", c.Resolve(Key("nonexistent"), nil, domain.LanguageEnglish))
}

func TestResolveLeavesUnprovidedPlaceholders(t *testing.T) {
	c := NewCatalog()

	text := c.Resolve(KeyConfirmData, Params{"product": "White paint"}, domain.LanguageEnglish)
	assert.Contains(t, text, "White paint")
	assert.Contains(t, text, "{issue}")
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Under technical review", StatusLabel(domain.TicketStatusPendingReview, domain.LanguageEnglish))
	assert.Equal(t, "مرفوضة", StatusLabel(domain.TicketStatusRejected, domain.LanguageArabic))
	// Unmapped combinations fall back to the raw status value.
	assert.Equal(t, "pending_data", StatusLabel(domain.TicketStatusPendingData, domain.LanguageEnglish))
}
