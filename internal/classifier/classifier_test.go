package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/compensation-agent/internal/domain"
)

func TestClassifyIdleIntents(t *testing.T) {
	k := NewKeyword()

	cases := []struct {
		name string
		text string
		want Intent
	}{
		{"greeting english", "hello there", IntentGreeting},
		{"greeting arabic", "السلام عليكم", IntentGreeting},
		{"new complaint keyword", "I have a problem with my order", IntentNewComplaint},
		{"new complaint menu digit", "1", IntentNewComplaint},
		{"new complaint arabic", "عندي شكوى", IntentNewComplaint},
		{"check status", "what is the status of my ticket", IntentCheckStatus},
		{"check status menu digit", "2", IntentCheckStatus},
		{"cancel", "cancel please", IntentCancel},
		{"cancel arabic", "الغاء", IntentCancel},
		{"help", "can you help me", IntentHelp},
		{"thanks", "thank you", IntentThanks},
		{"gibberish", "xyzzy qwerty", IntentUnknown},
		{"digit inside text is not a menu choice", "I ordered 10 buckets", IntentUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, k.Classify(tc.text, domain.StepIdle))
		})
	}
}

func TestClassifyTableOrder(t *testing.T) {
	k := NewKeyword()

	// "hello, I have a problem" contains both greeting and complaint
	// keywords; the table puts greeting first so greeting wins.
	assert.Equal(t, IntentGreeting, k.Classify("hello, I have a problem", domain.StepIdle))
}

func TestClassifyCollectionStepsForceProvideInfo(t *testing.T) {
	k := NewKeyword()

	steps := []domain.ConversationStep{
		domain.StepCollectingName,
		domain.StepCollectingProduct,
		domain.StepCollectingPurchaseDate,
		domain.StepCollectingQuantity,
		domain.StepCollectingIssue,
	}
	for _, step := range steps {
		// Even text that reads like a greeting is treated as the answer.
		assert.Equal(t, IntentProvideInfo, k.Classify("hello white paint", step), string(step))
		// Cancel still wins over collection.
		assert.Equal(t, IntentCancel, k.Classify("cancel", step), string(step))
	}
}

func TestClassifyPhotoStep(t *testing.T) {
	k := NewKeyword()

	assert.Equal(t, IntentSkip, k.Classify("skip", domain.StepCollectingPhotos))
	assert.Equal(t, IntentSkip, k.Classify("تخطي", domain.StepCollectingPhotos))
	assert.Equal(t, IntentProvideInfo, k.Classify("here it is", domain.StepCollectingPhotos))
}

func TestClassifyConfirmationStep(t *testing.T) {
	k := NewKeyword()

	assert.Equal(t, IntentConfirmYes, k.Classify("yes", domain.StepConfirmingData))
	assert.Equal(t, IntentConfirmYes, k.Classify("تمام", domain.StepConfirmingData))
	assert.Equal(t, IntentConfirmNo, k.Classify("no", domain.StepConfirmingData))
	assert.Equal(t, IntentConfirmNo, k.Classify("غلط", domain.StepConfirmingData))
	assert.Equal(t, IntentUnknown, k.Classify("maybe later", domain.StepConfirmingData))
}

func TestExtractEntities(t *testing.T) {
	k := NewKeyword()

	e := k.ExtractEntities("ticket TKT-2026-00042, call me on 01012345678, bought 2/1/2026, qty: 3, mail me a@b.com")

	require.NotNil(t, e.TicketNumber)
	assert.Equal(t, "TKT-2026-00042", *e.TicketNumber)
	require.NotNil(t, e.Phone)
	assert.Equal(t, "01012345678", *e.Phone)
	require.NotNil(t, e.Date)
	assert.Equal(t, "2/1/2026", *e.Date)
	require.NotNil(t, e.Quantity)
	assert.Equal(t, 3, *e.Quantity)
	require.NotNil(t, e.Email)
	assert.Equal(t, "a@b.com", *e.Email)
}

func TestExtractEntitiesEmpty(t *testing.T) {
	k := NewKeyword()

	e := k.ExtractEntities("nothing structured here")
	assert.Nil(t, e.TicketNumber)
	assert.Nil(t, e.Phone)
	assert.Nil(t, e.Date)
	assert.Nil(t, e.Quantity)
	assert.Nil(t, e.Email)
}

func TestDetectLanguage(t *testing.T) {
	k := NewKeyword()

	assert.Equal(t, domain.LanguageArabic, k.DetectLanguage("عندي مشكلة في المنتج"))
	assert.Equal(t, domain.LanguageEnglish, k.DetectLanguage("my product is broken"))
	// Mixed text with equal counts and digit-only text default to Arabic.
	assert.Equal(t, domain.LanguageArabic, k.DetectLanguage("ok صح"))
	assert.Equal(t, domain.LanguageArabic, k.DetectLanguage("12345"))
}

func TestSuggestCategory(t *testing.T) {
	k := NewKeyword()

	cases := []struct {
		text string
		want domain.IssueCategory
	}{
		{"the paint is damaged", domain.CategoryQuality},
		{"you sent the wrong color", domain.CategoryWrongProduct},
		{"parts are missing from the box", domain.CategoryMissingParts},
		{"the mixer is not working", domain.CategoryNotWorking},
		{"the product is expired", domain.CategoryExpired},
		{"التغليف سيء", domain.CategoryPackaging},
		{"something else entirely", domain.CategoryOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, k.SuggestCategory(tc.text), tc.text)
	}
}
