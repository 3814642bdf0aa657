package domain

import "fmt"

// Language is a customer's preferred conversation language.
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
)

// ParseLanguage validates a stored language code.
func ParseLanguage(value string) (Language, error) {
	switch Language(value) {
	case LanguageArabic, LanguageEnglish:
		return Language(value), nil
	}
	return "", fmt.Errorf("unknown language %q", value)
}
