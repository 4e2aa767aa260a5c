package utils

import (
	"regexp"
	"strings"
)

var (
	nonPhoneRunes = regexp.MustCompile(`[^\d+]`)
	nonDigits     = regexp.MustCompile(`\D`)
)

// NormalizePhoneNumber normalizes a phone number into a canonical format.
// Rules:
// - keep leading '+' if present, otherwise assume +1 for 10-digit US numbers
// - remove all spaces and punctuation
// - preserve country code when possible
func NormalizePhoneNumber(phone string) string {
	if phone == "" {
		return ""
	}

	clean := nonPhoneRunes.ReplaceAllString(phone, "")

	if strings.HasPrefix(clean, "+") {
		return clean
	}

	// Common North American formats
	if len(clean) == 10 {
		return "+1" + clean
	}
	if len(clean) == 11 && strings.HasPrefix(clean, "1") {
		return "+" + clean
	}

	return "+" + clean
}

// ExtractPhoneDigits returns just the digits in a phone number string.
// The verification scorer compares phones on digits only, so formatting
// punctuation never affects the similarity score.
func ExtractPhoneDigits(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}
