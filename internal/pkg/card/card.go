package card

import "strings"

// MinDigits and MaxDigits bound acceptable card number lengths.
const (
	MinDigits = 12
	MaxDigits = 19
)

// Normalize strips spaces and dashes from a card number.
func Normalize(number string) string {
	cleaned := strings.ReplaceAll(number, " ", "")
	return strings.ReplaceAll(cleaned, "-", "")
}

// IsValidNumber reports whether the cleaned number is all digits
// within the accepted length range.
func IsValidNumber(number string) bool {
	cleaned := Normalize(number)
	if len(cleaned) < MinDigits || len(cleaned) > MaxDigits {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Mask replaces all interior digits of a card number with '*',
// keeping the first 4 and last 4 digits. The masked value has the
// same length as the cleaned input. Inputs of 8 digits or fewer are
// masked entirely.
func Mask(number string) string {
	cleaned := Normalize(number)
	if len(cleaned) <= 8 {
		return strings.Repeat("*", len(cleaned))
	}
	return cleaned[:4] + strings.Repeat("*", len(cleaned)-8) + cleaned[len(cleaned)-4:]
}

// LastFour returns the last 4 digits of a card number for display.
func LastFour(number string) string {
	cleaned := Normalize(number)
	if len(cleaned) < 4 {
		return cleaned
	}
	return cleaned[len(cleaned)-4:]
}
