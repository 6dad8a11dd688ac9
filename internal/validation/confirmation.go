package validation

import (
	"regexp"
	"strings"
)

// ConfirmationCodeLength is the exact length of a transfer confirmation code.
const ConfirmationCodeLength = 9

var confirmationCodeRegex = regexp.MustCompile(`^[A-Z0-9]{9}$`)

// NormalizeConfirmationCode uppercases the raw input, strips every character
// outside [A-Z0-9] and truncates to the expected length.
func NormalizeConfirmationCode(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == ConfirmationCodeLength {
			break
		}
	}
	return b.String()
}

// ValidateConfirmationCode reports whether code is exactly nine uppercase
// alphanumeric characters. Callers normalize first.
func ValidateConfirmationCode(code string) bool {
	return confirmationCodeRegex.MatchString(code)
}
