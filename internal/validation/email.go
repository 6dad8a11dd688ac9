package validation

import "regexp"

var emailRegex = regexp.MustCompile(`(?i)^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// ValidateEmail checks the local@domain.tld shape case-insensitively.
// No deliverability checks beyond the syntax.
func ValidateEmail(s string) bool {
	return emailRegex.MatchString(s)
}
