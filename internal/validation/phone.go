package validation

import (
	"regexp"
	"strings"
)

type phoneRule struct {
	pattern     *regexp.Regexp
	callingCode string
}

// Per-country national number patterns. Numbers are matched after separators
// are stripped; a leading trunk zero is allowed and dropped on normalization.
var phoneRules = map[string]phoneRule{
	"US": {regexp.MustCompile(`^\d{10}$`), "+1"},
	"CA": {regexp.MustCompile(`^\d{10}$`), "+1"},
	"NG": {regexp.MustCompile(`^0?(70|80|81|90|91)\d{8}$`), "+234"},
	"GH": {regexp.MustCompile(`^0?(20|23|24|26|27|28|50|54|55|56|57|59)\d{7}$`), "+233"},
	"GB": {regexp.MustCompile(`^0?7\d{9}$`), "+44"},
	"UK": {regexp.MustCompile(`^0?7\d{9}$`), "+44"},
}

// Countries without an entry in the table fall back to a length check.
var fallbackPhone = regexp.MustCompile(`^\d{8,15}$`)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// ValidatePhone checks number against the pattern for countryCode and, when
// valid, returns the number normalized with the country's calling-code
// prefix. Unknown countries accept 8-15 digits and are returned as entered.
func ValidatePhone(number, countryCode string) (string, bool) {
	digits := phoneSeparators.Replace(strings.TrimSpace(number))
	digits = strings.TrimPrefix(digits, "+")

	rule, ok := phoneRules[strings.ToUpper(countryCode)]
	if !ok {
		if !fallbackPhone.MatchString(digits) {
			return "", false
		}
		return digits, true
	}

	if !rule.pattern.MatchString(digits) {
		return "", false
	}
	return rule.callingCode + strings.TrimPrefix(digits, "0"), true
}
