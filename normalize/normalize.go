// Package normalize holds the pure field normalizers shared by the MRZ
// parser and the extraction orchestrator. Every function is idempotent:
// running one on its own output is a no-op.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	isoDate      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dayFirstDate = regexp.MustCompile(`^(\d{1,2})[/.](\d{1,2})[/.](\d{4})$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// Date converts day-first D/M/YYYY or D.M.YYYY dates to ISO YYYY-MM-DD with
// zero padding. Already-ISO input passes through unchanged. Anything else is
// returned as-is rather than rejected: schema validation downstream decides
// whether a malformed date invalidates the record.
func Date(input string) string {
	input = strings.TrimSpace(input)
	if input == "" || isoDate.MatchString(input) {
		return input
	}

	m := dayFirstDate.FindStringSubmatch(input)
	if m == nil {
		return input
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
}

// Sex maps the various sex encodings to the canonical M/F/X domain.
// Unknown input yields the empty string: an absent value is valid where a
// forced guess is not.
func Sex(input string) string {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "M", "MALE":
		return "M"
	case "F", "FEMALE":
		return "F"
	case "X", "OTHER":
		return "X"
	default:
		return ""
	}
}

// PhoneE164 normalizes US phone numbers to E.164 (+1XXXXXXXXXX). Numbers
// that do not look like US numbers are returned unchanged; they may be
// international and should not be mangled.
func PhoneE164(phone string) string {
	if phone == "" {
		return ""
	}

	digits := nonDigits.ReplaceAllString(phone, "")
	switch {
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits
	default:
		return phone
	}
}

// Email lowercases and trims an email address.
func Email(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AlienNumber normalizes an A-number to the canonical "A-" + digits form.
// Input without any digits yields the empty string.
func AlienNumber(number string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(number))
	cleaned = strings.TrimPrefix(cleaned, "A-")
	cleaned = strings.TrimPrefix(cleaned, "A")

	digits := nonDigits.ReplaceAllString(cleaned, "")
	if digits == "" {
		return ""
	}
	return "A-" + digits
}
