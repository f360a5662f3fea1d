package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	tagRegex   = regexp.MustCompile(`<[^>]*>`)
)

// IsValidEmail reports whether the value looks like a deliverable
// email address.
func IsValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	if !emailRegex.MatchString(email) {
		return false
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	if len(domain) > 253 || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	return true
}

// SanitizeEmail normalizes an email address to its lower-cased, trimmed
// form. Returns "" when the value does not validate.
func SanitizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if !IsValidEmail(email) {
		return ""
	}
	return email
}

// SanitizeText strips markup and control characters from free-text
// input before it is sent to the remote CRM.
func SanitizeText(s string) string {
	s = tagRegex.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// SanitizePhone validates a tel-typed property value and normalizes it
// to E.164. Returns "" for numbers that do not parse or are not valid,
// so garbage never reaches the CRM.
func SanitizePhone(value, defaultRegion string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	num, err := phonenumbers.Parse(value, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return ""
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
