package service

import (
	"regexp"
	"strings"
)

var kenyanPhonePattern = regexp.MustCompile(`^(\+254|0)([71]\d{8})$`)

// NormalizePhone validates a Kenyan mobile number (+2547.., 07.., 01.., spaces
// ignored) and returns it as 254XXXXXXXXX.
func NormalizePhone(phone string) (string, error) {
	cleaned := strings.Join(strings.Fields(phone), "")
	match := kenyanPhonePattern.FindStringSubmatch(cleaned)
	if match == nil {
		return "", ErrPhoneInvalid
	}
	return "254" + match[2], nil
}

// CanonicalPhone best-effort normalisation for lookups that must not reject input
func CanonicalPhone(phone string) string {
	cleaned := strings.Join(strings.Fields(phone), "")
	if normalized, err := NormalizePhone(cleaned); err == nil {
		return normalized
	}
	if strings.HasPrefix(cleaned, "254") {
		if normalized, err := NormalizePhone("+" + cleaned); err == nil {
			return normalized
		}
	}
	return cleaned
}
