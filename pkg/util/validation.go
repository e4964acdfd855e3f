package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	mobileRegex     = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	ukPostcodeRegex = regexp.MustCompile(`^[A-Z]{1,2}[0-9][0-9A-Z]?\s?[0-9][A-Z]{2}$`)
	singleLetter    = regexp.MustCompile(`^[a-zA-Z]$`)
	nonWordRegex    = regexp.MustCompile(`[^a-z0-9]+`)
)

const (
	// MaxEmailLength is the longest address accepted (RFC 5321 path limit).
	MaxEmailLength = 254
)

// IsEmail reports whether value has the shape local@domain.tld.
func IsEmail(value string) bool {
	return len(value) <= MaxEmailLength && emailRegex.MatchString(value)
}

// IsMobileNumber reports whether value is an E.164 number, e.g. +447700900123.
func IsMobileNumber(value string) bool {
	return mobileRegex.MatchString(value)
}

// IsUKPostcode reports whether value is an upper-case UK postcode.
func IsUKPostcode(value string) bool {
	return ukPostcodeRegex.MatchString(value)
}

// IsUUID reports whether value parses as a UUID.
func IsUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

// IsSingleLetter reports whether value is exactly one ASCII letter.
func IsSingleLetter(value string) bool {
	return singleLetter.MatchString(value)
}

// NormalizeFieldName turns "First name" or "firstName" into "first_name".
func NormalizeFieldName(name string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsUpper(r) && prevLower {
			b.WriteRune('_')
		}
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.Trim(nonWordRegex.ReplaceAllString(b.String(), "_"), "_")
}

// DisplayName turns "first_name" into "first name" for messages.
func DisplayName(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
