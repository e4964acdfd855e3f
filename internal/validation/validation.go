// Package validation holds the field rules applied to inbound user commands.
//
// Every rule returns nil or a Validation domain error keyed by the normalized
// field name. Composite validators run every rule and report all violations
// in one error through a Collector.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"userhub/internal/domainerr"
	"userhub/pkg/util"
)

// Field names used as error map keys.
const (
	FieldUserReference         = "user_reference"
	FieldEmail                 = "email"
	FieldFirstName             = "first_name"
	FieldLastName              = "last_name"
	FieldMobileNumber          = "mobile_number"
	FieldConsentPreferences    = "consent_preferences"
	FieldOrganisationReference = "organisation_reference"
	FieldOrganisationName      = "organisation_name"
)

func fieldError(field, msg string) error {
	return domainerr.WithFields(domainerr.KindValidation, msg, map[string][]string{field: {msg}})
}

// NonEmpty rejects blank values and single characters that are not letters.
func NonEmpty(value, field string) error {
	key := util.NormalizeFieldName(field)
	name := util.DisplayName(key)
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		return fieldError(key, fmt.Sprintf("%s cannot be empty or whitespace", name))
	}
	if utf8.RuneCountInString(trimmed) == 1 && !util.IsSingleLetter(trimmed) {
		return fieldError(key, fmt.Sprintf("%s %q must be a letter when a single character", name, value))
	}
	return nil
}

// Email validates value under the "email" key.
func Email(value string) error {
	return EmailField(value, FieldEmail)
}

func EmailField(value, field string) error {
	if err := NonEmpty(value, field); err != nil {
		return err
	}
	if !util.IsEmail(strings.TrimSpace(value)) {
		key := util.NormalizeFieldName(field)
		return fieldError(key, fmt.Sprintf("%s %q is not a valid email address", util.DisplayName(key), value))
	}
	return nil
}

// Mobile validates an E.164 number under the "mobile_number" key.
func Mobile(value string) error {
	return MobileField(value, FieldMobileNumber)
}

func MobileField(value, field string) error {
	if err := NonEmpty(value, field); err != nil {
		return err
	}
	if !util.IsMobileNumber(strings.TrimSpace(value)) {
		key := util.NormalizeFieldName(field)
		return fieldError(key, fmt.Sprintf("%s %q must be in international format, e.g. +447700900123", util.DisplayName(key), value))
	}
	return nil
}

// UUID validates value under the "user_reference" key.
func UUID(value string) error {
	return UUIDField(value, FieldUserReference)
}

func UUIDField(value, field string) error {
	if err := NonEmpty(value, field); err != nil {
		return err
	}
	if !util.IsUUID(strings.TrimSpace(value)) {
		key := util.NormalizeFieldName(field)
		return fieldError(key, fmt.Sprintf("%s %q is not a valid UUID", util.DisplayName(key), value))
	}
	return nil
}

// Postcode validates a UK postcode.
func Postcode(value, field string) error {
	if err := NonEmpty(value, field); err != nil {
		return err
	}
	if !util.IsUKPostcode(strings.ToUpper(strings.TrimSpace(value))) {
		key := util.NormalizeFieldName(field)
		return fieldError(key, fmt.Sprintf("%s %q is not a valid UK postcode", util.DisplayName(key), value))
	}
	return nil
}
