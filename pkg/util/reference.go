package util

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ParseReference converts a string to a canonical lower-case UUID reference.
// Returns an empty string and an error if the string is invalid.
func ParseReference(ref string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("invalid reference format: %w", err)
	}
	return id.String(), nil
}

// GenerateReference generates a new random reference.
func GenerateReference() string {
	return uuid.NewString()
}

// CanonicalReference returns the lower-case hyphenated form of a UUID
// reference. Values that do not parse are returned trimmed and unchanged.
func CanonicalReference(ref string) string {
	canonical, err := ParseReference(ref)
	if err != nil {
		return strings.TrimSpace(ref)
	}
	return canonical
}
