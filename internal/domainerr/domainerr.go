// Package domainerr is the structured error type returned for every rule
// violation in the user service.
//
// An Error is built where the failure happens and travels unchanged through
// the service and repository layers. Only the HTTP handlers turn it into a
// response, using StatusOf to pick the status code.
package domainerr

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageField is the synthetic field used when an error carries a plain message.
const MessageField = "message"

// Error is an immutable, classified domain error.
type Error struct {
	reference string
	kind      Kind
	fields    map[string][]string
	status    int
	timestamp string
	cause     error
}

// New builds an error whose field map is {"message": [message]}.
func New(kind Kind, message string) *Error {
	return build(kind, message, nil, nil)
}

// Newf is New with a format string.
func Newf(kind Kind, format string, args ...any) *Error {
	return build(kind, fmt.Sprintf(format, args...), nil, nil)
}

// WithFields builds an error carrying a field -> messages map. When fields is
// empty the message is wrapped under MessageField instead.
func WithFields(kind Kind, message string, fields map[string][]string) *Error {
	return build(kind, message, fields, nil)
}

// Wrap builds an error that keeps cause reachable through errors.Unwrap.
func Wrap(kind Kind, message string, cause error) *Error {
	return build(kind, message, nil, cause)
}

// Internal returns err unchanged when it already is a domain error and wraps
// it as an Internal error otherwise.
func Internal(message string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := From(err); ok {
		return err
	}
	return Wrap(KindInternal, fmt.Sprintf("%s: %v", message, err), err)
}

// From extracts a domain error from err's chain.
func From(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) && de != nil {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	de, ok := From(err)
	return ok && de.kind == kind
}

func build(kind Kind, message string, fields map[string][]string, cause error) *Error {
	e := &Error{
		reference: uuid.NewString(),
		kind:      kind,
		status:    StatusOf(kind),
		timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		cause:     cause,
	}
	if len(fields) > 0 {
		e.fields = copyFields(fields)
	} else {
		e.fields = map[string][]string{MessageField: {message}}
	}
	return e
}

func (e *Error) Reference() string { return e.reference }
func (e *Error) Kind() Kind        { return e.kind }
func (e *Error) Status() int       { return e.status }
func (e *Error) Timestamp() string { return e.timestamp }

// Fields returns a copy of the field -> messages map.
func (e *Error) Fields() map[string][]string { return copyFields(e.fields) }

// Messages returns the messages recorded for a single field.
func (e *Error) Messages(field string) []string {
	return append([]string(nil), e.fields[field]...)
}

// Message joins every recorded message, fields in sorted order.
func (e *Error) Message() string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs := strings.Join(e.fields[k], "; ")
		if k == MessageField {
			parts = append(parts, msgs)
			continue
		}
		parts = append(parts, k+": "+msgs)
	}
	return strings.Join(parts, ", ")
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.kind, e.Message())
}

func (e *Error) Unwrap() error { return e.cause }

// Equal compares errors by reference only.
func (e *Error) Equal(other *Error) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.reference == other.reference
}

type wireError struct {
	Reference string              `json:"error_reference"`
	Kind      Kind                `json:"error_type"`
	Errors    map[string][]string `json:"errors"`
	Status    int                 `json:"status_code"`
	Timestamp string              `json:"timestamp"`
}

func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireError{
		Reference: e.reference,
		Kind:      e.kind,
		Errors:    e.fields,
		Status:    e.status,
		Timestamp: e.timestamp,
	})
}

func copyFields(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}
