// Package event defines the envelope published for every completed user
// state transition.
package event

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	UserCreated                 = "UserCreatedEvent"
	UserUpdated                 = "UserUpdatedEvent"
	UserAddedToOrganisation     = "UserAddedToOrganisationEvent"
	UserRemovedFromOrganisation = "UserRemovedFromOrganisationEvent"
	UserDeleted                 = "UserDeletedEvent"
	UserDeactivated             = "UserDeactivatedEvent"

	TypeUser = "UserEvent"

	DefaultSource = "user-service"
)

// Factory stamps envelopes with the source tag of one application.
type Factory struct {
	source string
}

// NewFactory returns a Factory for source, falling back to DefaultSource.
func NewFactory(source string) *Factory {
	source = strings.TrimSpace(source)
	if source == "" {
		source = DefaultSource
	}
	return &Factory{source: source}
}

// Source is the tag written to event_source.
func (f *Factory) Source() string { return f.source }

// Envelope is the canonical record of a state transition.
type Envelope struct {
	Reference     string `json:"event_reference"`
	Name          string `json:"event_name"`
	Date          string `json:"event_date"`
	Type          string `json:"event_type"`
	Source        string `json:"event_source"`
	UserReference string `json:"event_user_reference"`
	Data          any    `json:"event_data"`
}

// New builds an envelope tagged with DefaultSource.
func New(name, eventType, userReference string, payload any) (*Envelope, error) {
	return NewFactory(DefaultSource).New(name, eventType, userReference, payload)
}

// New stamps a fresh reference, the current time and the factory's source.
// Payloads that encode to JSON objects or arrays keep their structure;
// anything else is stored as its string form.
func (f *Factory) New(name, eventType, userReference string, payload any) (*Envelope, error) {
	data, err := coerce(payload)
	if err != nil {
		return nil, fmt.Errorf("event %s payload: %w", name, err)
	}
	return &Envelope{
		Reference:     uuid.NewString(),
		Name:          name,
		Date:          time.Now().UTC().Format(time.RFC3339Nano),
		Type:          eventType,
		Source:        f.source,
		UserReference: userReference,
		Data:          data,
	}, nil
}

func coerce(payload any) (any, error) {
	switch v := payload.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return fmt.Sprint(payload), nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Serialize returns the canonical JSON text of the envelope.
func (e *Envelope) Serialize() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("serialize event %s: %w", e.Reference, err)
	}
	return string(b), nil
}

// Deserialize rebuilds an envelope without regenerating ids or timestamps.
func Deserialize(s string) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return nil, fmt.Errorf("deserialize event: %w", err)
	}
	missing := make([]string, 0)
	for field, v := range map[string]string{
		"event_reference": e.Reference,
		"event_name":      e.Name,
		"event_date":      e.Date,
		"event_type":      e.Type,
	} {
		if v == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("deserialize event: missing %s", strings.Join(missing, ", "))
	}
	return &e, nil
}
