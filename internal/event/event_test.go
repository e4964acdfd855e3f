package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createdPayload struct {
	UserReference string `json:"user_reference"`
	Email         string `json:"email"`
}

func TestNewStampsEnvelope(t *testing.T) {
	e, err := New(UserCreated, TypeUser, "11111111-1111-1111-1111-111111111111", createdPayload{
		UserReference: "11111111-1111-1111-1111-111111111111",
		Email:         "a@b.com",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, e.Reference)
	assert.NotEmpty(t, e.Date)
	assert.Equal(t, DefaultSource, e.Source)
	assert.Equal(t, map[string]any{
		"user_reference": "11111111-1111-1111-1111-111111111111",
		"email":          "a@b.com",
	}, e.Data)

	other, err := New(UserCreated, TypeUser, "x", nil)
	require.NoError(t, err)
	assert.NotEqual(t, e.Reference, other.Reference)
}

func TestPayloadCoercion(t *testing.T) {
	e, err := New(UserUpdated, TypeUser, "u", 42)
	require.NoError(t, err)
	assert.Equal(t, "42", e.Data)

	e, err = New(UserUpdated, TypeUser, "u", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, e.Data)

	e, err = New(UserUpdated, TypeUser, "u", true)
	require.NoError(t, err)
	assert.Equal(t, "true", e.Data)
}

func TestRoundTrip(t *testing.T) {
	f := NewFactory("user-service-test")
	e, err := f.New(UserAddedToOrganisation, TypeUser, "u", map[string]any{
		"organisation": map[string]any{"organisation_name": "Acme"},
		"count":        2,
	})
	require.NoError(t, err)
	assert.Equal(t, "user-service-test", e.Source)

	s, err := e.Serialize()
	require.NoError(t, err)

	back, err := Deserialize(s)
	require.NoError(t, err)
	assert.Equal(t, e, back)
}

func TestFactorySource(t *testing.T) {
	assert.Equal(t, DefaultSource, NewFactory("  ").Source())

	a, err := NewFactory("svc-a").New(UserCreated, TypeUser, "u", nil)
	require.NoError(t, err)
	b, err := NewFactory("svc-b").New(UserCreated, TypeUser, "u", nil)
	require.NoError(t, err)
	assert.Equal(t, "svc-a", a.Source)
	assert.Equal(t, "svc-b", b.Source)

	e, err := New(UserCreated, TypeUser, "u", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSource, e.Source)
}

func TestDeserializeRejectsIncomplete(t *testing.T) {
	_, err := Deserialize(`{"event_name":"UserCreatedEvent"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event_date, event_reference, event_type")

	_, err = Deserialize("not json")
	assert.Error(t, err)
}
