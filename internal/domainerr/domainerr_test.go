package domainerr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWrapsMessage(t *testing.T) {
	err := New(KindConflict, "already exists")

	assert.Equal(t, KindConflict, err.Kind())
	assert.Equal(t, http.StatusConflict, err.Status())
	assert.Equal(t, map[string][]string{"message": {"already exists"}}, err.Fields())
	assert.NotEmpty(t, err.Reference())
	assert.NotEmpty(t, err.Timestamp())
}

func TestWithFieldsKeepsMap(t *testing.T) {
	fields := map[string][]string{"email": {"bad"}, "first_name": {"empty"}}
	err := WithFields(KindValidation, "ignored", fields)

	fields["email"][0] = "mutated"
	assert.Equal(t, []string{"bad"}, err.Messages("email"))

	got := err.Fields()
	got["email"] = nil
	assert.Equal(t, []string{"bad"}, err.Messages("email"))
}

func TestWithFieldsEmptyFallsBackToMessage(t *testing.T) {
	err := WithFields(KindValidation, "broken", nil)
	assert.Equal(t, []string{"broken"}, err.Messages(MessageField))
}

func TestStatusTable(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindUnAuthorized: http.StatusUnauthorized,
		KindInternal:     http.StatusInternalServerError,
		KindProhibited:   http.StatusUnavailableForLegalReasons,
		Kind("UNKNOWN"):  http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusOf(kind), string(kind))
	}
	for _, k := range Kinds() {
		assert.NotZero(t, StatusOf(k))
	}
}

func TestIdentityIsByReference(t *testing.T) {
	a := New(KindNotFound, "same")
	b := New(KindNotFound, "same")

	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Reference(), b.Reference())
}

func TestInternalPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("persist user", cause)

	de, ok := From(err)
	require.True(t, ok)
	assert.Equal(t, KindInternal, de.Kind())
	assert.ErrorIs(t, err, cause)

	conflict := New(KindConflict, "dup")
	assert.Same(t, conflict, Internal("persist user", conflict))
	assert.Nil(t, Internal("noop", nil))
}

func TestFromWrappedChain(t *testing.T) {
	inner := New(KindNotFound, "missing")
	wrapped := fmt.Errorf("load: %w", inner)

	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(errors.New("plain"), KindNotFound))
}

func TestMarshalJSON(t *testing.T) {
	err := WithFields(KindValidation, "", map[string][]string{"email": {"invalid"}})

	raw, mErr := json.Marshal(err)
	require.NoError(t, mErr)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, err.Reference(), body["error_reference"])
	assert.Equal(t, "VALIDATION_ERROR", body["error_type"])
	assert.Equal(t, float64(400), body["status_code"])
	assert.Equal(t, err.Timestamp(), body["timestamp"])
	assert.Contains(t, body["errors"], "email")
}

func TestMessage(t *testing.T) {
	err := WithFields(KindValidation, "", map[string][]string{
		"last_name":  {"empty"},
		"email":      {"invalid"},
		MessageField: {"summary"},
	})
	assert.Equal(t, "email: invalid, last_name: empty, summary", err.Message())
	assert.Contains(t, err.Error(), "VALIDATION_ERROR")
}
