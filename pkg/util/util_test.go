package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("a@b.com"))
	assert.True(t, IsEmail("jane.doe+tag@example.co.uk"))
	assert.False(t, IsEmail("a@b"))
	assert.False(t, IsEmail("not-an-email"))
	assert.False(t, IsEmail(""))
}

func TestIsMobileNumber(t *testing.T) {
	assert.True(t, IsMobileNumber("+447700900123"))
	assert.False(t, IsMobileNumber("07700900123"))
	assert.False(t, IsMobileNumber("+0123"))
	assert.False(t, IsMobileNumber("+1234567890123456"))
}

func TestIsUKPostcode(t *testing.T) {
	assert.True(t, IsUKPostcode("SW1A 1AA"))
	assert.True(t, IsUKPostcode("M11AE"))
	assert.False(t, IsUKPostcode("sw1a 1aa"))
	assert.False(t, IsUKPostcode("12345"))
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID("11111111-1111-1111-1111-111111111111"))
	assert.False(t, IsUUID("1111"))
}

func TestNormalizeFieldName(t *testing.T) {
	cases := map[string]string{
		"First name":             "first_name",
		"firstName":              "first_name",
		"user_reference":         "user_reference",
		"organisation reference": "organisation_reference",
		"  Email ":               "email",
		"MobileNumber":           "mobile_number",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeFieldName(in), in)
	}
	assert.Equal(t, "first name", DisplayName("first_name"))
}

func TestParseReference(t *testing.T) {
	ref, err := ParseReference(" 11111111-1111-1111-1111-111111111111 ")
	require.NoError(t, err)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", ref)

	_, err = ParseReference("nope")
	assert.Error(t, err)
	assert.True(t, IsUUID(GenerateReference()))
}

func TestCanonicalReference(t *testing.T) {
	const want = "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee"
	for _, in := range []string{
		want,
		" aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee ",
		"AAAAAAAA-BBBB-4CCC-8DDD-EEEEEEEEEEEE",
		"{aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee}",
		"urn:uuid:aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee",
		"aaaaaaaabbbb4ccc8dddeeeeeeeeeeee",
	} {
		assert.Equal(t, want, CanonicalReference(in), in)
	}
	assert.Equal(t, "not-a-uuid", CanonicalReference(" not-a-uuid "))
}

func TestAPIKeyHashRoundTrip(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.Contains(t, key, APIKeyPrefix+"_")

	hash, err := HashAPIKey(key)
	require.NoError(t, err)
	assert.True(t, VerifyAPIKey(key, hash))
	assert.False(t, VerifyAPIKey(key+"x", hash))
}
