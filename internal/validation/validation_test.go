package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/domainerr"
	"userhub/internal/model"
)

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	require.Error(t, err)
	de, ok := domainerr.From(err)
	require.True(t, ok, "expected a domain error, got %T", err)
	assert.Equal(t, domainerr.KindValidation, de.Kind())
	return de.Fields()
}

func TestNonEmpty(t *testing.T) {
	assert.NoError(t, NonEmpty("Jane", "First name"))
	assert.NoError(t, NonEmpty(" a ", "first_name"))

	f := fieldsOf(t, NonEmpty("   ", "First name"))
	assert.Contains(t, f, "first_name")

	f = fieldsOf(t, NonEmpty(" 7 ", "lastName"))
	require.Contains(t, f, "last_name")
	assert.Contains(t, f["last_name"][0], `" 7 "`)

	fieldsOf(t, NonEmpty("$", "city"))
}

func TestFormatRules(t *testing.T) {
	assert.NoError(t, Email("a@b.com"))
	assert.Contains(t, fieldsOf(t, Email("a@b")), FieldEmail)

	assert.NoError(t, Mobile("+447700900123"))
	assert.Contains(t, fieldsOf(t, Mobile("07700 900123")), FieldMobileNumber)

	assert.NoError(t, UUID("11111111-1111-1111-1111-111111111111"))
	assert.Contains(t, fieldsOf(t, UUIDField("x1", "organisation reference")), FieldOrganisationReference)

	assert.NoError(t, Postcode("sw1a 1aa", "postcode"))
	assert.Contains(t, fieldsOf(t, Postcode("90210", "postcode")), "postcode")
}

func TestConsent(t *testing.T) {
	template := map[string]bool{"privacy_policy": true, "marketing_emails": false}

	t.Run("compliant", func(t *testing.T) {
		assert.NoError(t, Consent(map[string]any{"privacy_policy": true, "marketing_emails": false}, template))
		assert.NoError(t, Consent(map[string]any{"privacy_policy": true}, template))
	})

	t.Run("missing mandatory", func(t *testing.T) {
		f := fieldsOf(t, Consent(map[string]any{"marketing_emails": true}, template))
		assert.Contains(t, f, "privacy_policy")
	})

	t.Run("unexpected key", func(t *testing.T) {
		f := fieldsOf(t, Consent(map[string]any{"privacy_policy": true, "foo": true}, template))
		require.Contains(t, f, "foo")
		assert.Contains(t, f["foo"][0], "unexpected")
	})

	t.Run("all violations reported", func(t *testing.T) {
		f := fieldsOf(t, Consent(map[string]any{"privacy_policy": false, "marketing_emails": "yes", "foo": 1}, template))
		assert.Len(t, f, 3)
		assert.Contains(t, f["privacy_policy"][0], "must be accepted")
		assert.Contains(t, f["marketing_emails"][0], "boolean")
	})
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	assert.NoError(t, c.Err())

	c.Add(nil)
	c.Add(Email("bad"))
	c.Add(NonEmpty("", "first_name"))
	c.Add(assert.AnError)
	c.Check("mobile_number", false, "required")

	f := fieldsOf(t, c.Err())
	assert.Len(t, f, 4)
	for _, k := range []string{"email", "first_name", "message", "mobile_number"} {
		assert.Contains(t, f, k)
	}
}

func TestJoin(t *testing.T) {
	assert.NoError(t, Join(nil, nil))

	f := fieldsOf(t, Join(UUID("nope"), nil, Email("bad"), Consent(map[string]any{}, map[string]bool{"privacy_policy": true})))
	assert.ElementsMatch(t, []string{"user_reference", "email", "privacy_policy"}, keys(f))
}

func TestWalker(t *testing.T) {
	payload := map[string]any{
		"email": "nope",
		"address": map[string]any{
			"postcode": "12345",
			"city":     "London",
		},
		"organisations": []any{
			map[string]any{"organisation_name": "Acme"},
			map[string]any{"organisation_name": "B"},
			map[string]any{"organisation_name": " ", "organisation_reference": "bad"},
		},
		"consent_preferences": map[string]any{"marketing_emails": true},
		"age":                 42,
	}

	f := fieldsOf(t, DefaultWalker().Validate(payload))
	assert.Contains(t, f, "email")
	assert.Contains(t, f, "address.postcode")
	assert.Contains(t, f, "organisations[2].organisation_name")
	assert.Contains(t, f, "organisations[2].organisation_reference")
	assert.NotContains(t, f, "address.city")
	assert.NotContains(t, f, "organisations[1].organisation_name")
	assert.Len(t, f, 4)
}

func TestWalkerFreshAccumulator(t *testing.T) {
	w := DefaultWalker()
	require.Error(t, w.Validate(map[string]any{"email": "bad"}))
	assert.NoError(t, w.Validate(map[string]any{"email": "a@b.com"}))
}

func TestWalkerCustomRules(t *testing.T) {
	w := NewWalker(func(key, _ string) Rule {
		if key == "code" {
			return RuleText
		}
		return RuleSkip
	}, map[Rule]Func{RuleText: NonEmpty})

	f := fieldsOf(t, w.Validate([]any{map[string]any{"code": "", "other": ""}}))
	assert.Equal(t, []string{"[0].code"}, keys(f))
}

func keys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestCreateUserAggregates(t *testing.T) {
	template := map[string]bool{"privacy_policy": true}

	assert.NoError(t, CreateUser(model.CreateUserRequest{
		UserReference: "11111111-1111-1111-1111-111111111111",
		Email:         "a@b.com",
	}, template))

	f := fieldsOf(t, CreateUser(model.CreateUserRequest{
		UserReference:      "nope",
		Email:              "bad",
		FirstName:          "1",
		MobileNumber:       "123",
		ConsentPreferences: map[string]any{},
	}, template))
	for _, k := range []string{"user_reference", "email", "first_name", "mobile_number", "privacy_policy"} {
		assert.Contains(t, f, k)
	}
}

func TestUpdateUserRequiresConsent(t *testing.T) {
	f := fieldsOf(t, UpdateUser(model.UpdateUserRequest{
		FirstName:    "Jane",
		LastName:     "Doe",
		MobileNumber: "+447700900123",
	}, map[string]bool{"privacy_policy": true}))
	assert.Equal(t, []string{"privacy_policy"}, keys(f))
}

func TestOrganisation(t *testing.T) {
	org := model.Organisation{
		OrganisationReference: "22222222-2222-2222-2222-222222222222",
		OrganisationName:      "Acme",
		Department:            &model.Department{DepartmentReference: "x", DepartmentName: "Sales"},
		Address: &model.Address{
			HouseNameOrNumber: "10",
			AddressLine1:      "Main",
			Street:            "High Street",
			City:              "London",
			County:            "Greater London",
			Postcode:          "SW1A 1AA",
			Country:           "UK",
		},
	}
	f := fieldsOf(t, Organisation(org))
	assert.Equal(t, []string{"department.department_reference"}, keys(f))

	org.Department = nil
	assert.NoError(t, Organisation(org))

	assert.NoError(t, RemoveOrganisation(model.RemoveOrganisationRequest{OrganisationReference: org.OrganisationReference}))
	fieldsOf(t, RemoveOrganisation(model.RemoveOrganisationRequest{}))
}
