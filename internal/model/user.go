package model

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"userhub/pkg/util"
)

// TimestampLayout is the ISO-8601 layout used for stored timestamps.
const TimestampLayout = time.RFC3339Nano

// User is the aggregate root: the user record plus its organisation memberships.
type User struct {
	UserReference      string          `bson:"user_reference" json:"user_reference"`
	FirstName          string          `bson:"first_name" json:"first_name"`
	LastName           string          `bson:"last_name" json:"last_name"`
	MobileNumber       string          `bson:"mobile_number" json:"mobile_number"`
	Email              string          `bson:"email" json:"email"`
	IsActive           bool            `bson:"is_active" json:"is_active"`
	IsVerifiedEmail    bool            `bson:"is_verified_email" json:"is_verified_email"`
	IsVerifiedPhone    bool            `bson:"is_verified_phone" json:"is_verified_phone"`
	ConsentPreferences map[string]bool `bson:"consent_preferences" json:"consent_preferences"`
	CreatedAt          string          `bson:"created_at_timestamp" json:"created_at_timestamp"`
	UpdatedAt          string          `bson:"updated_at_timestamp" json:"updated_at_timestamp"`
	CreatedBy          string          `bson:"created_by_user_reference" json:"created_by_user_reference"`
	UpdatedBy          string          `bson:"updated_by_user_reference" json:"updated_by_user_reference"`
	Organisations      []Organisation  `bson:"organisations" json:"organisations"`
}

// NewUser builds an active, unverified user from a creation request.
func NewUser(req CreateUserRequest, actor string, now time.Time) *User {
	ts := now.UTC().Format(TimestampLayout)
	return &User{
		UserReference:      util.CanonicalReference(req.UserReference),
		FirstName:          CapitalizeName(req.FirstName),
		LastName:           CapitalizeName(req.LastName),
		MobileNumber:       strings.TrimSpace(req.MobileNumber),
		Email:              NormalizeEmail(req.Email),
		IsActive:           true,
		ConsentPreferences: consentBools(req.ConsentPreferences),
		CreatedAt:          ts,
		UpdatedAt:          ts,
		CreatedBy:          actor,
		UpdatedBy:          actor,
		Organisations:      []Organisation{},
	}
}

// GetReference implements generic.Entity.
func (u *User) GetReference() string { return u.UserReference }

// FullName is derived and never stored.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ApplyUpdate overwrites the self-service fields.
func (u *User) ApplyUpdate(req UpdateUserRequest, actor string, now time.Time) {
	u.FirstName = CapitalizeName(req.FirstName)
	u.LastName = CapitalizeName(req.LastName)
	u.MobileNumber = strings.TrimSpace(req.MobileNumber)
	u.ConsentPreferences = consentBools(req.ConsentPreferences)
	u.Touch(actor, now)
}

// Touch records a mutation by actor at now.
func (u *User) Touch(actor string, now time.Time) {
	u.UpdatedAt = now.UTC().Format(TimestampLayout)
	if actor != "" {
		u.UpdatedBy = actor
	}
}

// FindOrganisationByName matches names case-insensitively after trimming.
func (u *User) FindOrganisationByName(name string) (Organisation, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, o := range u.Organisations {
		if strings.ToLower(strings.TrimSpace(o.OrganisationName)) == want {
			return o, true
		}
	}
	return Organisation{}, false
}

// FindOrganisationByReference compares canonical UUID forms.
func (u *User) FindOrganisationByReference(ref string) (Organisation, bool) {
	want := util.CanonicalReference(ref)
	for _, o := range u.Organisations {
		if util.CanonicalReference(o.OrganisationReference) == want {
			return o, true
		}
	}
	return Organisation{}, false
}

// AddOrganisation appends a membership. Callers check for conflicts first.
func (u *User) AddOrganisation(o Organisation) {
	u.Organisations = append(u.Organisations, o)
}

// RemoveOrganisation drops the membership with ref and reports whether one was removed.
func (u *User) RemoveOrganisation(ref string) bool {
	want := util.CanonicalReference(ref)
	for i, o := range u.Organisations {
		if util.CanonicalReference(o.OrganisationReference) == want {
			u.Organisations = append(u.Organisations[:i:i], u.Organisations[i+1:]...)
			return true
		}
	}
	return false
}

// CapitalizeName trims s and upper-cases the first letter, lower-casing the rest.
func CapitalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// consentBools keeps only the boolean entries. Input is validated before this runs.
func consentBools(in map[string]any) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		if b, ok := v.(bool); ok {
			out[k] = b
		}
	}
	return out
}
