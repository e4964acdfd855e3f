package model

// CreateUserRequest is the payload of POST /api/users.
type CreateUserRequest struct {
	UserReference      string         `json:"user_reference"`
	Email              string         `json:"email"`
	FirstName          string         `json:"first_name,omitempty"`
	LastName           string         `json:"last_name,omitempty"`
	MobileNumber       string         `json:"mobile_number,omitempty"`
	ConsentPreferences map[string]any `json:"consent_preferences,omitempty"`
}

// UpdateUserRequest is the payload of PUT /api/users/:ref.
type UpdateUserRequest struct {
	FirstName          string         `json:"first_name"`
	LastName           string         `json:"last_name"`
	MobileNumber       string         `json:"mobile_number"`
	ConsentPreferences map[string]any `json:"consent_preferences"`
}

// AddOrganisationRequest is the payload of POST /api/users/:ref/organisations.
type AddOrganisationRequest struct {
	Organisation Organisation `json:"organisation"`
}

// RemoveOrganisationRequest identifies the membership to drop.
type RemoveOrganisationRequest struct {
	OrganisationReference string `json:"organisation_reference"`
}

// UserQuery filters GET /api/users. Empty fields are ignored.
type UserQuery struct {
	FirstName             string
	LastName              string
	Email                 string
	OrganisationReference string
	IsActive              *bool
}

// IsEmpty reports whether no filter is set.
func (q UserQuery) IsEmpty() bool {
	return q.FirstName == "" && q.LastName == "" && q.Email == "" &&
		q.OrganisationReference == "" && q.IsActive == nil
}
