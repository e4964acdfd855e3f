package validation

import (
	"strings"

	"userhub/internal/model"
)

// CreateUser validates a creation payload. Names, mobile and consent are
// optional on creation but validated when present.
func CreateUser(req model.CreateUserRequest, template map[string]bool) error {
	c := NewCollector()
	c.Add(UUID(req.UserReference))
	c.Add(Email(req.Email))
	if req.FirstName != "" {
		c.Add(NonEmpty(req.FirstName, FieldFirstName))
	}
	if req.LastName != "" {
		c.Add(NonEmpty(req.LastName, FieldLastName))
	}
	if req.MobileNumber != "" {
		c.Add(Mobile(req.MobileNumber))
	}
	if req.ConsentPreferences != nil {
		c.Add(Consent(req.ConsentPreferences, template))
	}
	return c.Err()
}

// UpdateUser validates a self-service update. Every field is required.
func UpdateUser(req model.UpdateUserRequest, template map[string]bool) error {
	c := NewCollector()
	c.Add(NonEmpty(req.FirstName, FieldFirstName))
	c.Add(NonEmpty(req.LastName, FieldLastName))
	c.Add(Mobile(req.MobileNumber))
	c.Add(Consent(req.ConsentPreferences, template))
	return c.Err()
}

// Organisation validates a membership and its optional sub-records.
func Organisation(org model.Organisation) error {
	c := NewCollector()
	c.Add(UUIDField(org.OrganisationReference, FieldOrganisationReference))
	c.Add(NonEmpty(org.OrganisationName, FieldOrganisationName))

	if d := org.Department; d != nil {
		c.AddAt("department.department_reference", UUIDField(d.DepartmentReference, "department_reference"))
		c.AddAt("department.department_name", NonEmpty(d.DepartmentName, "department_name"))
	}

	if a := org.Address; a != nil {
		required := []struct{ key, value string }{
			{"house_name_or_number", a.HouseNameOrNumber},
			{"address_line_1", a.AddressLine1},
			{"street", a.Street},
			{"city", a.City},
			{"county", a.County},
			{"country", a.Country},
		}
		for _, f := range required {
			c.AddAt("address."+f.key, NonEmpty(f.value, f.key))
		}
		c.AddAt("address.postcode", Postcode(a.Postcode, "postcode"))
		if strings.TrimSpace(a.AddressLine2) != "" {
			c.AddAt("address.address_line_2", NonEmpty(a.AddressLine2, "address_line_2"))
		}
	}
	return c.Err()
}

func RemoveOrganisation(req model.RemoveOrganisationRequest) error {
	return UUIDField(req.OrganisationReference, FieldOrganisationReference)
}
