package model

// Organisation is one membership held by a user. References and names are
// unique within a user's membership set.
type Organisation struct {
	OrganisationReference string      `bson:"organisation_reference" json:"organisation_reference"`
	OrganisationName      string      `bson:"organisation_name" json:"organisation_name"`
	Department            *Department `bson:"department,omitempty" json:"department,omitempty"`
	Address               *Address    `bson:"address,omitempty" json:"address,omitempty"`
}

type Department struct {
	DepartmentReference string `bson:"department_reference" json:"department_reference"`
	DepartmentName      string `bson:"department_name" json:"department_name"`
}

type Address struct {
	HouseNameOrNumber string `bson:"house_name_or_number" json:"house_name_or_number"`
	AddressLine1      string `bson:"address_line_1" json:"address_line_1"`
	AddressLine2      string `bson:"address_line_2,omitempty" json:"address_line_2,omitempty"`
	Street            string `bson:"street" json:"street"`
	City              string `bson:"city" json:"city"`
	County            string `bson:"county" json:"county"`
	Postcode          string `bson:"postcode" json:"postcode"`
	Country           string `bson:"country" json:"country"`
}
