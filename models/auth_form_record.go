package models

// Address is a postal address as printed on the representative form.
type Address struct {
	Street  string `json:"street,omitempty"`
	Suite   string `json:"suite,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
}

// Representative holds the attorney/representative fields from part 1 of the form.
type Representative struct {
	FamilyName string  `json:"family_name,omitempty"`
	GivenName  string  `json:"given_name,omitempty"`
	MiddleName string  `json:"middle_name,omitempty"`
	FirmName   string  `json:"firm_name,omitempty"`
	Address    Address `json:"address"`
	Phone      string  `json:"phone,omitempty"`
	Email      string  `json:"email,omitempty"`
}

// Eligibility holds the eligibility statement from part 2 of the form.
type Eligibility struct {
	IsAttorney      bool   `json:"is_attorney"`
	BarNumber       string `json:"bar_number,omitempty"`
	IsAccreditedRep bool   `json:"is_accredited_rep"`
}

// Client holds the client fields from part 3 of the form.
type Client struct {
	FamilyName  string `json:"family_name,omitempty"`
	GivenName   string `json:"given_name,omitempty"`
	MiddleName  string `json:"middle_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	AlienNumber string `json:"alien_number,omitempty"`
}

// AuthFormRecord is the canonical representative-form record. Every field is
// optional: the form is frequently handwritten or partially scanned, so a
// sparse record is an accepted outcome rather than a failure.
type AuthFormRecord struct {
	Representative Representative `json:"representative"`
	Eligibility    Eligibility    `json:"eligibility"`
	Client         Client         `json:"client"`
}
