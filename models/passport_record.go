package models

// PassportRecord holds the canonical passport fields produced by extraction.
// Dates are ISO calendar dates (YYYY-MM-DD). Everything except the holder
// name is allowed to be absent so partial results can be returned.
type PassportRecord struct {
	DocumentType   string `json:"document_type,omitempty"`
	IssuingCountry string `json:"issuing_country,omitempty" validate:"omitempty,min=1,max=3,alpha"`
	Surname        string `json:"surname"                   validate:"required"`
	GivenNames     string `json:"given_names"               validate:"required"`
	DocumentNumber string `json:"document_number,omitempty"`
	Nationality    string `json:"nationality,omitempty"     validate:"omitempty,min=1,max=3,alpha"`
	DateOfBirth    string `json:"date_of_birth,omitempty"   validate:"omitempty,datetime=2006-01-02"`
	Sex            string `json:"sex,omitempty"             validate:"omitempty,oneof=M F X"`
	ExpirationDate string `json:"expiration_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
