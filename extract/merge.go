package extract

import "go-docextract/models"

// The merge tables are written out field by field on purpose: the canonical
// schema is small and an explicit list keeps the first-non-empty-wins rule
// type-checked. Note the rule is order-dependent, not commutative — when two
// sources disagree on a field, whichever was merged first keeps it.

func fillString(dst *string, src string) int {
	if *dst == "" && src != "" {
		*dst = src
		return 1
	}
	return 0
}

func fillBool(dst *bool, src bool) int {
	if !*dst && src {
		*dst = true
		return 1
	}
	return 0
}

// mergePassport fills dst's empty fields from src and reports how many
// fields were filled.
func mergePassport(dst, src *models.PassportRecord) int {
	filled := 0
	filled += fillString(&dst.DocumentType, src.DocumentType)
	filled += fillString(&dst.IssuingCountry, src.IssuingCountry)
	filled += fillString(&dst.Surname, src.Surname)
	filled += fillString(&dst.GivenNames, src.GivenNames)
	filled += fillString(&dst.DocumentNumber, src.DocumentNumber)
	filled += fillString(&dst.Nationality, src.Nationality)
	filled += fillString(&dst.DateOfBirth, src.DateOfBirth)
	filled += fillString(&dst.Sex, src.Sex)
	filled += fillString(&dst.ExpirationDate, src.ExpirationDate)
	return filled
}

// mergeAuthForm fills dst's empty fields from src and reports how many
// fields were filled.
func mergeAuthForm(dst, src *models.AuthFormRecord) int {
	filled := 0
	filled += fillString(&dst.Representative.FamilyName, src.Representative.FamilyName)
	filled += fillString(&dst.Representative.GivenName, src.Representative.GivenName)
	filled += fillString(&dst.Representative.MiddleName, src.Representative.MiddleName)
	filled += fillString(&dst.Representative.FirmName, src.Representative.FirmName)
	filled += fillString(&dst.Representative.Address.Street, src.Representative.Address.Street)
	filled += fillString(&dst.Representative.Address.Suite, src.Representative.Address.Suite)
	filled += fillString(&dst.Representative.Address.City, src.Representative.Address.City)
	filled += fillString(&dst.Representative.Address.State, src.Representative.Address.State)
	filled += fillString(&dst.Representative.Address.ZipCode, src.Representative.Address.ZipCode)
	filled += fillString(&dst.Representative.Phone, src.Representative.Phone)
	filled += fillString(&dst.Representative.Email, src.Representative.Email)
	filled += fillBool(&dst.Eligibility.IsAttorney, src.Eligibility.IsAttorney)
	filled += fillString(&dst.Eligibility.BarNumber, src.Eligibility.BarNumber)
	filled += fillBool(&dst.Eligibility.IsAccreditedRep, src.Eligibility.IsAccreditedRep)
	filled += fillString(&dst.Client.FamilyName, src.Client.FamilyName)
	filled += fillString(&dst.Client.GivenName, src.Client.GivenName)
	filled += fillString(&dst.Client.MiddleName, src.Client.MiddleName)
	filled += fillString(&dst.Client.Phone, src.Client.Phone)
	filled += fillString(&dst.Client.Email, src.Client.Email)
	filled += fillString(&dst.Client.AlienNumber, src.Client.AlienNumber)
	return filled
}
