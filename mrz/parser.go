package mrz

import (
	"strings"

	"go-docextract/models"
	"go-docextract/normalize"
)

// TD3 line 2 field offsets, 0-indexed.
const (
	docNumberStart     = 0
	docNumberEnd       = 9
	docNumberCheckPos  = 9
	nationalityStart   = 10
	nationalityEnd     = 13
	birthDateStart     = 13
	birthDateEnd       = 19
	birthDateCheckPos  = 19
	sexPos             = 20
	expiryDateStart    = 21
	expiryDateEnd      = 27
	expiryDateCheckPos = 27
)

const (
	baseConfidence    = 0.98
	checkDigitPenalty = 0.15
	confidenceFloor   = 0.50
)

// ParseResult carries the decoded record together with its integrity
// diagnostics. Success means every check digit matched; the record is
// populated either way because flagged partial data beats nothing.
type ParseResult struct {
	Record     models.PassportRecord
	Confidence float64
	Errors     []models.ExtractionError
}

// Success reports whether the block decoded without integrity failures.
func (r ParseResult) Success() bool {
	return len(r.Errors) == 0
}

// Parse decodes a detected TD3 block into a passport record. It never fails:
// check-digit mismatches are recorded as diagnostics while the affected
// fields are still decoded. The final composite check digit over the whole
// of line 2 is not validated here.
func Parse(lines Lines) ParseResult {
	line1, line2 := lines.Line1, lines.Line2

	surname, givenNames := decomposeName(line1[5:44])

	record := models.PassportRecord{
		DocumentType:   string(line1[0]),
		IssuingCountry: stripFiller(line1[2:5]),
		Surname:        surname,
		GivenNames:     givenNames,
		DocumentNumber: stripFiller(line2[docNumberStart:docNumberEnd]),
		Nationality:    stripFiller(line2[nationalityStart:nationalityEnd]),
		DateOfBirth:    ParseDate(line2[birthDateStart:birthDateEnd], false),
		Sex:            normalize.Sex(string(line2[sexPos])),
		ExpirationDate: ParseDate(line2[expiryDateStart:expiryDateEnd], true),
	}

	var errs []models.ExtractionError
	if !checkDigitMatches(line2[docNumberStart:docNumberEnd], line2[docNumberCheckPos]) {
		errs = append(errs, models.InvalidCheckDigit("document_number"))
	}
	if !checkDigitMatches(line2[birthDateStart:birthDateEnd], line2[birthDateCheckPos]) {
		errs = append(errs, models.InvalidCheckDigit("date_of_birth"))
	}
	if !checkDigitMatches(line2[expiryDateStart:expiryDateEnd], line2[expiryDateCheckPos]) {
		errs = append(errs, models.InvalidCheckDigit("expiration_date"))
	}

	confidence := baseConfidence - checkDigitPenalty*float64(len(errs))
	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}

	return ParseResult{Record: record, Confidence: confidence, Errors: errs}
}

// decomposeName splits the line-1 name field into surname and given names.
// The segments are separated by the first "<<"; remaining fillers become
// single spaces, so multiple given names stay space-joined in order.
func decomposeName(field string) (surname, givenNames string) {
	field = strings.TrimRight(field, "<")
	surname, givenNames, _ = strings.Cut(field, "<<")
	return cleanNameSegment(surname), cleanNameSegment(givenNames)
}

func cleanNameSegment(segment string) string {
	return strings.TrimSpace(strings.ReplaceAll(segment, "<", " "))
}

func stripFiller(s string) string {
	return strings.ReplaceAll(s, "<", "")
}
