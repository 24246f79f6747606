package extract

import (
	"context"
	"sync"

	"go-docextract/models"
)

// Valid TD3 block used across the passport tests.
const testLine1 = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<"
const testLine2 = "L898902C36UTO7408122F3001156ZE184226B<<<<<10"
const testMRZText = testLine1 + "\n" + testLine2

// testLine2BadCheck corrupts the document number check digit, so the block
// decodes but is integrity-flagged.
const testLine2BadCheck = "L898902C30UTO7408122F3001156ZE184226B<<<<<10"

func validPassportRecord() *models.PassportRecord {
	return &models.PassportRecord{
		DocumentType:   "P",
		IssuingCountry: "UTO",
		Surname:        "ERIKSSON",
		GivenNames:     "ANNA MARIA",
		DocumentNumber: "L898902C3",
		Nationality:    "UTO",
		DateOfBirth:    "1974-08-12",
		Sex:            "F",
		ExpirationDate: "2030-01-15",
	}
}

type fakeOCR struct {
	enabled    bool
	record     *models.PassportRecord
	confidence float64
	err        error
	calls      int
}

func (f *fakeOCR) Name() string  { return "ocr" }
func (f *fakeOCR) Enabled() bool { return f.enabled }

func (f *fakeOCR) Extract(_ context.Context, _ []byte, _ string) (*models.PassportRecord, float64, error) {
	f.calls++
	if f.err != nil {
		return nil, 0, f.err
	}
	copied := *f.record
	return &copied, f.confidence, nil
}

type fakeVision struct {
	enabled bool
	// extract is called once per page; the fake serializes bookkeeping but
	// not the calls themselves.
	extract func(page []byte) (*models.AuthFormRecord, error)

	mu            sync.Mutex
	calls         int
	inFlight      int
	maxInFlight   int
	releaseCalled func()
}

func (f *fakeVision) Name() string  { return "vision" }
func (f *fakeVision) Enabled() bool { return f.enabled }

func (f *fakeVision) ExtractPage(_ context.Context, page []byte, _ string) (*models.AuthFormRecord, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	record, err := f.extract(page)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return record, err
}

type fakeTemplate struct {
	enabled       bool
	passport      *models.PassportRecord
	passportErr   error
	authForm      *models.AuthFormRecord
	authFormErr   error
	passportCalls int
	authFormCalls int
}

func (f *fakeTemplate) Name() string  { return "template" }
func (f *fakeTemplate) Enabled() bool { return f.enabled }

func (f *fakeTemplate) ExtractPassport(_ context.Context, _ []byte, _ string) (*models.PassportRecord, error) {
	f.passportCalls++
	if f.passportErr != nil {
		return nil, f.passportErr
	}
	copied := *f.passport
	return &copied, nil
}

func (f *fakeTemplate) ExtractAuthForm(_ context.Context, _ [][]byte) (*models.AuthFormRecord, error) {
	f.authFormCalls++
	if f.authFormErr != nil {
		return nil, f.authFormErr
	}
	copied := *f.authForm
	return &copied, nil
}

type fakeConverter struct {
	enabled  bool
	pages    [][]byte
	err      error
	calls    int
	maxPages int
}

func (f *fakeConverter) Enabled() bool { return f.enabled }

func (f *fakeConverter) ToPageImages(_ context.Context, _ []byte, maxPages int) ([][]byte, error) {
	f.calls++
	f.maxPages = maxPages
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}
