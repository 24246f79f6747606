package extract

import (
	"context"

	"github.com/go-playground/validator/v10"

	"go-docextract/models"
	"go-docextract/providers"
)

// Confidence assigned to providers that do not report their own score.
const (
	visionConfidence   = 0.95
	templateConfidence = 0.90
)

// PassportOCRProvider is the specialized passport OCR service.
type PassportOCRProvider interface {
	Name() string
	Enabled() bool
	Extract(ctx context.Context, content []byte, mimeType string) (*models.PassportRecord, float64, error)
}

// VisionProvider extracts representative-form fields one page at a time.
type VisionProvider interface {
	Name() string
	Enabled() bool
	ExtractPage(ctx context.Context, page []byte, mediaType string) (*models.AuthFormRecord, error)
}

// TemplateProvider is the generic template-extraction fallback for both
// document types.
type TemplateProvider interface {
	Name() string
	Enabled() bool
	ExtractPassport(ctx context.Context, content []byte, mimeType string) (*models.PassportRecord, error)
	ExtractAuthForm(ctx context.Context, pages [][]byte) (*models.AuthFormRecord, error)
}

// PageConverter splits a PDF into per-page images via the external
// conversion service.
type PageConverter interface {
	Enabled() bool
	ToPageImages(ctx context.Context, pdf []byte, maxPages int) ([][]byte, error)
}

// Config tunes the orchestrator. Zero values fall back to the defaults.
type Config struct {
	MaxPages    int `json:"max_pages"    validate:"omitempty,min=1,max=10"`
	PageWorkers int `json:"page_workers" validate:"omitempty,min=1,max=8"`
}

const (
	defaultMaxPages    = 4
	defaultPageWorkers = 2
)

func (c Config) maxPages() int {
	if c.MaxPages <= 0 {
		return defaultMaxPages
	}
	return c.MaxPages
}

func (c Config) pageWorkers() int {
	if c.PageWorkers <= 0 {
		return defaultPageWorkers
	}
	return c.PageWorkers
}

// Orchestrator runs the fallback chains. It is stateless between requests
// and safe for concurrent use.
type Orchestrator struct {
	cfg       Config
	ocr       PassportOCRProvider
	vision    VisionProvider
	template  TemplateProvider
	converter PageConverter
	validate  *validator.Validate
}

// NewOrchestrator wires the orchestrator. ocr, vision and converter may be
// nil when the deployment does not run those services; template is the
// terminal fallback and must be present.
func NewOrchestrator(
	cfg Config,
	ocr PassportOCRProvider,
	vision VisionProvider,
	template TemplateProvider,
	converter PageConverter,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		ocr:       ocr,
		vision:    vision,
		template:  template,
		converter: converter,
		validate:  newValidator(),
	}
}

// providerFailure converts a classified provider error into the matching
// result diagnostic.
func providerFailure(err error) models.ExtractionError {
	perr := providers.AsProviderError(err)
	if perr.Class == providers.ClassTimeout {
		return models.ApiTimeout(perr.Message)
	}
	return models.ApiError(perr.Message, perr.StatusCode)
}
