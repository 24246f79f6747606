package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go-docextract/models"
	"go-docextract/mrz"
	"go-docextract/normalize"
)

// MIME types the OCR provider can ingest.
var ocrMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// ExtractPassport runs the passport fallback chain: specialized OCR service,
// then MRZ parsing over the caller-supplied OCR text, then the template
// service as the terminal fallback. ocrText may be empty when the caller had
// no client-side OCR output to forward.
func (o *Orchestrator) ExtractPassport(ctx context.Context, content []byte, ocrText, mimeType string) models.ExtractionResult[models.PassportRecord] {
	stages := []Stage[models.PassportRecord]{
		{Name: models.MethodOCR, Run: o.passportOCRStage(content, mimeType)},
		{Name: models.MethodMRZ, Run: o.passportMRZStage(ocrText)},
		{Name: models.MethodTemplate, Run: o.passportTemplateStage(content, mimeType)},
	}

	result := runChain(ctx, stages, o.validatePassport, mergePassport).toExtractionResult()
	slog.Info("passport extraction finished",
		"success", result.Success,
		"method", result.Method,
		"confidence", result.Confidence,
		"warning_count", len(result.Warnings),
	)
	return result
}

func (o *Orchestrator) passportOCRStage(content []byte, mimeType string) func(context.Context) Outcome[models.PassportRecord] {
	return func(ctx context.Context) Outcome[models.PassportRecord] {
		if o.ocr == nil || !o.ocr.Enabled() {
			return SoftFail[models.PassportRecord]("ocr: provider disabled")
		}
		if !ocrMimeTypes[mimeType] {
			return SoftFail[models.PassportRecord](fmt.Sprintf("ocr: unsupported mime type %s", mimeType))
		}

		record, confidence, err := o.ocr.Extract(ctx, content, mimeType)
		if err != nil {
			return HardFail[models.PassportRecord](providerFailure(err))
		}
		normalizePassport(record)
		return Success(record, confidence)
	}
}

func (o *Orchestrator) passportMRZStage(ocrText string) func(context.Context) Outcome[models.PassportRecord] {
	return func(context.Context) Outcome[models.PassportRecord] {
		if ocrText == "" {
			return SoftFail[models.PassportRecord]("mrz: no ocr text supplied")
		}

		lines, found := mrz.Detect(ocrText)
		if !found {
			return HardFail[models.PassportRecord](models.ExtractionError{Code: models.ErrMrzNotFound})
		}

		parsed := mrz.Parse(lines)
		if !parsed.Success() {
			// Decoded but integrity-flagged: keep the data around for the
			// merge, let a later stage win the acceptance.
			return HardFail[models.PassportRecord](parsed.Errors...).WithRecord(&parsed.Record)
		}
		return Success(&parsed.Record, parsed.Confidence)
	}
}

func (o *Orchestrator) passportTemplateStage(content []byte, mimeType string) func(context.Context) Outcome[models.PassportRecord] {
	return func(ctx context.Context) Outcome[models.PassportRecord] {
		if o.template == nil || !o.template.Enabled() {
			return SoftFail[models.PassportRecord]("template: provider disabled")
		}

		record, err := o.template.ExtractPassport(ctx, content, mimeType)
		if err != nil {
			return HardFail[models.PassportRecord](providerFailure(err))
		}
		normalizePassport(record)
		return Success(record, templateConfidence)
	}
}

// normalizePassport canonicalizes the heterogeneous field representations
// providers return. MRZ output is already canonical; the normalizers are
// idempotent so it goes through the same path.
func normalizePassport(record *models.PassportRecord) {
	record.DocumentType = strings.TrimSpace(record.DocumentType)
	record.IssuingCountry = strings.ToUpper(strings.TrimSpace(record.IssuingCountry))
	record.Surname = strings.TrimSpace(record.Surname)
	record.GivenNames = strings.TrimSpace(record.GivenNames)
	record.DocumentNumber = strings.TrimSpace(record.DocumentNumber)
	record.Nationality = strings.ToUpper(strings.TrimSpace(record.Nationality))
	record.DateOfBirth = normalize.Date(record.DateOfBirth)
	record.Sex = normalize.Sex(record.Sex)
	record.ExpirationDate = normalize.Date(record.ExpirationDate)
}
