package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"go-docextract/models"
	"go-docextract/normalize"
	"go-docextract/providers"
)

// ExtractAuthForm runs the representative-form chain: the document is split
// into page images, every page goes through the vision provider with a
// bounded worker count, and the per-page records are merged field by field
// with earlier pages winning. The template service is attempted on the same
// page set when the vision provider is disabled, timed out, or failed
// retryably.
func (o *Orchestrator) ExtractAuthForm(ctx context.Context, content []byte, mimeType string) models.ExtractionResult[models.AuthFormRecord] {
	pages, pageMediaType, err := o.splitPages(ctx, content, mimeType)
	if err == nil && len(pages) == 0 {
		err = &providers.Error{Class: providers.ClassHardFailure, Message: "document produced no pages"}
	}
	if err != nil {
		failure := providerFailure(err)
		slog.Warn("auth form page conversion failed", "error", err)
		return models.ExtractionResult[models.AuthFormRecord]{
			Success:  false,
			Errors:   []models.ExtractionError{failure},
			Warnings: []string{fmt.Sprintf("page conversion: %s", failure.Error())},
		}
	}

	// The vision failure classification gates the template fallback.
	var visionFailure *providers.Error

	stages := []Stage[models.AuthFormRecord]{
		{Name: models.MethodVision, Run: o.authFormVisionStage(pages, pageMediaType, &visionFailure)},
		{Name: models.MethodTemplate, Run: o.authFormTemplateStage(pages, &visionFailure)},
	}

	result := runChain(ctx, stages, o.validateAuthForm, mergeAuthForm).toExtractionResult()
	slog.Info("auth form extraction finished",
		"success", result.Success,
		"method", result.Method,
		"pages", len(pages),
		"warning_count", len(result.Warnings),
	)
	return result
}

// splitPages turns the upload into the page set the providers work on.
// Images are a single page as-is; PDFs go through the conversion service.
func (o *Orchestrator) splitPages(ctx context.Context, content []byte, mimeType string) ([][]byte, string, error) {
	if mimeType != "application/pdf" {
		return [][]byte{content}, mimeType, nil
	}

	if o.converter == nil || !o.converter.Enabled() {
		return nil, "", &providers.Error{
			Class:   providers.ClassDisabled,
			Message: "page conversion service disabled, cannot process PDF",
		}
	}

	pages, err := o.converter.ToPageImages(ctx, content, o.cfg.maxPages())
	if err != nil {
		return nil, "", err
	}
	return pages, "image/png", nil
}

func (o *Orchestrator) authFormVisionStage(pages [][]byte, mediaType string, visionFailure **providers.Error) func(context.Context) Outcome[models.AuthFormRecord] {
	return func(ctx context.Context) Outcome[models.AuthFormRecord] {
		if o.vision == nil || !o.vision.Enabled() {
			*visionFailure = &providers.Error{Class: providers.ClassDisabled, Message: "vision provider disabled"}
			return SoftFail[models.AuthFormRecord]("vision: provider disabled")
		}

		records := make([]*models.AuthFormRecord, len(pages))
		pageErrs := make([]error, len(pages))

		// Pages are independent; the merge happens after the join below.
		sem := semaphore.NewWeighted(int64(o.cfg.pageWorkers()))
		var wg sync.WaitGroup
		for i := range pages {
			if err := sem.Acquire(ctx, 1); err != nil {
				pageErrs[i] = err
				continue
			}
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer sem.Release(1)
				records[i], pageErrs[i] = o.vision.ExtractPage(ctx, pages[i], mediaType)
			}(i)
		}
		wg.Wait()

		var merged *models.AuthFormRecord
		var warnings []string
		var firstFailure *providers.Error
		for i := range pages {
			if pageErrs[i] != nil {
				perr := providers.AsProviderError(pageErrs[i])
				if firstFailure == nil {
					firstFailure = perr
				}
				warnings = append(warnings, fmt.Sprintf("vision: page %d failed: %s", i+1, perr.Error()))
				continue
			}
			merged = foldPartial(merged, records[i], mergeAuthForm)
		}

		if merged == nil {
			*visionFailure = firstFailure
			return HardFail[models.AuthFormRecord](providerFailure(firstFailure)).WithWarnings(warnings...)
		}

		normalizeAuthForm(merged)
		return Success(merged, visionConfidence).WithWarnings(warnings...)
	}
}

func (o *Orchestrator) authFormTemplateStage(pages [][]byte, visionFailure **providers.Error) func(context.Context) Outcome[models.AuthFormRecord] {
	return func(ctx context.Context) Outcome[models.AuthFormRecord] {
		// Timeouts and retryable failures fall through to the template;
		// only a hard vision failure is final.
		if gate := *visionFailure; gate != nil &&
			gate.Class != providers.ClassDisabled &&
			gate.Class != providers.ClassTimeout &&
			!gate.Retryable() {
			return SoftFail[models.AuthFormRecord](
				fmt.Sprintf("template: fallback skipped, vision failure (%s) is not retryable", gate.Class))
		}
		if o.template == nil || !o.template.Enabled() {
			return SoftFail[models.AuthFormRecord]("template: provider disabled")
		}

		record, err := o.template.ExtractAuthForm(ctx, pages)
		if err != nil {
			return HardFail[models.AuthFormRecord](providerFailure(err))
		}
		normalizeAuthForm(record)
		return Success(record, templateConfidence)
	}
}

// normalizeAuthForm canonicalizes the merged form record: state codes,
// E.164 phones, lowercase emails, A-number format, diacritic-free names for
// the downstream form filler.
func normalizeAuthForm(record *models.AuthFormRecord) {
	rep := &record.Representative
	rep.FamilyName = cleanName(rep.FamilyName)
	rep.GivenName = cleanName(rep.GivenName)
	rep.MiddleName = cleanName(rep.MiddleName)
	rep.FirmName = cleanName(rep.FirmName)
	rep.Address.Street = strings.TrimSpace(rep.Address.Street)
	rep.Address.Suite = strings.TrimSpace(rep.Address.Suite)
	rep.Address.City = strings.TrimSpace(rep.Address.City)
	rep.Address.State = normalize.State(rep.Address.State)
	rep.Address.ZipCode = strings.TrimSpace(rep.Address.ZipCode)
	rep.Phone = normalize.PhoneE164(rep.Phone)
	rep.Email = normalize.Email(rep.Email)

	record.Eligibility.BarNumber = strings.TrimSpace(record.Eligibility.BarNumber)

	client := &record.Client
	client.FamilyName = cleanName(client.FamilyName)
	client.GivenName = cleanName(client.GivenName)
	client.MiddleName = cleanName(client.MiddleName)
	client.Phone = normalize.PhoneE164(client.Phone)
	client.Email = normalize.Email(client.Email)
	client.AlienNumber = normalize.AlienNumber(client.AlienNumber)
}

func cleanName(name string) string {
	return normalize.FoldDiacritics(strings.TrimSpace(name))
}
