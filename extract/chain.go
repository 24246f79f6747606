// Package extract sequences the extraction providers for each document type
// and produces one normalized, validated result per request.
package extract

import (
	"context"
	"fmt"
	"strings"

	"go-docextract/models"
)

// Outcome is what one chain stage produces: a candidate record, a skip, or a
// failure. A failed stage may still attach a best-effort record so partial
// data survives to the final result.
type Outcome[T any] struct {
	record     *T
	confidence float64
	warnings   []string
	failures   []models.ExtractionError
}

// Success returns the outcome for a stage that produced a candidate record.
func Success[T any](record *T, confidence float64) Outcome[T] {
	return Outcome[T]{record: record, confidence: confidence}
}

// SoftFail returns the outcome for a stage that was skipped; the warning
// explains why.
func SoftFail[T any](warning string) Outcome[T] {
	return Outcome[T]{warnings: []string{warning}}
}

// HardFail returns the outcome for a stage that was attempted and failed.
func HardFail[T any](failures ...models.ExtractionError) Outcome[T] {
	return Outcome[T]{failures: failures}
}

// WithRecord attaches decoded-but-untrusted data to a failed outcome.
func (o Outcome[T]) WithRecord(record *T) Outcome[T] {
	o.record = record
	return o
}

// WithWarnings appends warnings gathered while the stage ran.
func (o Outcome[T]) WithWarnings(warnings ...string) Outcome[T] {
	o.warnings = append(o.warnings, warnings...)
	return o
}

// Stage is one link of the fallback chain.
type Stage[T any] struct {
	Name models.ExtractionMethod
	Run  func(ctx context.Context) Outcome[T]
}

// chainResult is the driver's verdict over a whole chain.
type chainResult[T any] struct {
	Record     *T
	Method     models.ExtractionMethod
	Confidence float64
	Success    bool
	Warnings   []string
	Errors     []models.ExtractionError
}

// runChain tries each stage in order and short-circuits on the first
// candidate that passes schema validation. Failed stages become warnings and
// fall through; their structured errors only surface when every stage has
// been exhausted. Records from failed stages are folded into a best-effort
// partial (earlier stages win per field) that is returned either as the
// failure payload or, when a later stage is accepted, to fill the accepted
// record's gaps — in which case the method is reported as combined.
func runChain[T any](
	ctx context.Context,
	stages []Stage[T],
	validate func(*T) []string,
	merge func(dst, src *T) int,
) chainResult[T] {
	var partial *T
	var warnings []string
	var failures []models.ExtractionError

	for _, stage := range stages {
		if ctx.Err() != nil {
			warnings = append(warnings, fmt.Sprintf("%s: skipped, extraction cancelled", stage.Name))
			continue
		}

		outcome := stage.Run(ctx)
		warnings = append(warnings, outcome.warnings...)

		if len(outcome.failures) > 0 {
			for _, failure := range outcome.failures {
				warnings = append(warnings, fmt.Sprintf("%s: %s", stage.Name, failure.Error()))
			}
			failures = append(failures, outcome.failures...)
			partial = foldPartial(partial, outcome.record, merge)
			continue
		}
		if outcome.record == nil {
			continue
		}

		candidate := outcome.record
		if fields := validate(candidate); len(fields) > 0 {
			warnings = append(warnings, fmt.Sprintf("%s: result failed schema validation (%s)",
				stage.Name, strings.Join(fields, ", ")))
			failures = append(failures, models.ValidationFailed(fields))
			partial = foldPartial(partial, candidate, merge)
			continue
		}

		accepted := *candidate
		method := stage.Name
		if partial != nil {
			enriched := accepted
			if merge(&enriched, partial) > 0 && len(validate(&enriched)) == 0 {
				accepted = enriched
				method = models.MethodCombined
			}
		}
		return chainResult[T]{
			Record:     &accepted,
			Method:     method,
			Confidence: outcome.confidence,
			Success:    true,
			Warnings:   warnings,
		}
	}

	// Exhausted. Best-effort data is still returned, flagged by Success=false.
	return chainResult[T]{
		Record:   partial,
		Warnings: warnings,
		Errors:   failures,
	}
}

func foldPartial[T any](partial, record *T, merge func(dst, src *T) int) *T {
	if record == nil {
		return partial
	}
	if partial == nil {
		copied := *record
		return &copied
	}
	merge(partial, record)
	return partial
}

func (r chainResult[T]) toExtractionResult() models.ExtractionResult[T] {
	return models.ExtractionResult[T]{
		Success:    r.Success,
		Data:       r.Record,
		Method:     r.Method,
		Confidence: r.Confidence,
		Errors:     r.Errors,
		Warnings:   r.Warnings,
	}
}
