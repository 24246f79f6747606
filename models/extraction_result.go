package models

// ExtractionMethod identifies which stage of the extraction chain produced
// the accepted record.
type ExtractionMethod string

const (
	MethodMRZ      ExtractionMethod = "mrz"
	MethodOCR      ExtractionMethod = "ocr"
	MethodVision   ExtractionMethod = "vision"
	MethodTemplate ExtractionMethod = "template"
	// MethodCombined is reported when more than one stage contributed
	// fields to the final record.
	MethodCombined ExtractionMethod = "combined"
)

// ExtractionResult wraps an extracted record together with its diagnostics.
//
// Success=false implies the data is either nil or failed schema validation;
// the record is still carried in that case so the caller can show a partial
// result next to the structured errors.
type ExtractionResult[T any] struct {
	Success    bool              `json:"success"`
	Data       *T                `json:"data"`
	Method     ExtractionMethod  `json:"method,omitempty"`
	Confidence float64           `json:"confidence"`
	Errors     []ExtractionError `json:"errors,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
}
