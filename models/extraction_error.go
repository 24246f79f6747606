package models

import (
	"fmt"
	"strings"
)

// ErrorCode enumerates every diagnostic the extraction pipeline can produce.
// The set is closed: callers may switch on it exhaustively.
type ErrorCode string

const (
	// ErrMrzNotFound means no machine-readable zone was present in the OCR
	// text. This is an expected outcome for non-passport uploads.
	ErrMrzNotFound ErrorCode = "mrz_not_found"
	// ErrMrzInvalidCheckDigit flags a decoded MRZ field whose check digit
	// did not match. Field names the affected field.
	ErrMrzInvalidCheckDigit ErrorCode = "mrz_invalid_check_digit"
	// ErrApiError covers any non-timeout failure of an external provider.
	ErrApiError ErrorCode = "api_error"
	// ErrApiTimeout means a provider call exceeded its configured deadline.
	ErrApiTimeout ErrorCode = "api_timeout"
	// ErrValidationFailed means a decoded record did not match the
	// canonical schema. Fields lists the offending field names.
	ErrValidationFailed ErrorCode = "validation_failed"
	// ErrInvalidFileType and ErrFileTooLarge are input-contract failures
	// surfaced before any extraction attempt.
	ErrInvalidFileType ErrorCode = "invalid_file_type"
	ErrFileTooLarge    ErrorCode = "file_too_large"
)

// ExtractionError is a terminal diagnostic, never used for control flow.
// Only the fields relevant to the code are populated.
type ExtractionError struct {
	Code       ErrorCode `json:"code"`
	Field      string    `json:"field,omitempty"`
	Message    string    `json:"message,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	Fields     []string  `json:"fields,omitempty"`
}

func (e ExtractionError) Error() string {
	switch e.Code {
	case ErrMrzInvalidCheckDigit:
		return fmt.Sprintf("%s: %s", e.Code, e.Field)
	case ErrValidationFailed:
		return fmt.Sprintf("%s: %s", e.Code, strings.Join(e.Fields, ", "))
	case ErrApiError:
		if e.StatusCode != 0 {
			return fmt.Sprintf("%s (status %d): %s", e.Code, e.StatusCode, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	default:
		if e.Message != "" {
			return fmt.Sprintf("%s: %s", e.Code, e.Message)
		}
		return string(e.Code)
	}
}

// InvalidCheckDigit builds the integrity-failure diagnostic for one MRZ field.
func InvalidCheckDigit(field string) ExtractionError {
	return ExtractionError{Code: ErrMrzInvalidCheckDigit, Field: field}
}

// ApiError builds a transport-failure diagnostic. statusCode may be zero when
// the failure happened before a response was received.
func ApiError(message string, statusCode int) ExtractionError {
	return ExtractionError{Code: ErrApiError, Message: message, StatusCode: statusCode}
}

// ApiTimeout builds the deadline-exceeded diagnostic for a provider call.
func ApiTimeout(message string) ExtractionError {
	return ExtractionError{Code: ErrApiTimeout, Message: message}
}

// ValidationFailed builds the shape-failure diagnostic listing the fields
// that did not match the canonical schema.
func ValidationFailed(fields []string) ExtractionError {
	return ExtractionError{Code: ErrValidationFailed, Fields: fields}
}

// InvalidFileType builds the upload-contract diagnostic for a rejected MIME type.
func InvalidFileType(message string) ExtractionError {
	return ExtractionError{Code: ErrInvalidFileType, Message: message}
}

// FileTooLarge builds the upload-contract diagnostic for an oversized upload.
func FileTooLarge(limit int64) ExtractionError {
	return ExtractionError{Code: ErrFileTooLarge, Message: fmt.Sprintf("file exceeds the %d byte limit", limit)}
}
