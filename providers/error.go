// Package providers holds the HTTP clients for the external extraction
// services. Each service is opaque: only its request/response contract and
// its failure classification matter to the orchestrator.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Class is the retryability classification of a provider failure.
type Class string

const (
	ClassTimeout       Class = "timeout"
	ClassRateLimited   Class = "rate_limited"
	ClassQuotaExceeded Class = "quota_exceeded"
	ClassHardFailure   Class = "hard_failure"
	ClassDisabled      Class = "disabled"
)

// Error is the failure every provider call returns. StatusCode is zero when
// the call failed before an HTTP response arrived.
type Error struct {
	Class      Class
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Class, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

// Retryable reports whether a different provider should be attempted in
// response to this failure. Timeouts trigger fallback too, but they are kept
// as their own class so the orchestrator can surface them distinctly.
func (e *Error) Retryable() bool {
	return e.Class == ClassRateLimited || e.Class == ClassQuotaExceeded
}

// AsProviderError extracts the classification from any error returned by a
// provider call, wrapping unclassified errors as hard failures.
func AsProviderError(err error) *Error {
	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}
	return &Error{Class: ClassHardFailure, Message: err.Error()}
}

// classifyTransport maps a transport-level failure onto a class.
func classifyTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Class: ClassTimeout, Message: err.Error()}
	}
	return &Error{Class: ClassHardFailure, Message: err.Error()}
}

// classifyResponse maps a non-200 response onto a class. The services report
// their own error taxonomy in error_type, which takes precedence over the
// HTTP status.
func classifyResponse(status int, errorType, message string) *Error {
	class := ClassHardFailure
	switch errorType {
	case "RATE_LIMIT_ERROR":
		class = ClassRateLimited
	case "BILLING_ERROR":
		class = ClassQuotaExceeded
	default:
		switch status {
		case http.StatusTooManyRequests:
			class = ClassRateLimited
		case http.StatusPaymentRequired:
			class = ClassQuotaExceeded
		}
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{Class: class, Message: message, StatusCode: status}
}
