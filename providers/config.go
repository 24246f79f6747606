package providers

import "time"

// ServiceConfig configures one external extraction service.
type ServiceConfig struct {
	Enabled        bool   `json:"enabled"`
	BaseURL        string `json:"base_url"        validate:"required_if=Enabled true,omitempty,url"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"omitempty,min=1,max=300"`
}

const defaultTimeout = 30 * time.Second

// Timeout returns the per-call deadline for the service.
func (c ServiceConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Config holds the configuration for every provider the orchestrator can
// reach. Template is the terminal fallback and must be configured; the
// others may be disabled per deployment.
type Config struct {
	OCR           ServiceConfig `json:"ocr"`
	Vision        ServiceConfig `json:"vision"`
	Template      ServiceConfig `json:"template"       validate:"required"`
	PageConverter ServiceConfig `json:"page_converter"`
}
