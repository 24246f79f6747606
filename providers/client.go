package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// serviceClient is the shared plumbing behind every provider client:
// a base URL, an HTTP client, and the per-call deadline.
type serviceClient struct {
	name       string
	baseURL    string
	timeout    time.Duration
	enabled    bool
	httpClient *http.Client
}

func newServiceClient(name string, cfg ServiceConfig) serviceClient {
	return serviceClient{
		name:    name,
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout(),
		enabled: cfg.Enabled,
		// The request context carries the deadline so caller-level
		// cancellation propagates; no client-level timeout on top.
		httpClient: &http.Client{},
	}
}

func (c *serviceClient) Name() string  { return c.name }
func (c *serviceClient) Enabled() bool { return c.enabled }

// errorEnvelope is the failure shape shared by all the extraction services.
type errorEnvelope struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
}

// postJSON sends a JSON request and decodes a JSON response into out.
// Failures come back as *Error with a retryability classification.
func (c *serviceClient) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return &Error{Class: ClassHardFailure, Message: fmt.Sprintf("marshal request: %v", err)}
	}
	return c.post(ctx, path, "application/json", bytes.NewReader(payload), out)
}

// postFile sends a multipart upload under the "file" form field and decodes
// a JSON response into out.
func (c *serviceClient) postFile(ctx context.Context, path string, content []byte, mimeType string, out any) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "upload")
	if err != nil {
		return &Error{Class: ClassHardFailure, Message: fmt.Sprintf("build multipart body: %v", err)}
	}
	if _, err := part.Write(content); err != nil {
		return &Error{Class: ClassHardFailure, Message: fmt.Sprintf("build multipart body: %v", err)}
	}
	if err := writer.WriteField("mime_type", mimeType); err != nil {
		return &Error{Class: ClassHardFailure, Message: fmt.Sprintf("build multipart body: %v", err)}
	}
	if err := writer.Close(); err != nil {
		return &Error{Class: ClassHardFailure, Message: fmt.Sprintf("build multipart body: %v", err)}
	}
	return c.post(ctx, path, writer.FormDataContentType(), &body, out)
}

func (c *serviceClient) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return &Error{Class: ClassHardFailure, Message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var envelope errorEnvelope
		if json.Unmarshal(raw, &envelope) != nil || envelope.Error == "" {
			envelope.Error = string(raw)
		}
		return classifyResponse(resp.StatusCode, envelope.ErrorType, envelope.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Class: ClassHardFailure, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

// HealthCheck verifies the service is reachable.
func (c *serviceClient) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s health check failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s health check returned status %d", c.name, resp.StatusCode)
	}
	return nil
}
