package providers

import (
	"context"
	"encoding/base64"

	"go-docextract/models"
)

// TemplateClient talks to the generic template-extraction service. It is
// the cheapest and least reliable provider, used as the terminal fallback
// for both document types.
type TemplateClient struct {
	serviceClient
}

// NewTemplateClient builds the client for the template-extraction service.
func NewTemplateClient(cfg ServiceConfig) *TemplateClient {
	return &TemplateClient{serviceClient: newServiceClient("template", cfg)}
}

type templateRequest struct {
	DocumentType string   `json:"document_type"`
	Content      string   `json:"content,omitempty"`
	MimeType     string   `json:"mime_type,omitempty"`
	Pages        []string `json:"pages,omitempty"`
}

type templatePassportResponse struct {
	Success bool                   `json:"success"`
	Data    *models.PassportRecord `json:"data"`
	errorEnvelope
}

type templateAuthFormResponse struct {
	Success bool                   `json:"success"`
	Data    *models.AuthFormRecord `json:"data"`
	errorEnvelope
}

// ExtractPassport runs template extraction over the original upload bytes.
func (c *TemplateClient) ExtractPassport(ctx context.Context, content []byte, mimeType string) (*models.PassportRecord, error) {
	request := templateRequest{
		DocumentType: "passport",
		Content:      base64.StdEncoding.EncodeToString(content),
		MimeType:     mimeType,
	}

	var resp templatePassportResponse
	if err := c.postJSON(ctx, "/extract", request, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data == nil {
		return nil, noDataError(resp.Error, "template")
	}
	return resp.Data, nil
}

// ExtractAuthForm runs template extraction over the page set produced for
// the form, so the fallback sees exactly what the vision provider saw.
func (c *TemplateClient) ExtractAuthForm(ctx context.Context, pages [][]byte) (*models.AuthFormRecord, error) {
	request := templateRequest{
		DocumentType: "auth_form",
		Pages:        make([]string, 0, len(pages)),
	}
	for _, page := range pages {
		request.Pages = append(request.Pages, base64.StdEncoding.EncodeToString(page))
	}

	var resp templateAuthFormResponse
	if err := c.postJSON(ctx, "/extract", request, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data == nil {
		return nil, noDataError(resp.Error, "template")
	}
	return resp.Data, nil
}

func noDataError(message, service string) *Error {
	if message == "" {
		message = service + " service returned no data"
	}
	return &Error{Class: ClassHardFailure, Message: message}
}
