package providers

import (
	"context"
	"encoding/base64"

	"go-docextract/models"
)

// VisionClient talks to the vision-LLM extraction service at page
// granularity. Pages of a multi-page form are sent independently and the
// orchestrator merges the partial records.
type VisionClient struct {
	serviceClient
}

// NewVisionClient builds the client for the vision extraction service.
func NewVisionClient(cfg ServiceConfig) *VisionClient {
	return &VisionClient{serviceClient: newServiceClient("vision", cfg)}
}

type visionPageRequest struct {
	Image     string `json:"image"`
	MediaType string `json:"media_type"`
}

type visionPageResponse struct {
	Success bool                   `json:"success"`
	Data    *models.AuthFormRecord `json:"data"`
	errorEnvelope
}

// ExtractPage extracts representative-form fields from a single page image.
func (c *VisionClient) ExtractPage(ctx context.Context, page []byte, mediaType string) (*models.AuthFormRecord, error) {
	request := visionPageRequest{
		Image:     base64.StdEncoding.EncodeToString(page),
		MediaType: mediaType,
	}

	var resp visionPageResponse
	if err := c.postJSON(ctx, "/extract-page", request, &resp); err != nil {
		return nil, err
	}

	if !resp.Success || resp.Data == nil {
		message := resp.Error
		if message == "" {
			message = "vision service returned no data"
		}
		return nil, &Error{Class: ClassHardFailure, Message: message}
	}
	return resp.Data, nil
}
