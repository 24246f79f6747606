package providers

import (
	"context"

	"go-docextract/models"
)

// PassportOCRClient talks to the specialized passport OCR service, which
// locates the MRZ in the image itself and returns an already-structured
// record with its own confidence score.
type PassportOCRClient struct {
	serviceClient
}

// NewPassportOCRClient builds the client for the passport OCR service.
func NewPassportOCRClient(cfg ServiceConfig) *PassportOCRClient {
	return &PassportOCRClient{serviceClient: newServiceClient("ocr", cfg)}
}

type passportOCRResponse struct {
	Success    bool                   `json:"success"`
	Data       *models.PassportRecord `json:"data"`
	Confidence float64                `json:"confidence"`
	errorEnvelope
}

// Extract runs the OCR service over the uploaded image and returns the
// structured record it produced. A response with success=false or an empty
// record is a hard failure: the service saw the image but found no passport.
func (c *PassportOCRClient) Extract(ctx context.Context, content []byte, mimeType string) (*models.PassportRecord, float64, error) {
	var resp passportOCRResponse
	if err := c.postFile(ctx, "/extract", content, mimeType, &resp); err != nil {
		return nil, 0, err
	}

	if !resp.Success || resp.Data == nil {
		message := resp.Error
		if message == "" {
			message = "ocr service returned no data"
		}
		return nil, 0, &Error{Class: ClassHardFailure, Message: message}
	}
	return resp.Data, resp.Confidence, nil
}
