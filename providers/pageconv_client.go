package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
)

// PageConverterClient talks to the PDF conversion service that splits a
// multi-page document into per-page PNG images.
type PageConverterClient struct {
	serviceClient
}

// NewPageConverterClient builds the client for the page conversion service.
func NewPageConverterClient(cfg ServiceConfig) *PageConverterClient {
	return &PageConverterClient{serviceClient: newServiceClient("page_converter", cfg)}
}

type convertResponse struct {
	Success bool     `json:"success"`
	Pages   []string `json:"pages"`
	Count   int      `json:"count"`
	errorEnvelope
}

// ToPageImages converts a PDF into at most maxPages page images, in page order.
func (c *PageConverterClient) ToPageImages(ctx context.Context, pdf []byte, maxPages int) ([][]byte, error) {
	path := "/convert-pdf?max_pages=" + strconv.Itoa(maxPages)

	var resp convertResponse
	if err := c.postFile(ctx, path, pdf, "application/pdf", &resp); err != nil {
		return nil, err
	}

	if !resp.Success || len(resp.Pages) == 0 {
		message := resp.Error
		if message == "" {
			message = "conversion service returned no pages"
		}
		return nil, &Error{Class: ClassHardFailure, Message: message}
	}

	pages := make([][]byte, 0, len(resp.Pages))
	for i, encoded := range resp.Pages {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, &Error{Class: ClassHardFailure, Message: fmt.Sprintf("decode page %d: %v", i+1, err)}
		}
		pages = append(pages, decoded)
	}
	return pages, nil
}
