package main

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"go-docextract/models"
)

type extractionResponse struct {
	Success bool                     `json:"success"`
	Method  string                   `json:"method"`
	Jwt     string                   `json:"jwt"`
	Errors  []models.ExtractionError `json:"errors"`
	Data    map[string]any           `json:"data"`
}

func TestExtractPassport_Success(t *testing.T) {
	extractor := &fakePassportExtractor{result: passportSuccessResult()}
	startTestServer(t, &ServerState{
		passportExtractor: extractor,
		authFormExtractor: &fakeAuthFormExtractor{},
		jwtCreator:        fakeJwtCreator{jwt: "test-jwt"},
	})

	resp, body, decoded := postUpload[extractionResponse](t,
		"http://localhost:8081/api/extract-passport", pngUpload(), nil)
	mustStatus(t, resp, http.StatusOK, body)

	require.True(t, decoded.Success)
	require.Equal(t, "mrz", decoded.Method)
	require.Equal(t, "test-jwt", decoded.Jwt)
	require.Equal(t, "L898902C3", decoded.Data["document_number"])
	require.Equal(t, 1, extractor.calls)
}

func TestExtractPassport_NoJwtCreator(t *testing.T) {
	startTestServer(t, &ServerState{
		passportExtractor: &fakePassportExtractor{result: passportSuccessResult()},
		authFormExtractor: &fakeAuthFormExtractor{},
	})

	resp, body, decoded := postUpload[extractionResponse](t,
		"http://localhost:8081/api/extract-passport", pngUpload(), nil)
	mustStatus(t, resp, http.StatusOK, body)
	require.True(t, decoded.Success)
	require.Empty(t, decoded.Jwt)
}

func TestExtractPassport_FailureStillReturns200(t *testing.T) {
	result := models.ExtractionResult[models.PassportRecord]{
		Success: false,
		Errors:  []models.ExtractionError{{Code: models.ErrMrzNotFound}},
	}
	startTestServer(t, &ServerState{
		passportExtractor: &fakePassportExtractor{result: result},
		authFormExtractor: &fakeAuthFormExtractor{},
	})

	resp, body, decoded := postUpload[extractionResponse](t,
		"http://localhost:8081/api/extract-passport", pngUpload(), map[string]string{"ocr_text": "no mrz here"})
	mustStatus(t, resp, http.StatusOK, body)

	require.False(t, decoded.Success)
	require.Len(t, decoded.Errors, 1)
	require.Equal(t, models.ErrMrzNotFound, decoded.Errors[0].Code)
}

func TestExtractPassport_RejectsUnsupportedFileType(t *testing.T) {
	extractor := &fakePassportExtractor{result: passportSuccessResult()}
	startTestServer(t, &ServerState{
		passportExtractor: extractor,
		authFormExtractor: &fakeAuthFormExtractor{},
	})

	resp, body, decoded := postUpload[extractionResponse](t,
		"http://localhost:8081/api/extract-passport", []byte("plain text, not a document"), nil)
	mustStatus(t, resp, http.StatusBadRequest, body)

	require.False(t, decoded.Success)
	require.Len(t, decoded.Errors, 1)
	require.Equal(t, models.ErrInvalidFileType, decoded.Errors[0].Code)
	require.Equal(t, 0, extractor.calls)
}

func TestExtractPassport_RejectsMissingFile(t *testing.T) {
	startTestServer(t, &ServerState{
		passportExtractor: &fakePassportExtractor{},
		authFormExtractor: &fakeAuthFormExtractor{},
	})

	resp, body, decoded := postUpload[extractionResponse](t,
		"http://localhost:8081/api/extract-passport", nil, map[string]string{"ocr_text": "text"})
	mustStatus(t, resp, http.StatusBadRequest, body)
	require.Equal(t, models.ErrInvalidFileType, decoded.Errors[0].Code)
}

func TestExtractPassport_RejectsOversizedFile(t *testing.T) {
	extractor := &fakePassportExtractor{result: passportSuccessResult()}
	startTestServer(t, &ServerState{
		passportExtractor: extractor,
		authFormExtractor: &fakeAuthFormExtractor{},
		maxFileSize:       64,
	})

	big := append(pngUpload(), make([]byte, 256)...)
	resp, body, decoded := postUpload[extractionResponse](t,
		"http://localhost:8081/api/extract-passport", big, nil)
	mustStatus(t, resp, http.StatusBadRequest, body)

	require.Equal(t, models.ErrFileTooLarge, decoded.Errors[0].Code)
	require.Equal(t, 0, extractor.calls)
}

func TestExtractPassport_RejectsGET(t *testing.T) {
	startTestServer(t, &ServerState{
		passportExtractor: &fakePassportExtractor{},
		authFormExtractor: &fakeAuthFormExtractor{},
	})

	resp, err := http.Get("http://localhost:8081/api/extract-passport")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestExtractPassport_CachesSuccessfulResults(t *testing.T) {
	extractor := &fakePassportExtractor{result: passportSuccessResult()}
	startTestServer(t, &ServerState{
		passportExtractor: extractor,
		authFormExtractor: &fakeAuthFormExtractor{},
		resultCache:       NewInMemoryResultCache(),
	})

	resp1, body1, first := postUpload[extractionResponse](t,
		"http://localhost:8081/api/extract-passport", pngUpload(), nil)
	mustStatus(t, resp1, http.StatusOK, body1)

	resp2, body2, second := postUpload[extractionResponse](t,
		"http://localhost:8081/api/extract-passport", pngUpload(), nil)
	mustStatus(t, resp2, http.StatusOK, body2)

	require.Equal(t, first, second)
	require.Equal(t, 1, extractor.calls, "second request should be served from the cache")
}

func TestExtractPassport_DoesNotCacheFailures(t *testing.T) {
	extractor := &fakePassportExtractor{result: models.ExtractionResult[models.PassportRecord]{
		Success: false,
		Errors:  []models.ExtractionError{{Code: models.ErrMrzNotFound}},
	}}
	startTestServer(t, &ServerState{
		passportExtractor: extractor,
		authFormExtractor: &fakeAuthFormExtractor{},
		resultCache:       NewInMemoryResultCache(),
	})

	postUpload[extractionResponse](t, "http://localhost:8081/api/extract-passport", pngUpload(), nil)
	postUpload[extractionResponse](t, "http://localhost:8081/api/extract-passport", pngUpload(), nil)

	require.Equal(t, 2, extractor.calls)
}

func TestExtractPassport_OcrTextChangesCacheKey(t *testing.T) {
	extractor := &fakePassportExtractor{result: passportSuccessResult()}
	startTestServer(t, &ServerState{
		passportExtractor: extractor,
		authFormExtractor: &fakeAuthFormExtractor{},
		resultCache:       NewInMemoryResultCache(),
	})

	postUpload[extractionResponse](t, "http://localhost:8081/api/extract-passport",
		pngUpload(), map[string]string{"ocr_text": "first"})
	postUpload[extractionResponse](t, "http://localhost:8081/api/extract-passport",
		pngUpload(), map[string]string{"ocr_text": "second"})

	require.Equal(t, 2, extractor.calls)
}

func TestExtractAuthForm_Success(t *testing.T) {
	extractor := &fakeAuthFormExtractor{result: authFormSuccessResult()}
	startTestServer(t, &ServerState{
		passportExtractor: &fakePassportExtractor{},
		authFormExtractor: extractor,
		jwtCreator:        fakeJwtCreator{jwt: "test-jwt"},
	})

	resp, body, decoded := postUpload[extractionResponse](t,
		"http://localhost:8081/api/extract-auth-form", pdfUpload(), nil)
	mustStatus(t, resp, http.StatusOK, body)

	require.True(t, decoded.Success)
	require.Equal(t, "vision", decoded.Method)
	require.Equal(t, "test-jwt", decoded.Jwt)
	require.Equal(t, 1, extractor.calls)
}

func TestDeepHealth_AllHealthy(t *testing.T) {
	startTestServer(t, &ServerState{
		passportExtractor: &fakePassportExtractor{},
		authFormExtractor: &fakeAuthFormExtractor{},
		healthCheckers: []HealthChecker{
			fakeHealthChecker{name: "ocr", enabled: true},
			fakeHealthChecker{name: "template", enabled: true},
		},
	})

	resp, err := http.Get("http://localhost:8081/api/health/deep")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded deepHealthResponse
	require.NoError(t, decodeInto(resp, &decoded))
	require.Equal(t, "healthy", decoded.Status)
	require.Equal(t, "ok", decoded.Services["ocr"])
	require.Equal(t, "ok", decoded.Services["template"])
}

func TestDeepHealth_Degraded(t *testing.T) {
	startTestServer(t, &ServerState{
		passportExtractor: &fakePassportExtractor{},
		authFormExtractor: &fakeAuthFormExtractor{},
		healthCheckers: []HealthChecker{
			fakeHealthChecker{name: "ocr", enabled: true, err: errors.New("connection refused")},
			fakeHealthChecker{name: "template", enabled: true},
			fakeHealthChecker{name: "vision", enabled: false},
		},
	})

	resp, err := http.Get("http://localhost:8081/api/health/deep")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded deepHealthResponse
	require.NoError(t, decodeInto(resp, &decoded))
	require.Equal(t, "degraded", decoded.Status)
	require.Equal(t, "unreachable", decoded.Services["ocr"])
	require.Equal(t, "disabled", decoded.Services["vision"])
}

func TestDeepHealth_Unhealthy(t *testing.T) {
	startTestServer(t, &ServerState{
		passportExtractor: &fakePassportExtractor{},
		authFormExtractor: &fakeAuthFormExtractor{},
		healthCheckers: []HealthChecker{
			fakeHealthChecker{name: "ocr", enabled: true, err: errors.New("connection refused")},
			fakeHealthChecker{name: "template", enabled: true, err: errors.New("connection refused")},
		},
	})

	resp, err := http.Get("http://localhost:8081/api/health/deep")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var decoded deepHealthResponse
	require.NoError(t, decodeInto(resp, &decoded))
	require.Equal(t, "unhealthy", decoded.Status)
}
