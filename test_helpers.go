package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-docextract/models"
)

var testConfig = ServerConfig{
	Host:           "localhost",
	Port:           8081,
	UseTls:         false,
	TlsCertPath:    "",
	TlsPrivKeyPath: "",
}

func startTestServer(t *testing.T, state *ServerState) *Server {
	t.Helper()

	srv, err := NewServer(state, testConfig)
	require.NoError(t, err)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("server error: %v", err)
		}
	}()

	waitUntilHealthy(t, "http://localhost:8081/api/health")
	t.Cleanup(func() {
		if err := srv.Stop(); err != nil {
			t.Logf("error shutting down server: %v", err)
		}
	})
	return srv
}

func waitUntilHealthy(t *testing.T, url string) {
	t.Helper()
	const maxAttempts = 50
	for i := 0; i < maxAttempts; i++ {
		if resp, err := http.Get(url); err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server did not start in time")
}

// postUpload posts a multipart upload with the given file bytes and any extra
// form fields, and decodes the JSON response into T.
func postUpload[T any](t *testing.T, url string, file []byte, fields map[string]string) (*http.Response, []byte, *T) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if file != nil {
		part, err := writer.CreateFormFile("file", "upload")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	require.NoError(t, writer.Close())

	resp, err := http.Post(url, writer.FormDataContentType(), &body)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var v T
	_ = json.Unmarshal(respBody, &v)

	return resp, respBody, &v
}

func decodeInto(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}

func mustStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	require.Equalf(t, want, resp.StatusCode, "body: %s", body)
}

// Minimal files whose magic bytes sniff as the right MIME type.
func pngUpload() []byte {
	return []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
}

func pdfUpload() []byte {
	return []byte("%PDF-1.4\n%test document\n")
}

// test doubles

type fakePassportExtractor struct {
	result models.ExtractionResult[models.PassportRecord]
	calls  int
}

func (f *fakePassportExtractor) ExtractPassport(_ context.Context, _ []byte, _, _ string) models.ExtractionResult[models.PassportRecord] {
	f.calls++
	return f.result
}

type fakeAuthFormExtractor struct {
	result models.ExtractionResult[models.AuthFormRecord]
	calls  int
}

func (f *fakeAuthFormExtractor) ExtractAuthForm(_ context.Context, _ []byte, _ string) models.ExtractionResult[models.AuthFormRecord] {
	f.calls++
	return f.result
}

type fakeJwtCreator struct{ jwt string }

func (f fakeJwtCreator) CreatePassportJwt(_ models.PassportRecord) (string, error) {
	return f.jwt, nil
}

func (f fakeJwtCreator) CreateAuthFormJwt(_ models.AuthFormRecord) (string, error) {
	return f.jwt, nil
}

type fakeHealthChecker struct {
	name    string
	enabled bool
	err     error
}

func (f fakeHealthChecker) Name() string  { return f.name }
func (f fakeHealthChecker) Enabled() bool { return f.enabled }
func (f fakeHealthChecker) HealthCheck(_ context.Context) error {
	return f.err
}

func passportSuccessResult() models.ExtractionResult[models.PassportRecord] {
	return models.ExtractionResult[models.PassportRecord]{
		Success: true,
		Data: &models.PassportRecord{
			Surname:        "ERIKSSON",
			GivenNames:     "ANNA MARIA",
			DocumentNumber: "L898902C3",
			Nationality:    "UTO",
		},
		Method:     models.MethodMRZ,
		Confidence: 0.98,
	}
}

func authFormSuccessResult() models.ExtractionResult[models.AuthFormRecord] {
	record := models.AuthFormRecord{}
	record.Representative.FamilyName = "Smith"
	record.Representative.GivenName = "Jane"
	record.Client.AlienNumber = "A-123456789"
	return models.ExtractionResult[models.AuthFormRecord]{
		Success:    true,
		Data:       &record,
		Method:     models.MethodVision,
		Confidence: 0.95,
	}
}
