package providers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClientConfig(url string) ServiceConfig {
	return ServiceConfig{Enabled: true, BaseURL: url, TimeoutSeconds: 5}
}

func TestPassportOCRExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/extract", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, []byte("passport scan"), content)
		require.Equal(t, "image/jpeg", r.FormValue("mime_type"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":    true,
			"confidence": 0.91,
			"data": map[string]string{
				"surname":     "ERIKSSON",
				"given_names": "ANNA MARIA",
			},
		})
	}))
	defer srv.Close()

	client := NewPassportOCRClient(testClientConfig(srv.URL))
	record, confidence, err := client.Extract(context.Background(), []byte("passport scan"), "image/jpeg")

	require.NoError(t, err)
	require.InDelta(t, 0.91, confidence, 1e-9)
	require.Equal(t, "ERIKSSON", record.Surname)
	require.Equal(t, "ANNA MARIA", record.GivenNames)
}

func TestPassportOCRNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "no passport found"})
	}))
	defer srv.Close()

	client := NewPassportOCRClient(testClientConfig(srv.URL))
	_, _, err := client.Extract(context.Background(), []byte("not a passport"), "image/jpeg")

	perr := AsProviderError(err)
	require.Equal(t, ClassHardFailure, perr.Class)
	require.Equal(t, "no passport found", perr.Message)
}

func TestPassportOCRRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "slow down", "error_type": "RATE_LIMIT_ERROR"})
	}))
	defer srv.Close()

	client := NewPassportOCRClient(testClientConfig(srv.URL))
	_, _, err := client.Extract(context.Background(), []byte("scan"), "image/jpeg")

	perr := AsProviderError(err)
	require.Equal(t, ClassRateLimited, perr.Class)
	require.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
	require.True(t, perr.Retryable())
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := &PassportOCRClient{serviceClient: serviceClient{
		name:       "ocr",
		baseURL:    srv.URL,
		timeout:    20 * time.Millisecond,
		enabled:    true,
		httpClient: &http.Client{},
	}}

	_, _, err := client.Extract(context.Background(), []byte("scan"), "image/jpeg")
	perr := AsProviderError(err)
	require.Equal(t, ClassTimeout, perr.Class)
}

func TestVisionExtractPage(t *testing.T) {
	page := []byte("page image bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/extract-page", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, base64.StdEncoding.EncodeToString(page), req["image"])
		require.Equal(t, "image/png", req["media_type"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"representative": map[string]string{"family_name": "Smith"},
			},
		})
	}))
	defer srv.Close()

	client := NewVisionClient(testClientConfig(srv.URL))
	record, err := client.ExtractPage(context.Background(), page, "image/png")

	require.NoError(t, err)
	require.Equal(t, "Smith", record.Representative.FamilyName)
}

func TestTemplateExtractPassportRequestShape(t *testing.T) {
	content := []byte("original upload")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req templateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "passport", req.DocumentType)
		require.Equal(t, base64.StdEncoding.EncodeToString(content), req.Content)
		require.Equal(t, "image/jpeg", req.MimeType)
		require.Empty(t, req.Pages)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"surname": "ERIKSSON", "given_names": "ANNA"},
		})
	}))
	defer srv.Close()

	client := NewTemplateClient(testClientConfig(srv.URL))
	record, err := client.ExtractPassport(context.Background(), content, "image/jpeg")

	require.NoError(t, err)
	require.Equal(t, "ERIKSSON", record.Surname)
}

func TestTemplateExtractAuthFormSendsPages(t *testing.T) {
	pages := [][]byte{[]byte("p1"), []byte("p2")}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req templateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "auth_form", req.DocumentType)
		require.Len(t, req.Pages, 2)
		require.Equal(t, base64.StdEncoding.EncodeToString(pages[1]), req.Pages[1])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"client": map[string]string{"family_name": "Okafor"}},
		})
	}))
	defer srv.Close()

	client := NewTemplateClient(testClientConfig(srv.URL))
	record, err := client.ExtractAuthForm(context.Background(), pages)

	require.NoError(t, err)
	require.Equal(t, "Okafor", record.Client.FamilyName)
}

func TestPageConverter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/convert-pdf", r.URL.Path)
		require.Equal(t, "3", r.URL.Query().Get("max_pages"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"count":   2,
			"pages": []string{
				base64.StdEncoding.EncodeToString([]byte("page one")),
				base64.StdEncoding.EncodeToString([]byte("page two")),
			},
		})
	}))
	defer srv.Close()

	client := NewPageConverterClient(testClientConfig(srv.URL))
	pages, err := client.ToPageImages(context.Background(), []byte("%PDF"), 3)

	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("page one"), []byte("page two")}, pages)
}

func TestPageConverterBadEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"pages":   []string{"not base64!!"},
		})
	}))
	defer srv.Close()

	client := NewPageConverterClient(testClientConfig(srv.URL))
	_, err := client.ToPageImages(context.Background(), []byte("%PDF"), 1)

	perr := AsProviderError(err)
	require.Equal(t, ClassHardFailure, perr.Class)
	require.Contains(t, perr.Message, "decode page 1")
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewTemplateClient(testClientConfig(srv.URL))
	require.NoError(t, client.HealthCheck(context.Background()))
}

func TestHealthCheckFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewTemplateClient(testClientConfig(srv.URL))
	err := client.HealthCheck(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 503")
}

func TestServiceConfigTimeout(t *testing.T) {
	require.Equal(t, 30*time.Second, ServiceConfig{}.Timeout())
	require.Equal(t, 5*time.Second, ServiceConfig{TimeoutSeconds: 5}.Timeout())
}
