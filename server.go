package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"

	"go-docextract/models"
)

const ErrorInternal = "error:internal"
const ERR_MARSHAL = "failed to marshal response message"
const ERR_EXTRACTION = "extraction failed"
const ERR_JWT_CREATION = "failed to create jwt"
const ERR_READ_UPLOAD = "failed to read upload"

const DefaultMaxFileSizeBytes int64 = 10 << 20

type ServerConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	UseTls         bool   `json:"use_tls,omitempty"`
	TlsPrivKeyPath string `json:"tls_priv_key_path,omitempty"`
	TlsCertPath    string `json:"tls_cert_path,omitempty"`
}

// PassportExtractor and AuthFormExtractor are the two document pipelines the
// server fronts. They are interfaces so the handler tests can swap in fakes.
type PassportExtractor interface {
	ExtractPassport(ctx context.Context, content []byte, ocrText, mimeType string) models.ExtractionResult[models.PassportRecord]
}

type AuthFormExtractor interface {
	ExtractAuthForm(ctx context.Context, content []byte, mimeType string) models.ExtractionResult[models.AuthFormRecord]
}

// HealthChecker is the part of a provider client the deep health check needs.
type HealthChecker interface {
	Name() string
	Enabled() bool
	HealthCheck(ctx context.Context) error
}

type ServerState struct {
	passportExtractor PassportExtractor
	authFormExtractor AuthFormExtractor
	resultCache       ResultCache
	jwtCreator        JwtCreator // optional, nil disables the hand-off jwt
	healthCheckers    []HealthChecker
	maxFileSize       int64
}

type Server struct {
	server *http.Server
	config ServerConfig
}

func (s *Server) ListenAndServe() error {
	if s.config.UseTls {
		slog.Info("Starting server with TLS", "host", s.config.Host, "port", s.config.Port, "cert", s.config.TlsCertPath, "key", s.config.TlsPrivKeyPath)
		return s.server.ListenAndServeTLS(s.config.TlsCertPath, s.config.TlsPrivKeyPath)
	} else {
		slog.Info("Starting server without TLS", "host", s.config.Host, "port", s.config.Port)
		return s.server.ListenAndServe()
	}
}

func (s *Server) Stop() error {
	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if err != nil {
		slog.Error("Error during server shutdown", "error", err)
	} else {
		slog.Info("Server shut down successfully")
	}
	return err
}

func NewServer(state *ServerState, config ServerConfig) (*Server, error) {
	slog.Info("Creating new server", "host", config.Host, "port", config.Port, "tls", config.UseTls)
	if state.maxFileSize <= 0 {
		state.maxFileSize = DefaultMaxFileSizeBytes
	}

	router := mux.NewRouter()

	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("Health check request received")
		err := json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		if err != nil {
			slog.Error("failed to write body to http response", "error", err)
		}
	})
	router.HandleFunc("/api/health/deep", func(w http.ResponseWriter, r *http.Request) {
		handleDeepHealth(state, w, r)
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/extract-passport", func(w http.ResponseWriter, r *http.Request) {
		handleExtractPassport(state, w, r)
	})
	router.HandleFunc("/api/extract-auth-form", func(w http.ResponseWriter, r *http.Request) {
		handleExtractAuthForm(state, w, r)
	})

	slog.Debug("Registered all API routes")

	addr := fmt.Sprintf("%v:%v", config.Host, config.Port)
	srv := &http.Server{
		Handler: router,
		Addr:    addr,
		// Uploads up to the size cap have to fit in the read window.
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}

	slog.Info("Server created successfully", "address", addr)
	return &Server{
		server: srv,
		config: config,
	}, nil
}

// passportResponse and authFormResponse wrap the pipeline result with the
// optional signed hand-off payload.
type passportResponse struct {
	models.ExtractionResult[models.PassportRecord]
	Jwt string `json:"jwt,omitempty"`
}

type authFormResponse struct {
	models.ExtractionResult[models.AuthFormRecord]
	Jwt string `json:"jwt,omitempty"`
}

type deepHealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

func handleExtractPassport(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	slog.Info("Received request to extract a passport")

	content, mimeType, uploadErr := readUpload(w, r, state.maxFileSize)
	if uploadErr != nil {
		respondWithExtractionErr(w, http.StatusBadRequest, *uploadErr)
		return
	}
	ocrText := r.FormValue("ocr_text")

	digest := ContentDigest(DocTypePassport, content, ocrText)
	if serveCachedResult(state, w, digest) {
		return
	}

	result := state.passportExtractor.ExtractPassport(r.Context(), content, ocrText, mimeType)

	response := passportResponse{ExtractionResult: result}
	if result.Success && state.jwtCreator != nil {
		jwt, err := state.jwtCreator.CreatePassportJwt(*result.Data)
		if err != nil {
			respondWithErr(w, http.StatusInternalServerError, ERR_JWT_CREATION, ERR_JWT_CREATION, err)
			return
		}
		response.Jwt = jwt
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Info("Passport extraction request completed", "success", result.Success, "method", result.Method)
	storeCachedResult(state, digest, result.Success, response)
}

func handleExtractAuthForm(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	slog.Info("Received request to extract an authorization form")

	content, mimeType, uploadErr := readUpload(w, r, state.maxFileSize)
	if uploadErr != nil {
		respondWithExtractionErr(w, http.StatusBadRequest, *uploadErr)
		return
	}

	digest := ContentDigest(DocTypeAuthForm, content, "")
	if serveCachedResult(state, w, digest) {
		return
	}

	result := state.authFormExtractor.ExtractAuthForm(r.Context(), content, mimeType)

	response := authFormResponse{ExtractionResult: result}
	if result.Success && state.jwtCreator != nil {
		jwt, err := state.jwtCreator.CreateAuthFormJwt(*result.Data)
		if err != nil {
			respondWithErr(w, http.StatusInternalServerError, ERR_JWT_CREATION, ERR_JWT_CREATION, err)
			return
		}
		response.Jwt = jwt
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Info("Authorization form extraction request completed", "success", result.Success, "method", result.Method)
	storeCachedResult(state, digest, result.Success, response)
}

func handleDeepHealth(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	slog.Debug("Deep health check request received")

	services := make(map[string]string)
	failed := 0
	checked := 0
	for _, checker := range state.healthCheckers {
		if !checker.Enabled() {
			services[checker.Name()] = "disabled"
			continue
		}
		checked++
		if err := checker.HealthCheck(r.Context()); err != nil {
			slog.Warn("Provider health check failed", "provider", checker.Name(), "error", err)
			services[checker.Name()] = "unreachable"
			failed++
		} else {
			services[checker.Name()] = "ok"
		}
	}

	status := "healthy"
	code := http.StatusOK
	switch {
	case checked > 0 && failed == checked:
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	case failed > 0:
		status = "degraded"
	}

	if err := writeJSON(w, code, deepHealthResponse{Status: status, Services: services}); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
	}
}

// -----------------------------------------------------------------------------------

var acceptedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// readUpload pulls the "file" part out of the multipart body and enforces
// the upload contract: size cap first, then the accepted MIME set against
// the sniffed content. The declared part type only has to agree when the
// client bothered to set one.
func readUpload(w http.ResponseWriter, r *http.Request, maxSize int64) ([]byte, string, *models.ExtractionError) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			e := models.FileTooLarge(maxSize)
			return nil, "", &e
		}
		slog.Warn("Failed to parse multipart form", "error", err)
		e := models.InvalidFileType(fmt.Sprintf("expected a multipart form with a file field: %v", err))
		return nil, "", &e
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		e := models.InvalidFileType("the file form field is required")
		return nil, "", &e
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		slog.Warn(ERR_READ_UPLOAD, "error", err)
		e := models.InvalidFileType(fmt.Sprintf("unreadable upload: %v", err))
		return nil, "", &e
	}
	if int64(len(content)) > maxSize {
		e := models.FileTooLarge(maxSize)
		return nil, "", &e
	}

	detected := mimetype.Detect(content)
	sniffed := detected.String()
	if !acceptedMimeTypes[sniffed] {
		e := models.InvalidFileType(fmt.Sprintf("%s is not an accepted file type", sniffed))
		return nil, "", &e
	}
	if declared := header.Header.Get("Content-Type"); declared != "" && declared != sniffed && declared != "application/octet-stream" {
		e := models.InvalidFileType(fmt.Sprintf("declared type %s does not match the file contents (%s)", declared, sniffed))
		return nil, "", &e
	}

	slog.Debug("Upload accepted", "mime_type", sniffed, "size", len(content))
	return content, sniffed, nil
}

// serveCachedResult replays an earlier response for the same document.
func serveCachedResult(state *ServerState, w http.ResponseWriter, digest string) bool {
	if state.resultCache == nil {
		return false
	}
	payload, err := state.resultCache.RetrieveResult(digest)
	if err != nil {
		return false
	}
	slog.Info("Serving cached extraction result")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(payload)); err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
	return true
}

// storeCachedResult caches a successful response. Failures are not cached so
// a retry can reach the providers again.
func storeCachedResult(state *ServerState, digest string, success bool, response any) {
	if state.resultCache == nil || !success {
		return
	}
	payload, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal response for caching", "error", err)
		return
	}
	if err := state.resultCache.StoreResult(digest, string(payload)); err != nil {
		slog.Warn("Failed to store result in cache", "error", err)
	}
}

func respondWithErr(w http.ResponseWriter, code int, responseBody string, logMsg string, e error) {
	slog.Error(logMsg, "error", e, "status_code", code, "response_body", responseBody)
	w.WriteHeader(code)
	if _, err := w.Write([]byte(responseBody)); err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
}

// respondWithExtractionErr surfaces an upload-contract failure as a
// structured body so clients can switch on the code.
func respondWithExtractionErr(w http.ResponseWriter, code int, e models.ExtractionError) {
	slog.Warn("Rejecting request", "code", e.Code, "error", e.Error(), "status_code", code)
	body := map[string]any{
		"success": false,
		"errors":  []models.ExtractionError{e},
	}
	if err := writeJSON(w, code, body); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
	}
}

// helpers ------------

func closeRequestBody(r *http.Request) {
	if err := r.Body.Close(); err != nil {
		slog.Error("failed to close request body", "error", err)
	}

}

func requirePOST(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		slog.Debug("Non-POST request rejected", "method", r.Method, "path", r.URL.Path)
		respondWithErr(w, http.StatusMethodNotAllowed, "method not allowed", "invalid method", nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	slog.Debug("Writing JSON response", "status_code", status)
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal JSON payload", "error", err)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(payload)
	if err != nil {
		slog.Error("failed to write body to http response", "error", err)
	} else {
		slog.Debug("JSON response written successfully", "status_code", status, "payload_size", len(payload))
	}
	return nil
}
