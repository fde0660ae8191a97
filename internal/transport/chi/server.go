// Package chi is the HTTP transport: handlers, auth middleware and wire DTOs.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pathlab-cloud/refscan/internal/domain"
	healthuc "github.com/pathlab-cloud/refscan/internal/usecase/health"
	scanuc "github.com/pathlab-cloud/refscan/internal/usecase/scan"
)

// validImageTypes are the upload content types the vision provider accepts.
var validImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	scan          *scanuc.Service
	health        *healthuc.Service
	maxImageBytes int64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. maxImageMB bounds uploads before
// they reach the vision provider.
func NewServer(scan *scanuc.Service, health *healthuc.Service, maxImageMB int, logger *zap.Logger) *Server {
	s := &Server{
		scan:          scan,
		health:        health,
		maxImageBytes: int64(maxImageMB) * 1024 * 1024,
		logger:        logger,
	}
	s.errorHandlers = []errorHandler{
		notReferralHandler,
		sentinelHandler(domain.ErrInvalidImage, http.StatusBadRequest, "invalid_image"),
		sentinelHandler(domain.ErrTenantRequired, http.StatusUnauthorized, "tenant_required"),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"),
		sentinelHandler(domain.ErrCatalogUnavailable, http.StatusServiceUnavailable, "catalog_unavailable"),
		sentinelHandler(domain.ErrExtractionTransient, http.StatusBadGateway, "extraction_unavailable"),
		sentinelHandler(domain.ErrExtractionFailed, http.StatusBadGateway, "extraction_failed"),
	}
	return s
}

// Routes registers all endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/referral/scan", s.ScanReferral)
	r.Post("/api/v1/referral/tests/match", s.MatchTests)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// ScanReferral handles POST /api/v1/referral/scan (multipart image upload).
func (s *Server) ScanReferral(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	tenantID := TenantFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.maxImageBytes+1024)
	file, header, err := r.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusBadRequest, "invalid_image",
				fmt.Sprintf("Image too large. Maximum size: %dMB", s.maxImageBytes/1024/1024))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "No image file provided")
		return
	}
	defer func() { _ = file.Close() }()

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Failed to read image upload")
		return
	}
	if int64(len(image)) > s.maxImageBytes {
		writeError(w, http.StatusBadRequest, "invalid_image",
			fmt.Sprintf("Image too large. Maximum size: %dMB", s.maxImageBytes/1024/1024))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	if _, ok := validImageTypes[mimeType]; !ok {
		writeError(w, http.StatusBadRequest, "invalid_image",
			fmt.Sprintf("Invalid image type: %s. Supported types: JPEG, PNG, GIF, WebP", mimeType))
		return
	}

	res, err := s.scan.Scan(r.Context(), tenantID, image, mimeType)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scanResponse{
		Success:          true,
		ScanID:           uuid.NewString(),
		Data:             scanResultToDTO(res),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Timestamp:        time.Now().UTC(),
	})
}

// MatchTests handles POST /api/v1/referral/tests/match.
func (s *Server) MatchTests(w http.ResponseWriter, r *http.Request) {
	var req testMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if len(req.Tests) == 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "tests must contain at least one name")
		return
	}

	tenantID := TenantFromContext(r.Context())
	matches, summary, degraded, err := s.scan.MatchTests(r.Context(), tenantID, req.Tests)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, testMatchResponse{
		Success:         true,
		Data:            matchesToDTO(matches),
		Confidence:      confidenceToDTO(summary),
		CatalogDegraded: degraded,
		Timestamp:       time.Now().UTC(),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Success:   false,
		Code:      code,
		Error:     message,
		Timestamp: time.Now().UTC(),
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrTenantRequired,
		domain.ErrCatalogUnavailable,
		domain.ErrExtractionFailed,
		domain.ErrExtractionTransient,
		domain.ErrNotReferral,
		domain.ErrInvalidImage,
		domain.ErrUnauthorized,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// notReferralHandler surfaces the model's own explanation for rejected images.
func notReferralHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrNotReferral) {
		return false
	}
	var nre *domain.NotReferralError
	if errors.As(err, &nre) && nre.Reason != "" {
		writeError(w, http.StatusBadRequest, "not_a_referral", nre.Reason)
		return true
	}
	writeError(w, http.StatusBadRequest, "not_a_referral", msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
