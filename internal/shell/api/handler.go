// Package api provides HTTP handlers for the Release Retention API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/artpar/retention/internal/shell/api/openapi"
	"github.com/artpar/retention/internal/shell/retention"
)

// =============================================================================
// Handler
// =============================================================================

// RetentionService is the part of retention.Service the handler needs.
type RetentionService interface {
	Report(ctx context.Context, keepCount int) (*retention.Report, error)
	DefaultKeepCount() int
	Ready(ctx context.Context) error
}

// Handler provides HTTP handlers for the API.
type Handler struct {
	service RetentionService
	openapi *openapi.Generator
	logger  *slog.Logger
}

// NewHandler creates a new API handler. version is reported in the OpenAPI
// document.
func NewHandler(svc RetentionService, l *slog.Logger, version string) *Handler {
	if l == nil {
		l = slog.Default()
	}
	return &Handler{
		service: svc,
		openapi: NewOpenAPIGenerator(version),
		logger:  l,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)
	r.Use(h.jsonContentType)
	r.Use(h.requestIDHeader)

	// Health endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)

	r.Get("/openapi.json", h.openapi.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/retention", h.handleRetention)
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs every request once it has been served.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := h.service.Ready(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		checks["source"] = "failed"
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
			Status: "not_ready",
			Checks: checks,
		})
		return
	}
	checks["source"] = "ok"

	h.writeJSON(w, http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// =============================================================================
// Retention Handlers
// =============================================================================

func (h *Handler) handleRetention(w http.ResponseWriter, r *http.Request) {
	keep := h.service.DefaultKeepCount()
	if raw := r.URL.Query().Get("keep"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "keep must be an integer", CodeInvalidArgument)
			return
		}
		keep = n
	}

	report, err := h.service.Report(r.Context(), keep)
	if err != nil {
		status, code := errorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("retention failed", "error", err)
			h.writeError(w, status, "internal error", code)
			return
		}
		h.writeError(w, status, err.Error(), code)
		return
	}

	h.writeJSON(w, http.StatusOK, reportToResponse(report))
}

// =============================================================================
// Helpers
// =============================================================================

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidArgument = "invalid_argument"
	CodeNoData          = "no_data"
	CodeSourceError     = "source_error"
	CodeInternal        = "internal_error"
)

// errorStatus maps a service error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch retention.Kind(err) {
	case retention.KindInvalidArgument:
		return http.StatusBadRequest, CodeInvalidArgument
	case retention.KindNoData:
		return http.StatusUnprocessableEntity, CodeNoData
	case retention.KindFetchFailed:
		return http.StatusBadGateway, CodeSourceError
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func reportToResponse(report *retention.Report) RetentionResponse {
	return RetentionResponse{
		RunID:       report.RunID,
		KeepCount:   report.KeepCount,
		Aggregate:   report.Aggregate,
		Results:     report.Results,
		Summary:     SummaryResponse(report.Summary),
		Diagnostics: report.Diagnostics,
	}
}
