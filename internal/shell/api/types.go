package api

import (
	"github.com/artpar/retention/internal/core/domain"
	"github.com/artpar/retention/internal/core/validation"
)

// =============================================================================
// Response Types
// =============================================================================

// RetentionResponse is the response for GET /api/v1/retention.
type RetentionResponse struct {
	RunID       string                   `json:"run_id"`
	KeepCount   int                      `json:"keep_count"`
	Aggregate   string                   `json:"aggregate"`
	Results     []domain.RetentionResult `json:"results"`
	Summary     SummaryResponse          `json:"summary"`
	Diagnostics []validation.Diagnostic  `json:"diagnostics"`
}

// SummaryResponse counts the outcome of one run.
type SummaryResponse struct {
	Groups   int `json:"groups"`
	Kept     int `json:"kept"`
	Dropped  int `json:"dropped"`
	Warnings int `json:"warnings"`
}

// ErrorResponse is the error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
