package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/artpar/retention/internal/core/domain"
	coreretention "github.com/artpar/retention/internal/core/retention"
	"github.com/artpar/retention/internal/core/validation"
	"github.com/artpar/retention/internal/shell/retention"
	"github.com/artpar/retention/internal/shell/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

// stubService implements RetentionService for testing.
type stubService struct {
	report   *retention.Report
	err      error
	readyErr error
	keep     int
	gotKeep  int
}

func (s *stubService) Report(ctx context.Context, keepCount int) (*retention.Report, error) {
	s.gotKeep = keepCount
	if keepCount <= 0 {
		return nil, coreretention.ValidateKeepCount(keepCount)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func (s *stubService) DefaultKeepCount() int { return s.keep }

func (s *stubService) Ready(ctx context.Context) error { return s.readyErr }

func sampleReport() *retention.Report {
	return &retention.Report{
		RunID:     "8a3c1f7e-0000-4000-8000-000000000001",
		KeepCount: 1,
		Aggregate: "earliest",
		Results: []domain.RetentionResult{{
			ReleaseID:       "Release-2",
			ProjectID:       "Project-1",
			ProjectName:     "Random Quotes",
			EnvironmentID:   "Environment-1",
			EnvironmentName: "Staging",
			Version:         "1.0.1",
			LastDeployedAt:  time.Date(2000, 1, 2, 11, 0, 0, 0, time.UTC),
		}},
		Summary: retention.Summary{Groups: 1, Kept: 1, Dropped: 1},
		Diagnostics: []validation.Diagnostic{{
			Level:   validation.LevelInfo,
			Code:    coreretention.CodeBelowCutoff,
			Entity:  validation.EntityRelease,
			ID:      "Release-1",
			Message: "not retained in Project-1/Environment-1: rank 2 of 2, keep count 1",
		}},
	}
}

func newTestHandler() (*Handler, *stubService) {
	svc := &stubService{report: sampleReport(), keep: 3}
	return NewHandler(svc, nil, "1.2.3"), svc
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)
	return w
}

func parseResponse[T any](t *testing.T, body io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(body).Decode(&v))
	return v
}

// =============================================================================
// Health Endpoint Tests
// =============================================================================

func TestHealth_Success(t *testing.T) {
	h, _ := newTestHandler()

	w := serve(h, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	resp := parseResponse[HealthResponse](t, w.Body)
	assert.Equal(t, "healthy", resp.Status)
}

func TestReady_SourceReachable(t *testing.T) {
	h, _ := newTestHandler()

	w := serve(h, "/ready")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse[ReadyResponse](t, w.Body)
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "ok", resp.Checks["source"])
}

func TestReady_SourceFailed(t *testing.T) {
	h, svc := newTestHandler()
	svc.readyErr = errors.New("connection refused")

	w := serve(h, "/ready")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := parseResponse[ReadyResponse](t, w.Body)
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "failed", resp.Checks["source"])
}

// =============================================================================
// Retention Endpoint Tests
// =============================================================================

func TestRetention_Success(t *testing.T) {
	h, svc := newTestHandler()

	w := serve(h, "/api/v1/retention?keep=1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.gotKeep)

	resp := parseResponse[RetentionResponse](t, w.Body)
	assert.Equal(t, 1, resp.KeepCount)
	assert.Equal(t, "earliest", resp.Aggregate)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Release-2", resp.Results[0].ReleaseID)
	assert.Equal(t, "Staging", resp.Results[0].EnvironmentName)
	assert.Equal(t, SummaryResponse{Groups: 1, Kept: 1, Dropped: 1}, resp.Summary)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, coreretention.CodeBelowCutoff, resp.Diagnostics[0].Code)
}

func TestRetention_WireFormat(t *testing.T) {
	h, _ := newTestHandler()

	w := serve(h, "/api/v1/retention?keep=1")

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	for _, key := range []string{"keep_count", "results", "summary", "diagnostics"} {
		assert.Contains(t, body, key)
	}

	result := body["results"].([]any)[0].(map[string]any)
	assert.Equal(t, "Release-2", result["release_id"])
	assert.Equal(t, "2000-01-02T11:00:00Z", result["last_deployed_at"])
}

func TestRetention_DefaultKeepCount(t *testing.T) {
	h, svc := newTestHandler()

	w := serve(h, "/api/v1/retention")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, svc.gotKeep)
}

func TestRetention_InvalidKeep(t *testing.T) {
	for _, keep := range []string{"0", "-2", "three", "1.5"} {
		t.Run(keep, func(t *testing.T) {
			h, _ := newTestHandler()

			w := serve(h, "/api/v1/retention?keep="+keep)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := parseResponse[ErrorResponse](t, w.Body)
			assert.Equal(t, CodeInvalidArgument, resp.Code)
		})
	}
}

func TestRetention_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "no data",
			err:    fmt.Errorf("%w: empty deployments", validation.ErrNoData),
			status: http.StatusUnprocessableEntity,
			code:   CodeNoData,
		},
		{
			name:   "source failure",
			err:    source.NewSourceError("Fetch", "releases", "unexpected status 500", source.ErrFetchFailed),
			status: http.StatusBadGateway,
			code:   CodeSourceError,
		},
		{
			name:   "unexpected",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			code:   CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newTestHandler()
			svc.err = tt.err

			w := serve(h, "/api/v1/retention?keep=2")

			assert.Equal(t, tt.status, w.Code)
			resp := parseResponse[ErrorResponse](t, w.Body)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestRetention_InternalErrorHidesDetail(t *testing.T) {
	h, svc := newTestHandler()
	svc.err = errors.New("secret dsn /var/lib/retention.db")

	w := serve(h, "/api/v1/retention")

	resp := parseResponse[ErrorResponse](t, w.Body)
	assert.Equal(t, "internal error", resp.Error)
}

// =============================================================================
// OpenAPI Endpoint Tests
// =============================================================================

func TestOpenAPI_Document(t *testing.T) {
	h, _ := newTestHandler()

	w := serve(h, "/openapi.json")

	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		Info struct {
			Version string `json:"version"`
		} `json:"info"`
		Paths      map[string]any `json:"paths"`
		Components struct {
			Schemas map[string]any `json:"schemas"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	assert.Equal(t, "1.2.3", doc.Info.Version)
	assert.Contains(t, doc.Paths, "/api/v1/retention")
	assert.Contains(t, doc.Paths, "/health")
	assert.Contains(t, doc.Paths, "/ready")
	assert.Contains(t, doc.Components.Schemas, "RetentionResponse")
	assert.Contains(t, doc.Components.Schemas, "RetentionResult")
	assert.Contains(t, doc.Components.Schemas, "Diagnostic")
}

func TestNewOpenAPIGenerator_DevVersion(t *testing.T) {
	spec := NewOpenAPIGenerator("dev").Generate()
	assert.Equal(t, "0.0.0-dev", spec.Info.Version)
}
