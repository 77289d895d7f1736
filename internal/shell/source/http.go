package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/artpar/retention/internal/core/domain"
)

// =============================================================================
// HTTP Source
// =============================================================================

// Collection paths, relative to the base URL.
const (
	ProjectsPath     = "/projects"
	EnvironmentsPath = "/environments"
	ReleasesPath     = "/releases"
	DeploymentsPath  = "/deployments"
)

// HTTPConfig holds HTTP source configuration.
type HTTPConfig struct {
	BaseURL string // API root, e.g., "http://localhost:8082/api"
	APIKey  string // Sent as X-API-Key when set
	Timeout time.Duration
}

// HTTPSource reads each collection from a JSON endpoint of a remote API.
type HTTPSource struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPSource creates a new HTTP source.
func NewHTTPSource(cfg HTTPConfig, logger *slog.Logger) (*HTTPSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, NewSourceError("NewHTTPSource", "", "base URL is required", ErrConnectionFailed)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

func (s *HTTPSource) Projects(ctx context.Context) ([]domain.Project, error) {
	records, err := fetchJSON[projectRecord](ctx, s, ProjectsPath, "projects")
	if err != nil {
		return nil, err
	}
	return convert(records, projectRecord.toDomain), nil
}

func (s *HTTPSource) Environments(ctx context.Context) ([]domain.Environment, error) {
	records, err := fetchJSON[environmentRecord](ctx, s, EnvironmentsPath, "environments")
	if err != nil {
		return nil, err
	}
	return convert(records, environmentRecord.toDomain), nil
}

func (s *HTTPSource) Releases(ctx context.Context) ([]domain.Release, error) {
	records, err := fetchJSON[releaseRecord](ctx, s, ReleasesPath, "releases")
	if err != nil {
		return nil, err
	}
	return convert(records, releaseRecord.toDomain), nil
}

func (s *HTTPSource) Deployments(ctx context.Context) ([]domain.Deployment, error) {
	records, err := fetchJSON[deploymentRecord](ctx, s, DeploymentsPath, "deployments")
	if err != nil {
		return nil, err
	}
	return convert(records, deploymentRecord.toDomain), nil
}

// Ping issues a HEAD request against the projects endpoint.
func (s *HTTPSource) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.baseURL+ProjectsPath, nil)
	if err != nil {
		return NewSourceError("Ping", "", fmt.Sprintf("create request: %v", err), ErrConnectionFailed)
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return NewSourceError("Ping", "", fmt.Sprintf("send request: %v", err), ErrConnectionFailed)
	}
	resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return NewSourceError("Ping", "", fmt.Sprintf("unexpected status %d", resp.StatusCode), ErrConnectionFailed)
	}
	return nil
}

// Close releases idle connections.
func (s *HTTPSource) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func (s *HTTPSource) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}
}

func fetchJSON[R any](ctx context.Context, s *HTTPSource, path, entity string) ([]R, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, NewSourceError("Fetch", entity, fmt.Sprintf("create request: %v", err), ErrFetchFailed)
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, NewSourceError("Fetch", entity, fmt.Sprintf("send request: %v", err), ErrFetchFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, NewSourceError("Fetch", entity,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), ErrFetchFailed)
	}

	var records []R
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, NewSourceError("Fetch", entity, fmt.Sprintf("decode response: %v", err), ErrInvalidData)
	}

	s.logger.Debug("fetched records", "entity", entity, "url", req.URL.String(), "count", len(records))
	return records, nil
}
