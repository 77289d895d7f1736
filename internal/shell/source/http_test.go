package source

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	bodies := map[string]string{
		ProjectsPath:     projectsJSON,
		EnvironmentsPath: environmentsJSON,
		ReleasesPath:     releasesJSON,
		DeploymentsPath:  deploymentsJSON,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("X-API-Key"))
		body, ok := bodies[r.URL.Path[len("/api"):]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewHTTPSource_RequiresBaseURL(t *testing.T) {
	_, err := NewHTTPSource(HTTPConfig{}, nil)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestNewHTTPSource_DefaultTimeout(t *testing.T) {
	src, err := NewHTTPSource(HTTPConfig{BaseURL: "http://localhost:8082/"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8082", src.baseURL)
	assert.Equal(t, 10*time.Second, src.httpClient.Timeout)
	assert.NotNil(t, src.logger)
}

func TestHTTPSource_FetchesAllCollections(t *testing.T) {
	server := newFixtureServer(t)
	src, err := NewHTTPSource(HTTPConfig{BaseURL: server.URL + "/api", APIKey: "test-api-key"}, slog.Default())
	require.NoError(t, err)

	in, err := FetchAll(context.Background(), src)
	require.NoError(t, err)

	assert.Len(t, in.Projects, 2)
	assert.Len(t, in.Environments, 2)
	assert.Len(t, in.Releases, 3)
	require.Len(t, in.Deployments, 2)
	assert.Equal(t, "Environment-1", in.Deployments[0].EnvironmentID)
	assert.Equal(t, time.Date(2000, 1, 1, 10, 0, 0, 0, time.UTC), in.Deployments[0].DeployedAt)
}

func TestHTTPSource_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("database offline"))
	}))
	defer server.Close()

	src, err := NewHTTPSource(HTTPConfig{BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = src.Releases(context.Background())
	require.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "database offline")
}

func TestHTTPSource_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"Id": "Deployment-1", "DeployedAt": 12}]`))
	}))
	defer server.Close()

	src, err := NewHTTPSource(HTTPConfig{BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = src.Deployments(context.Background())
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestHTTPSource_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	src, err := NewHTTPSource(HTTPConfig{BaseURL: url, Timeout: time.Second}, nil)
	require.NoError(t, err)

	_, err = src.Projects(context.Background())
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Error(t, src.Ping(context.Background()))
}

func TestHTTPSource_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, ProjectsPath, r.URL.Path)
	}))
	defer server.Close()

	src, err := NewHTTPSource(HTTPConfig{BaseURL: server.URL}, nil)
	require.NoError(t, err)

	assert.NoError(t, src.Ping(context.Background()))
	assert.NoError(t, src.Close())
}
