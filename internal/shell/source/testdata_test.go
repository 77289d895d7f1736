package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Fixtures
// =============================================================================

const projectsJSON = `[
  {"Id": "Project-1", "Name": "Random Quotes"},
  {"Id": "Project-2", "Name": "Pet Shop"}
]`

const environmentsJSON = `[
  {"Id": "Environment-1", "Name": "Staging"},
  {"Id": "Environment-2", "Name": "Production"}
]`

const releasesJSON = `[
  {"Id": "Release-1", "ProjectId": "Project-1", "Version": "1.0.0", "Created": "2000-01-01T09:00:00"},
  {"Id": "Release-2", "ProjectId": "Project-1", "Version": "1.0.1", "Created": "2000-01-02T09:00:00"},
  {"Id": "Release-1", "ProjectId": "Project-2", "Version": "9.9.9", "Created": "2000-01-03T09:00:00"}
]`

const deploymentsJSON = `[
  {"Id": "Deployment-1", "ReleaseId": "Release-1", "EnvironmentId": "Environment-1", "DeployedAt": "2000-01-01T10:00:00"},
  {"Id": "Deployment-2", "ReleaseId": "Release-2", "EnvironmentId": "Environment-1", "DeployedAt": "2000-01-02T10:00:00Z"}
]`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeJSONFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "Projects.json", projectsJSON)
	writeFile(t, dir, "Environments.json", environmentsJSON)
	writeFile(t, dir, "Releases.json", releasesJSON)
	writeFile(t, dir, "Deployments.json", deploymentsJSON)
	return dir
}
