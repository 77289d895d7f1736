package source

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{"2000-01-01T10:00:00Z", time.Date(2000, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2000-01-01T10:00:00+02:00", time.Date(2000, 1, 1, 8, 0, 0, 0, time.UTC)},
		{"2000-01-01T10:00:00", time.Date(2000, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2000-01-01T10:00:00.5", time.Date(2000, 1, 1, 10, 0, 0, 500000000, time.UTC)},
		{"2000-01-01 10:00:00", time.Date(2000, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2000-01-01", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"9999-12-31T23:59:59.9999999", time.Date(9999, 12, 31, 23, 59, 59, 999999900, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestReleaseRecord_JSON(t *testing.T) {
	data := `[
		{"Id": "Release-1", "ProjectId": "Project-1", "Version": "1.0.0", "Created": "2000-01-01T08:00:00"},
		{"Id": "Release-2", "ProjectId": "Project-1", "Version": null, "Created": null}
	]`

	var records []releaseRecord
	require.NoError(t, json.Unmarshal([]byte(data), &records))
	require.Len(t, records, 2)

	first := records[0].toDomain()
	assert.Equal(t, "Release-1", first.ID)
	assert.Equal(t, "Project-1", first.ProjectID)
	assert.Equal(t, "1.0.0", first.Version)
	assert.Equal(t, time.Date(2000, 1, 1, 8, 0, 0, 0, time.UTC), first.CreatedAt)

	second := records[1].toDomain()
	assert.Empty(t, second.Version)
	assert.True(t, second.CreatedAt.IsZero())
}

func TestDeploymentRecord_JSONBadTimestamp(t *testing.T) {
	var records []deploymentRecord
	err := json.Unmarshal([]byte(`[{"Id": "D1", "DeployedAt": "soon"}]`), &records)
	assert.Error(t, err)
}

func TestDeploymentRecord_YAML(t *testing.T) {
	data := `
- Id: Deployment-1
  ReleaseId: Release-1
  EnvironmentId: Environment-1
  DeployedAt: 2000-01-01T10:00:00
- Id: Deployment-2
  ReleaseId: Release-1
  EnvironmentId: Environment-2
  DeployedAt: null
`

	var records []deploymentRecord
	require.NoError(t, yaml.Unmarshal([]byte(data), &records))
	require.Len(t, records, 2)

	first := records[0].toDomain()
	assert.Equal(t, "Deployment-1", first.ID)
	assert.Equal(t, "Environment-1", first.EnvironmentID)
	assert.Equal(t, time.Date(2000, 1, 1, 10, 0, 0, 0, time.UTC), first.DeployedAt)
	assert.True(t, records[1].toDomain().DeployedAt.IsZero())
}
