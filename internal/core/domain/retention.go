package domain

import (
	"sort"
	"time"
)

// =============================================================================
// Retention Result
// =============================================================================

// RetentionResult is one retained release in one environment.
// ProjectName and EnvironmentName are resolved from the same lookups the
// decision was made from, so they are always present.
type RetentionResult struct {
	ReleaseID       string    `json:"release_id"`
	ProjectID       string    `json:"project_id"`
	ProjectName     string    `json:"project_name"`
	EnvironmentID   string    `json:"environment_id"`
	EnvironmentName string    `json:"environment_name"`
	Version         string    `json:"version"`
	LastDeployedAt  time.Time `json:"last_deployed_at"`
}

// SortResults orders results by ProjectID then EnvironmentID for presentation.
// The sort is stable, so the rank order inside each group is preserved.
func SortResults(results []RetentionResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ProjectID != results[j].ProjectID {
			return results[i].ProjectID < results[j].ProjectID
		}
		return results[i].EnvironmentID < results[j].EnvironmentID
	})
}
