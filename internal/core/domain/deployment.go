package domain

import "time"

// =============================================================================
// Deployment
// =============================================================================

// Deployment records one Release being deployed to one Environment.
// A Release may have many Deployments across many Environments.
type Deployment struct {
	ID            string    `json:"id"`
	ReleaseID     string    `json:"release_id"`
	EnvironmentID string    `json:"environment_id"`
	DeployedAt    time.Time `json:"deployed_at"`
}

// =============================================================================
// Timestamps
// =============================================================================

// MaxTimestamp is the largest timestamp the record sources can express
// (the last instant of year 9999). Data feeds use it as a "never" sentinel.
var MaxTimestamp = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)

// IsMaxTimestamp reports whether t falls within the final second of year 9999.
// Sources differ in sub-second precision, so the fractional part is ignored.
func IsMaxTimestamp(t time.Time) bool {
	return !t.Before(MaxTimestamp.Truncate(time.Second))
}
