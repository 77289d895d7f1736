package validation

import (
	"strings"
	"time"

	"github.com/artpar/retention/internal/core/domain"
)

// =============================================================================
// Record Validation Functions
// =============================================================================

// ValidateRelease checks that a release references a known project and
// carries a semantic version. A CreatedAt at domain.MaxTimestamp is accepted
// but reported.
//
// Returns whether the release is valid, and the diagnostics produced.
func ValidateRelease(release domain.Release, projects map[string]domain.Project) (bool, []Diagnostic) {
	var diags []Diagnostic
	valid := true

	switch {
	case strings.TrimSpace(release.ProjectID) == "":
		diags = append(diags, warn(CodeMissingReference, EntityRelease, release.ID,
			"project id is empty"))
		valid = false
	case !hasKey(projects, release.ProjectID):
		diags = append(diags, warn(CodeUnknownReference, EntityRelease, release.ID,
			"project %q does not exist", release.ProjectID))
		valid = false
	}

	if err := domain.ValidateVersion(release.Version); err != nil {
		diags = append(diags, warn(CodeInvalidVersion, EntityRelease, release.ID,
			"version %q rejected: %v", release.Version, err))
		valid = false
	}

	if domain.IsMaxTimestamp(release.CreatedAt) {
		diags = append(diags, warn(CodeSuspiciousTime, EntityRelease, release.ID,
			"created_at %s is the maximum timestamp", release.CreatedAt.Format(time.RFC3339)))
	}

	return valid, diags
}

// ValidateDeployment checks that a deployment references a valid release and
// a known environment. Both references are always checked, so a deployment
// with two bad references yields two diagnostics. A DeployedAt at
// domain.MaxTimestamp is accepted but reported.
func ValidateDeployment(deployment domain.Deployment, releases map[string]domain.Release, environments map[string]domain.Environment) (bool, []Diagnostic) {
	var diags []Diagnostic
	valid := true

	switch {
	case strings.TrimSpace(deployment.ReleaseID) == "":
		diags = append(diags, warn(CodeMissingReference, EntityDeployment, deployment.ID,
			"release id is empty"))
		valid = false
	case !hasKey(releases, deployment.ReleaseID):
		diags = append(diags, warn(CodeUnknownReference, EntityDeployment, deployment.ID,
			"release %q does not exist or is invalid", deployment.ReleaseID))
		valid = false
	}

	switch {
	case strings.TrimSpace(deployment.EnvironmentID) == "":
		diags = append(diags, warn(CodeMissingReference, EntityDeployment, deployment.ID,
			"environment id is empty"))
		valid = false
	case !hasKey(environments, deployment.EnvironmentID):
		diags = append(diags, warn(CodeUnknownReference, EntityDeployment, deployment.ID,
			"environment %q does not exist", deployment.EnvironmentID))
		valid = false
	}

	if domain.IsMaxTimestamp(deployment.DeployedAt) {
		diags = append(diags, warn(CodeSuspiciousTime, EntityDeployment, deployment.ID,
			"deployed_at %s is the maximum timestamp", deployment.DeployedAt.Format(time.RFC3339)))
	}

	return valid, diags
}

func hasKey[T any](m map[string]T, key string) bool {
	_, ok := m[key]
	return ok
}
