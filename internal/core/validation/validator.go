package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/artpar/retention/internal/core/domain"
)

// =============================================================================
// Errors
// =============================================================================

// ErrNoData is returned when one of the raw input collections is empty.
// It is the only fatal condition of validation.
var ErrNoData = errors.New("no data")

// =============================================================================
// Input / Result
// =============================================================================

// Input holds the four raw collections as supplied by a record source.
type Input struct {
	Projects     []domain.Project
	Environments []domain.Environment
	Releases     []domain.Release
	Deployments  []domain.Deployment
}

// Result holds the validated lookups. ReleaseByID only contains valid
// releases and DeploymentByID only contains deployments whose release and
// environment are both present in this Result.
type Result struct {
	ProjectByID     map[string]domain.Project
	EnvironmentByID map[string]domain.Environment
	ReleaseByID     map[string]domain.Release
	DeploymentByID  map[string]domain.Deployment

	// Diagnostics lists every record-level defect in input order,
	// grouped by entity (projects, environments, releases, deployments).
	Diagnostics []Diagnostic
}

// =============================================================================
// Validation
// =============================================================================

// RequireNonEmpty fails with ErrNoData if any raw collection is empty.
// The error names every empty collection.
func RequireNonEmpty(in Input) error {
	var empty []string
	if len(in.Projects) == 0 {
		empty = append(empty, "projects")
	}
	if len(in.Environments) == 0 {
		empty = append(empty, "environments")
	}
	if len(in.Releases) == 0 {
		empty = append(empty, "releases")
	}
	if len(in.Deployments) == 0 {
		empty = append(empty, "deployments")
	}
	if len(empty) > 0 {
		return fmt.Errorf("%w: empty %s", ErrNoData, strings.Join(empty, ", "))
	}
	return nil
}

// Validate builds the lookups for one retention run.
//
// The steps are:
//  1. Fail with ErrNoData if any collection is empty
//  2. Index projects and environments by id (first occurrence wins)
//  3. Deduplicate releases, then keep those passing ValidateRelease
//  4. Deduplicate deployments, then keep those passing ValidateDeployment
//     against the valid releases from step 3
//
// Record-level defects never produce an error; they are excluded and
// reported in Result.Diagnostics.
func Validate(in Input) (*Result, error) {
	if err := RequireNonEmpty(in); err != nil {
		return nil, err
	}

	var diags []Diagnostic

	projects, d := BuildLookup(in.Projects, func(p domain.Project) string { return p.ID }, EntityProject)
	diags = append(diags, d...)

	environments, d := BuildLookup(in.Environments, func(e domain.Environment) string { return e.ID }, EntityEnvironment)
	diags = append(diags, d...)

	uniqueReleases, d := Dedupe(in.Releases, func(r domain.Release) string { return r.ID }, EntityRelease)
	diags = append(diags, d...)

	releases := make(map[string]domain.Release, len(uniqueReleases))
	for _, release := range uniqueReleases {
		ok, d := ValidateRelease(release, projects)
		diags = append(diags, d...)
		if ok {
			releases[release.ID] = release
		}
	}

	uniqueDeployments, d := Dedupe(in.Deployments, func(dep domain.Deployment) string { return dep.ID }, EntityDeployment)
	diags = append(diags, d...)

	deployments := make(map[string]domain.Deployment, len(uniqueDeployments))
	for _, deployment := range uniqueDeployments {
		ok, d := ValidateDeployment(deployment, releases, environments)
		diags = append(diags, d...)
		if ok {
			deployments[deployment.ID] = deployment
		}
	}

	return &Result{
		ProjectByID:     projects,
		EnvironmentByID: environments,
		ReleaseByID:     releases,
		DeploymentByID:  deployments,
		Diagnostics:     diags,
	}, nil
}
