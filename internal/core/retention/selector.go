package retention

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/artpar/retention/internal/core/domain"
	"github.com/artpar/retention/internal/core/validation"
)

// =============================================================================
// Errors
// =============================================================================

// ErrInvalidArgument is returned when the keep count (or another caller
// supplied option) is out of range. No computation is performed.
var ErrInvalidArgument = errors.New("invalid argument")

// CodeBelowCutoff marks a release that ranked below the keep count.
const CodeBelowCutoff validation.Code = "below_retention_cutoff"

// ValidateKeepCount checks that keepCount is a positive integer.
func ValidateKeepCount(keepCount int) error {
	if keepCount <= 0 {
		return fmt.Errorf("%w: keep count must be a positive integer, got %d", ErrInvalidArgument, keepCount)
	}
	return nil
}

// =============================================================================
// Selection Types
// =============================================================================

// Options tunes the selection.
type Options struct {
	// Aggregate picks the per-release deployment timestamp.
	// The zero value means AggregateEarliest.
	Aggregate Aggregate
}

// GroupKey identifies a retention group.
type GroupKey struct {
	ProjectID     string
	EnvironmentID string
}

func (k GroupKey) String() string {
	return k.ProjectID + "/" + k.EnvironmentID
}

// ReleaseDeploymentStat summarizes the deployments of one release within
// one group.
type ReleaseDeploymentStat struct {
	ReleaseID string
	Release   domain.Release

	// DeployedAt is the aggregate deployment timestamp (see Aggregate).
	DeployedAt time.Time

	// DeploymentCount is the number of deployments of the release in the group.
	DeploymentCount int

	// Rank is the 1-based position of the release in its group.
	Rank int
}

// GroupDecision is the outcome for one (project, environment) pair.
type GroupDecision struct {
	Key     GroupKey
	Kept    []ReleaseDeploymentStat
	Dropped []ReleaseDeploymentStat
}

// Decision is the outcome of one retention run.
type Decision struct {
	// Results holds one entry per kept release per environment, in rank
	// order within each group.
	Results []domain.RetentionResult

	// Groups holds the per-group ranking, including dropped releases.
	Groups []GroupDecision

	// Diagnostics holds validation diagnostics followed by selection ones.
	Diagnostics []validation.Diagnostic
}

// KeptCount returns the number of retained (release, environment) pairs.
func (d *Decision) KeptCount() int {
	return len(d.Results)
}

// DroppedCount returns the number of (release, environment) pairs not retained.
func (d *Decision) DroppedCount() int {
	n := 0
	for _, g := range d.Groups {
		n += len(g.Dropped)
	}
	return n
}

// =============================================================================
// Selection Algorithm
// =============================================================================

// Select decides which releases to keep in every group.
//
// Algorithm:
//  1. Map every valid release to its project
//  2. Group valid deployments by (project, environment)
//  3. Within each group, aggregate deployments per release (RankReleases)
//  4. Keep the first keepCount ranked releases, drop the rest
//  5. Emit a RetentionResult per kept release with project and environment names
//
// Groups are processed in (ProjectID, EnvironmentID) order.
func Select(v *validation.Result, keepCount int, opts Options) (*Decision, error) {
	if err := ValidateKeepCount(keepCount); err != nil {
		return nil, err
	}
	agg, err := ParseAggregate(string(opts.Aggregate))
	if err != nil {
		return nil, err
	}

	// Step 1: release -> project
	projectOf := make(map[string]string, len(v.ReleaseByID))
	for id, release := range v.ReleaseByID {
		projectOf[id] = release.ProjectID
	}

	// Step 2: group deployments
	groups := make(map[GroupKey][]domain.Deployment)
	for _, d := range v.DeploymentByID {
		key := GroupKey{ProjectID: projectOf[d.ReleaseID], EnvironmentID: d.EnvironmentID}
		groups[key] = append(groups[key], d)
	}

	keys := make([]GroupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ProjectID != keys[j].ProjectID {
			return keys[i].ProjectID < keys[j].ProjectID
		}
		return keys[i].EnvironmentID < keys[j].EnvironmentID
	})

	decision := &Decision{
		Groups: make([]GroupDecision, 0, len(keys)),
	}

	for _, key := range keys {
		// Step 3: rank
		ranked := RankReleases(groups[key], v.ReleaseByID, agg)

		// Step 4: cut
		cut := min(keepCount, len(ranked))
		group := GroupDecision{
			Key:     key,
			Kept:    ranked[:cut],
			Dropped: ranked[cut:],
		}
		decision.Groups = append(decision.Groups, group)

		for _, stat := range group.Dropped {
			decision.Diagnostics = append(decision.Diagnostics, validation.Diagnostic{
				Level:  validation.LevelInfo,
				Code:   CodeBelowCutoff,
				Entity: validation.EntityRelease,
				ID:     stat.ReleaseID,
				Message: fmt.Sprintf("not retained in %s: rank %d of %d, keep count %d",
					key, stat.Rank, len(ranked), keepCount),
			})
		}

		// Step 5: enrich
		project := v.ProjectByID[key.ProjectID]
		environment := v.EnvironmentByID[key.EnvironmentID]
		for _, stat := range group.Kept {
			decision.Results = append(decision.Results, domain.RetentionResult{
				ReleaseID:       stat.ReleaseID,
				ProjectID:       project.ID,
				ProjectName:     project.Name,
				EnvironmentID:   environment.ID,
				EnvironmentName: environment.Name,
				Version:         stat.Release.Version,
				LastDeployedAt:  stat.DeployedAt,
			})
		}
	}

	return decision, nil
}

// RankReleases aggregates the deployments of a single group per release and
// orders the releases by aggregate timestamp descending, then by release
// creation time descending, then by release id ascending.
//
// Deployments whose release is missing from releases are ignored.
//
// Example:
//
//	// R1 created 08:00, R2 created 09:00, both deployed at 10:00
//	ranked := RankReleases(deployments, releases, AggregateEarliest)
//	// ranked[0].ReleaseID == "R2" (later creation breaks the tie)
func RankReleases(deployments []domain.Deployment, releases map[string]domain.Release, agg Aggregate) []ReleaseDeploymentStat {
	byRelease := make(map[string]*ReleaseDeploymentStat)
	for _, d := range deployments {
		release, ok := releases[d.ReleaseID]
		if !ok {
			continue
		}
		stat, seen := byRelease[d.ReleaseID]
		if !seen {
			byRelease[d.ReleaseID] = &ReleaseDeploymentStat{
				ReleaseID:       d.ReleaseID,
				Release:         release,
				DeployedAt:      d.DeployedAt,
				DeploymentCount: 1,
			}
			continue
		}
		stat.DeploymentCount++
		if agg.pick(stat.DeployedAt, d.DeployedAt) {
			stat.DeployedAt = d.DeployedAt
		}
	}

	ranked := make([]ReleaseDeploymentStat, 0, len(byRelease))
	for _, stat := range byRelease {
		ranked = append(ranked, *stat)
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if !a.DeployedAt.Equal(b.DeployedAt) {
			return a.DeployedAt.After(b.DeployedAt)
		}
		if !a.Release.CreatedAt.Equal(b.Release.CreatedAt) {
			return a.Release.CreatedAt.After(b.Release.CreatedAt)
		}
		return a.ReleaseID < b.ReleaseID
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return ranked
}
