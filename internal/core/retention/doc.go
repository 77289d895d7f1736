// Package retention decides which deployed releases to keep for every
// (project, environment) pair under a "keep the N most recently deployed"
// policy.
//
// This package contains the functional core of the retention engine. All
// functions are pure (no I/O, no side effects) and work only on
// already-materialized collections; nothing here ever deletes anything.
//
// # Functions
//
//   - ComputeRetention: Validate raw records and select the releases to keep
//   - Select: Group, rank and cut valid deployments from a validation.Result
//   - RankReleases: Aggregate and order the releases of a single group
//
// # Usage
//
// The imperative shell (internal/shell/retention) fetches the four record
// collections, then hands them to ComputeRetention:
//
//	decision, err := retention.ComputeRetention(input, 3, retention.Options{})
//	if errors.Is(err, retention.ErrInvalidArgument) {
//	    // keep count was not positive
//	}
//	for _, r := range decision.Results {
//	    fmt.Println(r.ProjectName, r.EnvironmentName, r.Version)
//	}
//
// Results are ordered by rank inside each group. The order of groups is not
// part of the contract; callers that present results sort them with
// domain.SortResults.
package retention
