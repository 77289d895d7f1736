// Package validation turns raw, possibly dirty record collections into
// referentially consistent lookups.
//
// This package contains the functional core logic of the data validator.
// All functions are pure (no I/O, no side effects): record-level defects
// are reported as Diagnostic values instead of being logged, and the
// imperative shell decides how to surface them.
//
// # Functions
//
//   - RequireNonEmpty: Fail with ErrNoData when a raw collection is empty
//   - BuildLookup: Index items by id, first occurrence wins
//   - ValidateRelease: Check a release's project reference and version
//   - ValidateDeployment: Check a deployment's release and environment references
//   - Validate: Run all of the above and return a Result
//
// # Usage
//
//	result, err := validation.Validate(validation.Input{
//	    Projects:     projects,
//	    Environments: environments,
//	    Releases:     releases,
//	    Deployments:  deployments,
//	})
//	if errors.Is(err, validation.ErrNoData) {
//	    // one of the four collections was empty
//	}
package validation
