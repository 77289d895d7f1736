package retention

import (
	"github.com/artpar/retention/internal/core/validation"
)

// ComputeRetention validates the raw collections and selects the releases to
// keep in every (project, environment) group.
//
// It fails with ErrInvalidArgument if keepCount <= 0 or opts.Aggregate is not
// a known mode (both checked before any data is looked at) and with validation.ErrNoData if any of the four
// collections is empty. No partial Decision is returned on failure.
func ComputeRetention(in validation.Input, keepCount int, opts Options) (*Decision, error) {
	if err := ValidateKeepCount(keepCount); err != nil {
		return nil, err
	}
	if _, err := ParseAggregate(string(opts.Aggregate)); err != nil {
		return nil, err
	}

	valid, err := validation.Validate(in)
	if err != nil {
		return nil, err
	}

	decision, err := Select(valid, keepCount, opts)
	if err != nil {
		return nil, err
	}

	decision.Diagnostics = append(valid.Diagnostics, decision.Diagnostics...)
	return decision, nil
}
