package retention

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// Aggregate Mode
// =============================================================================

// Aggregate selects which deployment timestamp represents a release within
// a group. The result is reported as RetentionResult.LastDeployedAt.
type Aggregate string

const (
	// AggregateEarliest uses the first deployment of the release to the
	// environment. This is the default.
	AggregateEarliest Aggregate = "earliest"

	// AggregateLatest uses the most recent deployment of the release to
	// the environment.
	AggregateLatest Aggregate = "latest"
)

// ParseAggregate parses an aggregate mode. An empty string yields the default.
func ParseAggregate(s string) (Aggregate, error) {
	switch Aggregate(strings.ToLower(strings.TrimSpace(s))) {
	case "", AggregateEarliest:
		return AggregateEarliest, nil
	case AggregateLatest:
		return AggregateLatest, nil
	default:
		return "", fmt.Errorf("%w: unknown aggregate mode %q (want %q or %q)",
			ErrInvalidArgument, s, AggregateEarliest, AggregateLatest)
	}
}

// pick reports whether candidate should replace current as the aggregate.
func (a Aggregate) pick(current, candidate time.Time) bool {
	if a == AggregateLatest {
		return candidate.After(current)
	}
	return candidate.Before(current)
}
