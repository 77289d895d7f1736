package source

import (
	"context"

	"github.com/artpar/retention/internal/core/validation"
)

// FetchAll reads the four collections one after another. The first failure
// aborts the fetch and is returned unchanged; no partial records are returned.
func FetchAll(ctx context.Context, src Source) (validation.Input, error) {
	var in validation.Input
	var err error

	if in.Projects, err = src.Projects(ctx); err != nil {
		return validation.Input{}, err
	}
	if in.Environments, err = src.Environments(ctx); err != nil {
		return validation.Input{}, err
	}
	if in.Releases, err = src.Releases(ctx); err != nil {
		return validation.Input{}, err
	}
	if in.Deployments, err = src.Deployments(ctx); err != nil {
		return validation.Input{}, err
	}

	return in, nil
}
