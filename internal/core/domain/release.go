package domain

import (
	"errors"
	"time"

	"github.com/Masterminds/semver/v3"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// Version validation errors
	ErrVersionRequired      = errors.New("version is required")
	ErrVersionInvalidFormat = errors.New("version must be a semantic version (MAJOR.MINOR.PATCH[-pre][+build])")
)

// =============================================================================
// Release
// =============================================================================

// Release is a versioned build of exactly one Project.
type Release struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// =============================================================================
// Validation Functions (Pure)
// =============================================================================

// ValidateVersion checks that version is a SemVer 2.0.0 string.
// Shorthands such as "1.2" or a leading "v" are rejected.
//
// Example:
//
//	ValidateVersion("1.0.0-beta.1+build.7") // nil
//	ValidateVersion("not-semver")           // ErrVersionInvalidFormat
func ValidateVersion(version string) error {
	if version == "" {
		return ErrVersionRequired
	}
	if _, err := semver.StrictNewVersion(version); err != nil {
		return ErrVersionInvalidFormat
	}
	return nil
}
