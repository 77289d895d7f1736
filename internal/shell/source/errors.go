package source

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrFetchFailed is returned when records cannot be read from the backend.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrInvalidData is returned when a payload cannot be decoded.
	ErrInvalidData = errors.New("invalid data format")

	// ErrConnectionFailed is returned when the backend cannot be reached or opened.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrMigrationFailed is returned when the SQLite schema cannot be applied.
	ErrMigrationFailed = errors.New("database migration failed")

	// ErrUnknownKind is returned for an unsupported source kind.
	ErrUnknownKind = errors.New("unknown source kind")
)

// SourceError wraps errors with additional context.
type SourceError struct {
	Op      string // Operation that failed (e.g., "Releases")
	Entity  string // Entity collection (e.g., "releases")
	Message string
	Err     error
}

func (e *SourceError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new SourceError.
func NewSourceError(op, entity, message string, err error) *SourceError {
	return &SourceError{
		Op:      op,
		Entity:  entity,
		Message: message,
		Err:     err,
	}
}
