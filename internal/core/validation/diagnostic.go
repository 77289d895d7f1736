package validation

import "fmt"

// =============================================================================
// Diagnostics
// =============================================================================

// Level is the severity of a Diagnostic.
type Level string

const (
	LevelInfo Level = "info"
	LevelWarn Level = "warn"
)

// Code identifies the kind of record-level defect.
type Code string

const (
	CodeDuplicateID      Code = "duplicate_id"
	CodeMissingReference Code = "missing_reference"
	CodeUnknownReference Code = "unknown_reference"
	CodeInvalidVersion   Code = "invalid_version"
	CodeSuspiciousTime   Code = "suspicious_timestamp"
)

// Entity names used in diagnostics and errors.
const (
	EntityProject     = "project"
	EntityEnvironment = "environment"
	EntityRelease     = "release"
	EntityDeployment  = "deployment"
)

// Diagnostic describes a non-fatal defect found in one record.
// The offending record has already been excluded (or, for suspicious
// timestamps, accepted) by the time a Diagnostic is produced.
type Diagnostic struct {
	Level   Level  `json:"level"`
	Code    Code   `json:"code"`
	Entity  string `json:"entity"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s %s: %s", d.Code, d.Entity, d.ID, d.Message)
}

func warn(code Code, entity, id, format string, args ...any) Diagnostic {
	return Diagnostic{
		Level:   LevelWarn,
		Code:    code,
		Entity:  entity,
		ID:      id,
		Message: fmt.Sprintf(format, args...),
	}
}
