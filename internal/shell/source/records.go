package source

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/retention/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Wire Records
// =============================================================================

// The record shapes below match the data files and the remote API. Ids and
// versions may be null or missing; the validator decides what to keep.

type projectRecord struct {
	ID   string `json:"Id" yaml:"Id"`
	Name string `json:"Name" yaml:"Name"`
}

type environmentRecord struct {
	ID   string `json:"Id" yaml:"Id"`
	Name string `json:"Name" yaml:"Name"`
}

type releaseRecord struct {
	ID        string    `json:"Id" yaml:"Id"`
	ProjectID string    `json:"ProjectId" yaml:"ProjectId"`
	Version   string    `json:"Version" yaml:"Version"`
	Created   Timestamp `json:"Created" yaml:"Created"`
}

type deploymentRecord struct {
	ID            string    `json:"Id" yaml:"Id"`
	ReleaseID     string    `json:"ReleaseId" yaml:"ReleaseId"`
	EnvironmentID string    `json:"EnvironmentId" yaml:"EnvironmentId"`
	DeployedAt    Timestamp `json:"DeployedAt" yaml:"DeployedAt"`
}

func (r projectRecord) toDomain() domain.Project {
	return domain.Project{ID: r.ID, Name: r.Name}
}

func (r environmentRecord) toDomain() domain.Environment {
	return domain.Environment{ID: r.ID, Name: r.Name}
}

func (r releaseRecord) toDomain() domain.Release {
	return domain.Release{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		Version:   r.Version,
		CreatedAt: r.Created.Time(),
	}
}

func (r deploymentRecord) toDomain() domain.Deployment {
	return domain.Deployment{
		ID:            r.ID,
		ReleaseID:     r.ReleaseID,
		EnvironmentID: r.EnvironmentID,
		DeployedAt:    r.DeployedAt.Time(),
	}
}

func convert[R any, T any](records []R, fn func(R) T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, fn(r))
	}
	return out
}

// =============================================================================
// Timestamps
// =============================================================================

// timestampLayouts are tried in order. Layouts without a zone parse as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats found in record sources:
// RFC 3339 with or without fractional seconds, and the same without a zone
// (treated as UTC).
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Timestamp is a time.Time that decodes the lenient formats of ParseTimestamp.
// A null or empty value decodes as the zero time.
type Timestamp time.Time

// Time returns the underlying time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	return t.set(s)
}

func (t *Timestamp) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*t = Timestamp{}
		return nil
	}
	return t.set(node.Value)
}

func (t *Timestamp) set(s string) error {
	if strings.TrimSpace(s) == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// MarshalJSON writes the timestamp as RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}
