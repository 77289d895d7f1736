package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/artpar/retention/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// File Source
// =============================================================================

// Collection file base names, without extension.
const (
	ProjectsFile     = "Projects"
	EnvironmentsFile = "Environments"
	ReleasesFile     = "Releases"
	DeploymentsFile  = "Deployments"
)

// Supported file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var formatExtensions = map[string][]string{
	FormatJSON: {".json"},
	FormatYAML: {".yaml", ".yml"},
}

// FileSource reads each collection from a file in a directory, e.g.
// data/Projects.json or data/Releases.yaml.
type FileSource struct {
	dir    string
	format string
	logger *slog.Logger
}

// NewFileSource creates a file source rooted at dir. format may be "json",
// "yaml" or empty to pick by file extension (json first).
func NewFileSource(dir, format string, logger *slog.Logger) (*FileSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "yml" {
		format = FormatYAML
	}
	if format != "" && format != FormatJSON && format != FormatYAML {
		return nil, NewSourceError("NewFileSource", "", fmt.Sprintf("unsupported format %q", format), ErrInvalidData)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, NewSourceError("NewFileSource", "", err.Error(), ErrConnectionFailed)
	}
	if !info.IsDir() {
		return nil, NewSourceError("NewFileSource", "", dir+" is not a directory", ErrConnectionFailed)
	}

	return &FileSource{
		dir:    dir,
		format: format,
		logger: logger,
	}, nil
}

func (s *FileSource) Projects(ctx context.Context) ([]domain.Project, error) {
	records, err := readFile[projectRecord](ctx, s, ProjectsFile)
	if err != nil {
		return nil, err
	}
	return convert(records, projectRecord.toDomain), nil
}

func (s *FileSource) Environments(ctx context.Context) ([]domain.Environment, error) {
	records, err := readFile[environmentRecord](ctx, s, EnvironmentsFile)
	if err != nil {
		return nil, err
	}
	return convert(records, environmentRecord.toDomain), nil
}

func (s *FileSource) Releases(ctx context.Context) ([]domain.Release, error) {
	records, err := readFile[releaseRecord](ctx, s, ReleasesFile)
	if err != nil {
		return nil, err
	}
	return convert(records, releaseRecord.toDomain), nil
}

func (s *FileSource) Deployments(ctx context.Context) ([]domain.Deployment, error) {
	records, err := readFile[deploymentRecord](ctx, s, DeploymentsFile)
	if err != nil {
		return nil, err
	}
	return convert(records, deploymentRecord.toDomain), nil
}

// Ping checks that the directory is still readable.
func (s *FileSource) Ping(ctx context.Context) error {
	if _, err := os.ReadDir(s.dir); err != nil {
		return NewSourceError("Ping", "", err.Error(), ErrConnectionFailed)
	}
	return nil
}

// Close is a no-op for the file source.
func (s *FileSource) Close() error {
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// locate finds the file for a collection and reports its format.
func (s *FileSource) locate(base string) (string, string, error) {
	formats := []string{FormatJSON, FormatYAML}
	if s.format != "" {
		formats = []string{s.format}
	}

	for _, format := range formats {
		for _, ext := range formatExtensions[format] {
			path := filepath.Join(s.dir, base+ext)
			if _, err := os.Stat(path); err == nil {
				return path, format, nil
			} else if !errors.Is(err, fs.ErrNotExist) {
				return "", "", err
			}
		}
	}

	return "", "", fmt.Errorf("no %s file in %s: %w", base, s.dir, fs.ErrNotExist)
}

func readFile[R any](ctx context.Context, s *FileSource, base string) ([]R, error) {
	entity := strings.ToLower(base)
	if err := ctx.Err(); err != nil {
		return nil, NewSourceError("Read", entity, err.Error(), ErrFetchFailed)
	}

	path, format, err := s.locate(base)
	if err != nil {
		return nil, NewSourceError("Read", entity, err.Error(), ErrFetchFailed)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewSourceError("Read", entity, err.Error(), ErrFetchFailed)
	}

	data = bytes.TrimPrefix(data, utf8BOM)

	var records []R
	switch format {
	case FormatYAML:
		err = decodeYAML(data, &records)
	default:
		err = json.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, NewSourceError("Read", entity, fmt.Sprintf("failed to parse %s: %v", path, err), ErrInvalidData)
	}

	s.logger.Debug("read records", "entity", entity, "path", path, "count", len(records))
	return records, nil
}

// decodeYAML rejects keys that match no record field. yaml.v3 matches keys
// case-sensitively, so "id:" would otherwise decode to a blank id.
func decodeYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
