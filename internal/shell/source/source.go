// Package source implements the record sources the retention engine reads
// projects, environments, releases and deployments from.
// This is part of the Imperative Shell - it handles I/O with files, HTTP
// APIs and SQLite, and hands plain domain values to the core.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/artpar/retention/internal/core/domain"
)

// =============================================================================
// Source Interface
// =============================================================================

// Source fetches the four raw record collections. Each fetch is independent
// and returns records in source order, duplicates and dangling references
// included; cleaning them up is the validator's job.
type Source interface {
	Projects(ctx context.Context) ([]domain.Project, error)
	Environments(ctx context.Context) ([]domain.Environment, error)
	Releases(ctx context.Context) ([]domain.Release, error)
	Deployments(ctx context.Context) ([]domain.Deployment, error)

	// Close releases any resources held by the source.
	Close() error
}

// Pinger is implemented by sources that can check their backend cheaply.
type Pinger interface {
	Ping(ctx context.Context) error
}

// =============================================================================
// Configuration
// =============================================================================

// Kind names a Source implementation.
type Kind string

const (
	KindFile   Kind = "file"
	KindHTTP   Kind = "http"
	KindSQLite Kind = "sqlite"
)

// IsValid checks if the source kind is known.
func (k Kind) IsValid() bool {
	switch k {
	case KindFile, KindHTTP, KindSQLite:
		return true
	default:
		return false
	}
}

// Config selects and configures a Source.
type Config struct {
	Kind Kind

	// Dir is the directory holding the record files (file source).
	Dir string
	// Format forces "json" or "yaml" (file source). Empty means detect.
	Format string

	// BaseURL is the API root, e.g. "https://deploy.example.com/api" (http source).
	BaseURL string
	// APIKey is sent as X-API-Key when set (http source).
	APIKey string
	// Timeout bounds every HTTP request (http source).
	Timeout time.Duration

	// DSN is the SQLite database path (sqlite source).
	DSN string
}

// New creates the Source selected by cfg.Kind.
func New(cfg Config, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Kind {
	case KindFile:
		return NewFileSource(cfg.Dir, cfg.Format, logger)

	case KindHTTP:
		return NewHTTPSource(HTTPConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		}, logger)

	case KindSQLite:
		return NewSQLiteSource(cfg.DSN)

	default:
		return nil, NewSourceError("New", "", fmt.Sprintf("unsupported source kind %q", cfg.Kind), ErrUnknownKind)
	}
}
