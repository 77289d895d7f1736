// Package retention provides the retention service: it fetches raw records
// from a source, runs the pure retention engine and reports the outcome.
// This is part of the Imperative Shell - it handles I/O and logging around
// the core retention algorithm.
package retention

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/artpar/retention/internal/core/domain"
	coreretention "github.com/artpar/retention/internal/core/retention"
	"github.com/artpar/retention/internal/core/validation"
	"github.com/artpar/retention/internal/shell/source"
)

// =============================================================================
// Error Classification
// =============================================================================

// ErrorKind classifies errors returned by the Service.
type ErrorKind string

const (
	KindNone            ErrorKind = ""
	KindInvalidArgument ErrorKind = "invalid_argument"
	KindNoData          ErrorKind = "no_data"
	KindFetchFailed     ErrorKind = "fetch_failed"
	KindInternal        ErrorKind = "internal"
)

// Kind reports which class of failure err belongs to.
func Kind(err error) ErrorKind {
	var srcErr *source.SourceError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, coreretention.ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, validation.ErrNoData):
		return KindNoData
	case errors.As(err, &srcErr),
		errors.Is(err, source.ErrFetchFailed),
		errors.Is(err, source.ErrInvalidData),
		errors.Is(err, source.ErrConnectionFailed):
		return KindFetchFailed
	default:
		return KindInternal
	}
}

// =============================================================================
// Retention Service
// =============================================================================

// Config holds service defaults.
type Config struct {
	// KeepCount is used when a caller does not ask for a specific count.
	KeepCount int

	// Aggregate picks the per-release deployment timestamp.
	Aggregate coreretention.Aggregate
}

// Service computes retention decisions over records read from a Source.
type Service struct {
	source source.Source
	config Config
	logger *slog.Logger
}

// NewService creates a new retention service.
func NewService(src source.Source, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Aggregate == "" {
		cfg.Aggregate = coreretention.AggregateEarliest
	}
	return &Service{
		source: src,
		config: cfg,
		logger: logger,
	}
}

// DefaultKeepCount returns the configured keep count.
func (s *Service) DefaultKeepCount() int {
	return s.config.KeepCount
}

// Ready reports whether the underlying source is reachable. Sources that
// cannot be pinged are always ready.
func (s *Service) Ready(ctx context.Context) error {
	if p, ok := s.source.(source.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// =============================================================================
// Report
// =============================================================================

// Summary counts the outcome of one run.
type Summary struct {
	Groups   int `json:"groups"`
	Kept     int `json:"kept"`
	Dropped  int `json:"dropped"`
	Warnings int `json:"warnings"`
}

// Report is the full outcome of one run.
type Report struct {
	RunID       string                   `json:"run_id"`
	KeepCount   int                      `json:"keep_count"`
	Aggregate   string                   `json:"aggregate"`
	Results     []domain.RetentionResult `json:"results"`
	Summary     Summary                  `json:"summary"`
	Diagnostics []validation.Diagnostic  `json:"diagnostics"`
}

// Compute returns the releases to retain, sorted by project and environment.
func (s *Service) Compute(ctx context.Context, keepCount int) ([]domain.RetentionResult, error) {
	report, err := s.Report(ctx, keepCount)
	if err != nil {
		return nil, err
	}
	return report.Results, nil
}

// Report fetches all records, runs the retention engine and returns the
// results together with diagnostics and summary counts.
func (s *Service) Report(ctx context.Context, keepCount int) (*Report, error) {
	runID := uuid.New().String()
	logger := s.logger.With("run_id", runID)

	if err := coreretention.ValidateKeepCount(keepCount); err != nil {
		return nil, err
	}

	logger.Debug("fetching records", "keep_count", keepCount)
	in, err := source.FetchAll(ctx, s.source)
	if err != nil {
		logger.Error("failed to fetch records", "error", err)
		return nil, err
	}
	logger.Debug("fetched records",
		"projects", len(in.Projects),
		"environments", len(in.Environments),
		"releases", len(in.Releases),
		"deployments", len(in.Deployments),
	)

	decision, err := coreretention.ComputeRetention(in, keepCount, coreretention.Options{Aggregate: s.config.Aggregate})
	if err != nil {
		logger.Warn("retention not computed", "error", err)
		return nil, err
	}

	warnings := 0
	for _, d := range decision.Diagnostics {
		attrs := []any{"code", d.Code, "entity", d.Entity, "id", d.ID, "message", d.Message}
		if d.Level == validation.LevelWarn {
			warnings++
			logger.Warn("record diagnostic", attrs...)
		} else {
			logger.Debug("record diagnostic", attrs...)
		}
	}

	results := append([]domain.RetentionResult(nil), decision.Results...)
	domain.SortResults(results)

	summary := Summary{
		Groups:   len(decision.Groups),
		Kept:     decision.KeptCount(),
		Dropped:  decision.DroppedCount(),
		Warnings: warnings,
	}
	logger.Info("retention computed",
		"keep_count", keepCount,
		"aggregate", string(s.config.Aggregate),
		"groups", summary.Groups,
		"kept", summary.Kept,
		"dropped", summary.Dropped,
		"warnings", summary.Warnings,
	)

	diagnostics := decision.Diagnostics
	if diagnostics == nil {
		diagnostics = []validation.Diagnostic{}
	}
	if results == nil {
		results = []domain.RetentionResult{}
	}

	return &Report{
		RunID:       runID,
		KeepCount:   keepCount,
		Aggregate:   string(s.config.Aggregate),
		Results:     results,
		Summary:     summary,
		Diagnostics: diagnostics,
	}, nil
}
