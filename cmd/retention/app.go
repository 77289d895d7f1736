package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	coreretention "github.com/artpar/retention/internal/core/retention"
	"github.com/artpar/retention/internal/shell/retention"
	"github.com/artpar/retention/internal/shell/source"
)

// newService builds the configured source and the retention service on top
// of it. The caller closes the returned source.
func newService(cfg *Config, logger *slog.Logger) (*retention.Service, source.Source, error) {
	agg, err := coreretention.ParseAggregate(cfg.Retention.Aggregate)
	if err != nil {
		return nil, nil, err
	}

	src, err := source.New(cfg.Source.ToSource(), logger)
	if err != nil {
		return nil, nil, err
	}

	svc := retention.NewService(src, retention.Config{
		KeepCount: cfg.Retention.KeepCount,
		Aggregate: agg,
	}, logger)
	return svc, src, nil
}

// computeOnce runs one retention computation and prints the report.
func computeOnce(ctx context.Context, svc *retention.Service, keepCount int, format string, w io.Writer) error {
	report, err := svc.Report(ctx, keepCount)
	if err != nil {
		return err
	}
	return writeReport(w, report, format)
}

// importRecords copies the record files in dir into the SQLite database at
// dsn. Records are appended as read; nothing is validated or deduplicated.
// With reset, existing records are deleted first.
func importRecords(ctx context.Context, dir, format, dsn string, reset bool, logger *slog.Logger) error {
	files, err := source.NewFileSource(dir, format, logger)
	if err != nil {
		return err
	}
	defer files.Close()

	records, err := source.FetchAll(ctx, files)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	db, err := source.NewSQLiteSource(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if reset {
		if err := db.Reset(ctx); err != nil {
			return err
		}
		logger.Info("existing records deleted", "dsn", dsn)
	}

	if err := db.Import(ctx, records); err != nil {
		return err
	}

	logger.Info("records imported",
		"dir", dir,
		"dsn", dsn,
		"projects", len(records.Projects),
		"environments", len(records.Environments),
		"releases", len(records.Releases),
		"deployments", len(records.Deployments),
	)
	return nil
}
