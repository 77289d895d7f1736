package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Parse command line flags
	fs := flag.NewFlagSet("retention", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file")
	keep := fs.Int("keep", 0, "Releases to keep per project and environment (default from config)")
	format := fs.String("format", FormatJSON, "Output format: json or table")
	serve := fs.Bool("serve", false, "Serve the HTTP API instead of computing once")
	importDir := fs.String("import", "", "Import record files from this directory into the SQLite database and exit")
	reset := fs.Bool("reset", false, "With -import, delete existing records before importing")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return ExitConfigError
	}

	// Handle version flag
	if *showVersion {
		fmt.Fprintf(stdout, "retention %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	if *format != FormatJSON && *format != FormatTable {
		fmt.Fprintf(stderr, "configuration error: unknown output format %q\n", *format)
		return ExitConfigError
	}

	if *reset && *importDir == "" {
		fmt.Fprintln(stderr, "configuration error: -reset requires -import")
		return ExitConfigError
	}

	// Load configuration
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	// Setup logger
	logger := SetupLogger(cfg, stderr)
	ctx := context.Background()

	if *importDir != "" {
		if err := importRecords(ctx, *importDir, cfg.Source.Format, cfg.Source.DSN, *reset, logger); err != nil {
			logger.Error("import failed", "error", err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	}

	svc, src, err := newService(cfg, logger)
	if err != nil {
		logger.Error("failed to create source", "error", err, "kind", cfg.Source.Kind)
		return exitCodeFor(err)
	}

	if *serve {
		logger.Info("starting retention server",
			"version", Version,
			"config", *configPath,
			"source", cfg.Source.Kind,
		)
		if err := NewServer(cfg, svc, src, logger).Start(ctx); err != nil {
			logger.Error("server error", "error", err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	}
	defer src.Close()

	keepCount := cfg.Retention.KeepCount
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "keep" {
			keepCount = *keep
		}
	})

	if err := computeOnce(ctx, svc, keepCount, *format, stdout); err != nil {
		logger.Error("retention failed", "error", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}
