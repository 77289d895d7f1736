package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	coreretention "github.com/artpar/retention/internal/core/retention"
	"github.com/artpar/retention/internal/shell/source"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Retention RetentionConfig `mapstructure:"retention"`
	Source    SourceConfig    `mapstructure:"source"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

// RetentionConfig holds the retention policy defaults.
type RetentionConfig struct {
	// KeepCount is the number of releases kept per project and environment
	// when a caller does not ask for a specific count.
	KeepCount int `mapstructure:"keep_count"`

	// Aggregate picks the deployment timestamp a release is ranked by:
	// "earliest" (first deployment to the environment) or "latest".
	Aggregate string `mapstructure:"aggregate"`
}

// SourceConfig selects where records are read from.
type SourceConfig struct {
	Kind    string        `mapstructure:"kind"` // file, http or sqlite
	Dir     string        `mapstructure:"dir"`
	Format  string        `mapstructure:"format"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
	DSN     string        `mapstructure:"dsn"`
}

// ToSource converts to the source package configuration.
func (c SourceConfig) ToSource() source.Config {
	return source.Config{
		Kind:    source.Kind(c.Kind),
		Dir:     c.Dir,
		Format:  c.Format,
		BaseURL: c.BaseURL,
		APIKey:  c.APIKey,
		Timeout: c.Timeout,
		DSN:     c.DSN,
	}
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("retention.keep_count", 3)
	v.SetDefault("retention.aggregate", string(coreretention.AggregateEarliest))
	v.SetDefault("source.kind", string(source.KindFile))
	v.SetDefault("source.dir", "./data")
	v.SetDefault("source.format", "")
	v.SetDefault("source.base_url", "")
	v.SetDefault("source.api_key", "")
	v.SetDefault("source.timeout", "10s")
	v.SetDefault("source.dsn", "./data/retention.db")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("RETENTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	var errs []error

	if c.Retention.KeepCount <= 0 {
		errs = append(errs, fmt.Errorf("retention.keep_count must be positive, got %d", c.Retention.KeepCount))
	}
	if _, err := coreretention.ParseAggregate(c.Retention.Aggregate); err != nil {
		errs = append(errs, fmt.Errorf("retention.aggregate: %w", err))
	}

	kind := source.Kind(c.Source.Kind)
	switch {
	case !kind.IsValid():
		errs = append(errs, fmt.Errorf("source.kind %q is not one of file, http, sqlite", c.Source.Kind))
	case kind == source.KindHTTP && strings.TrimSpace(c.Source.BaseURL) == "":
		errs = append(errs, errors.New("source.base_url is required for the http source"))
	case kind == source.KindSQLite && c.Source.DSN == "":
		errs = append(errs, errors.New("source.dsn is required for the sqlite source"))
	}
	switch c.Source.Format {
	case "", source.FormatJSON, source.FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("source.format %q is not one of json, yaml", c.Source.Format))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}

	return errors.Join(errs...)
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
// Logs go to w so that stdout stays free for command output.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}
