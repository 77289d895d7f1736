package source

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/retention/internal/core/domain"
	"github.com/artpar/retention/internal/core/validation"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SQLiteSource
// =============================================================================

// SQLiteSource reads records from a SQLite database.
type SQLiteSource struct {
	db *sqlx.DB
}

// NewSQLiteSource opens the database and runs migrations.
func NewSQLiteSource(dsn string) (*SQLiteSource, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, NewSourceError("NewSQLiteSource", "", "failed to open database", ErrConnectionFailed)
	}

	// An in-memory database lives as long as its connection.
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewSourceError("NewSQLiteSource", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewSourceError("NewSQLiteSource", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteSource{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Ping checks the database connection.
func (s *SQLiteSource) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return NewSourceError("Ping", "", err.Error(), ErrConnectionFailed)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// =============================================================================
// Rows
// =============================================================================

type projectRow struct {
	ID   *string `db:"id"`
	Name *string `db:"name"`
}

type environmentRow struct {
	ID   *string `db:"id"`
	Name *string `db:"name"`
}

type releaseRow struct {
	ID        *string `db:"id"`
	ProjectID *string `db:"project_id"`
	Version   *string `db:"version"`
	CreatedAt *string `db:"created_at"`
}

type deploymentRow struct {
	ID            *string `db:"id"`
	ReleaseID     *string `db:"release_id"`
	EnvironmentID *string `db:"environment_id"`
	DeployedAt    *string `db:"deployed_at"`
}

// =============================================================================
// Read Operations
// =============================================================================

func (s *SQLiteSource) Projects(ctx context.Context) ([]domain.Project, error) {
	var rows []projectRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name FROM projects ORDER BY rowid`); err != nil {
		return nil, NewSourceError("Projects", "projects", err.Error(), ErrFetchFailed)
	}

	projects := make([]domain.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, domain.Project{ID: deref(row.ID), Name: deref(row.Name)})
	}
	return projects, nil
}

func (s *SQLiteSource) Environments(ctx context.Context) ([]domain.Environment, error) {
	var rows []environmentRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name FROM environments ORDER BY rowid`); err != nil {
		return nil, NewSourceError("Environments", "environments", err.Error(), ErrFetchFailed)
	}

	environments := make([]domain.Environment, 0, len(rows))
	for _, row := range rows {
		environments = append(environments, domain.Environment{ID: deref(row.ID), Name: deref(row.Name)})
	}
	return environments, nil
}

func (s *SQLiteSource) Releases(ctx context.Context) ([]domain.Release, error) {
	var rows []releaseRow
	query := `SELECT id, project_id, version, created_at FROM releases ORDER BY rowid`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, NewSourceError("Releases", "releases", err.Error(), ErrFetchFailed)
	}

	releases := make([]domain.Release, 0, len(rows))
	for _, row := range rows {
		createdAt, err := rowTime(row.CreatedAt)
		if err != nil {
			return nil, NewSourceError("Releases", "releases", fmt.Sprintf("release %s: %v", deref(row.ID), err), ErrInvalidData)
		}
		releases = append(releases, domain.Release{
			ID:        deref(row.ID),
			ProjectID: deref(row.ProjectID),
			Version:   deref(row.Version),
			CreatedAt: createdAt,
		})
	}
	return releases, nil
}

func (s *SQLiteSource) Deployments(ctx context.Context) ([]domain.Deployment, error) {
	var rows []deploymentRow
	query := `SELECT id, release_id, environment_id, deployed_at FROM deployments ORDER BY rowid`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, NewSourceError("Deployments", "deployments", err.Error(), ErrFetchFailed)
	}

	deployments := make([]domain.Deployment, 0, len(rows))
	for _, row := range rows {
		deployedAt, err := rowTime(row.DeployedAt)
		if err != nil {
			return nil, NewSourceError("Deployments", "deployments", fmt.Sprintf("deployment %s: %v", deref(row.ID), err), ErrInvalidData)
		}
		deployments = append(deployments, domain.Deployment{
			ID:            deref(row.ID),
			ReleaseID:     deref(row.ReleaseID),
			EnvironmentID: deref(row.EnvironmentID),
			DeployedAt:    deployedAt,
		})
	}
	return deployments, nil
}

// =============================================================================
// Import
// =============================================================================

// Import appends records to the database in a single transaction.
// Records are stored as given; duplicates and dangling references are kept
// so the validator sees exactly what was imported.
func (s *SQLiteSource) Import(ctx context.Context, records validation.Input) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewSourceError("Import", "", "failed to begin transaction", ErrFetchFailed)
	}

	if err := importRecords(ctx, tx, records); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewSourceError("Import", "", fmt.Sprintf("rollback failed after error: %v", err), ErrFetchFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewSourceError("Import", "", "failed to commit transaction", ErrFetchFailed)
	}
	return nil
}

// Reset deletes every record.
func (s *SQLiteSource) Reset(ctx context.Context) error {
	for _, table := range []string{"deployments", "releases", "environments", "projects"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return NewSourceError("Reset", table, err.Error(), ErrFetchFailed)
		}
	}
	return nil
}

func importRecords(ctx context.Context, exec executor, records validation.Input) error {
	for _, p := range records.Projects {
		if _, err := exec.NamedExecContext(ctx, `INSERT INTO projects (id, name) VALUES (:id, :name)`,
			projectRow{ID: nullable(p.ID), Name: nullable(p.Name)}); err != nil {
			return NewSourceError("Import", "projects", err.Error(), ErrFetchFailed)
		}
	}

	for _, e := range records.Environments {
		if _, err := exec.NamedExecContext(ctx, `INSERT INTO environments (id, name) VALUES (:id, :name)`,
			environmentRow{ID: nullable(e.ID), Name: nullable(e.Name)}); err != nil {
			return NewSourceError("Import", "environments", err.Error(), ErrFetchFailed)
		}
	}

	for _, r := range records.Releases {
		row := releaseRow{
			ID:        nullable(r.ID),
			ProjectID: nullable(r.ProjectID),
			Version:   nullable(r.Version),
			CreatedAt: timeText(r.CreatedAt),
		}
		if _, err := exec.NamedExecContext(ctx, `
			INSERT INTO releases (id, project_id, version, created_at)
			VALUES (:id, :project_id, :version, :created_at)`, row); err != nil {
			return NewSourceError("Import", "releases", err.Error(), ErrFetchFailed)
		}
	}

	for _, d := range records.Deployments {
		row := deploymentRow{
			ID:            nullable(d.ID),
			ReleaseID:     nullable(d.ReleaseID),
			EnvironmentID: nullable(d.EnvironmentID),
			DeployedAt:    timeText(d.DeployedAt),
		}
		if _, err := exec.NamedExecContext(ctx, `
			INSERT INTO deployments (id, release_id, environment_id, deployed_at)
			VALUES (:id, :release_id, :environment_id, :deployed_at)`, row); err != nil {
			return NewSourceError("Import", "deployments", err.Error(), ErrFetchFailed)
		}
	}

	return nil
}

// =============================================================================
// Row Conversion Helpers
// =============================================================================

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func timeText(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

func rowTime(s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, nil
	}
	return ParseTimestamp(*s)
}
