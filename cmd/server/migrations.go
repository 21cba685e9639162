package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/phrazzld/scry-srs/internal/config"
	"github.com/phrazzld/scry-srs/internal/platform/postgres"
	"github.com/phrazzld/scry-srs/internal/platform/sqlite"
	"github.com/pressly/goose/v3"
)

// Migration commands accepted by --migrate.
const (
	migrateUp      = "up"
	migrateDown    = "down"
	migrateStatus  = "status"
	migrateVersion = "version"
	migrateCreate  = "create"
)

// migrationsDir is where --migrate=create writes new files, per driver.
var migrationsDir = map[string]string{
	config.DriverPostgres: filepath.Join("internal", "platform", "postgres", "migrations"),
	config.DriverSQLite:   filepath.Join("internal", "platform", "sqlite", "migrations"),
}

func newMigrationProvider(db *sql.DB, driver string, verbose bool) (*goose.Provider, error) {
	opts := []goose.ProviderOption{goose.WithVerbose(verbose)}
	switch driver {
	case config.DriverPostgres:
		return postgres.NewMigrationProvider(db, opts...)
	case config.DriverSQLite:
		return sqlite.NewMigrationProvider(db, opts...)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// applyMigrations brings the schema up to date at startup.
func applyMigrations(ctx context.Context, db *sql.DB, driver string, verbose bool, log *slog.Logger) error {
	provider, err := newMigrationProvider(db, driver, verbose)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		log.Info("applied migration",
			slog.Int64("version", r.Source.Version),
			slog.Duration("duration", r.Duration))
	}
	return nil
}

// runMigrations executes a single --migrate command.
func runMigrations(
	ctx context.Context,
	db *sql.DB,
	driver, command, name string,
	verbose bool,
	log *slog.Logger,
) error {
	log = log.With(slog.String("component", "migrations"), slog.String("command", command))

	if command == migrateCreate {
		dir, ok := migrationsDir[driver]
		if !ok {
			return fmt.Errorf("unsupported database driver %q", driver)
		}
		if err := goose.Create(nil, dir, name, "sql"); err != nil {
			return fmt.Errorf("failed to create migration: %w", err)
		}
		log.Info("created migration", slog.String("dir", dir), slog.String("name", name))
		return nil
	}

	provider, err := newMigrationProvider(db, driver, verbose)
	if err != nil {
		return err
	}

	switch command {
	case migrateUp:
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("migration up failed: %w", err)
		}
		log.Info("migrations applied", slog.Int("count", len(results)))
	case migrateDown:
		result, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("migration down failed: %w", err)
		}
		if result != nil {
			log.Info("migration rolled back", slog.Int64("version", result.Source.Version))
		}
	case migrateStatus:
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("migration status failed: %w", err)
		}
		for _, s := range statuses {
			log.Info("migration status",
				slog.Int64("version", s.Source.Version),
				slog.String("state", string(s.State)),
				slog.Time("applied_at", s.AppliedAt))
		}
	case migrateVersion:
		version, err := provider.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		log.Info("schema version", slog.Int64("version", version))
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	return nil
}
