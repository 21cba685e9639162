package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/phrazzld/scry-srs/internal/config"
	"github.com/phrazzld/scry-srs/internal/platform/postgres"
	"github.com/phrazzld/scry-srs/internal/platform/sqlite"
	"github.com/phrazzld/scry-srs/internal/store"
)

// openDatabase connects to the configured backend.
func openDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	log.Info("opening database",
		slog.String("driver", cfg.Database.Driver),
		slog.String("url", maskDatabaseURL(cfg.Database.URL)))

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.Database.URL, postgres.PoolConfig{
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
		}, log)
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.Database.URL, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// newItemStore returns the ItemStore implementation for driver.
func newItemStore(driver string, db *sql.DB, log *slog.Logger) (store.ItemStore, error) {
	switch driver {
	case config.DriverPostgres:
		return postgres.NewPostgresItemStore(db, log), nil
	case config.DriverSQLite:
		return sqlite.NewSQLiteItemStore(db, log), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// maskDatabaseURL hides the password of a connection URL. Values that do
// not parse as URLs, such as sqlite file paths, are returned unchanged.
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
