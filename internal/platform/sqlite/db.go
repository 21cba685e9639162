package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// driverName is the go-sqlite3 driver with the item store's SQL functions
// registered on every connection.
const driverName = "sqlite3_scry"

// lowerFunc is a Unicode-aware replacement for LOWER, which folds ASCII only.
const lowerFunc = "unicode_lower"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(lowerFunc, strings.ToLower, true)
		},
	})
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations returns the embedded goose migrations of the sqlite schema.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		// ALLOW-PANIC: the embedded directory is fixed at compile time
		panic(err)
	}
	return sub
}

// DSN builds the connection string for a database file.
//
// Every transaction starts with BEGIN IMMEDIATE, so the write lock is taken
// before the first read. Together with a single open connection this
// serializes read-modify-write sequences such as rating an item.
func DSN(path string) string {
	path = strings.TrimPrefix(path, "file:")
	return fmt.Sprintf(
		"file:%s?_txlock=immediate&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL",
		path,
	)
}

// Open opens the database file at path and verifies the connection.
// It does not apply migrations; see NewMigrationProvider.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open(driverName, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	logger.Info("sqlite database opened", slog.String("path", path))
	return db, nil
}

// NewMigrationProvider returns a goose provider that applies the embedded
// migrations to db.
func NewMigrationProvider(db *sql.DB, opts ...goose.ProviderOption) (*goose.Provider, error) {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, Migrations(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite migration provider: %w", err)
	}
	return provider, nil
}
