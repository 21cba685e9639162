package testdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/phrazzld/scry-srs/internal/platform/sqlite"
	"github.com/stretchr/testify/require"
)

// NewSQLiteDB creates a migrated sqlite database in a temporary directory.
// It is closed and removed when the test ends.
func NewSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "scry.db"), nil)
	require.NoError(t, err, "failed to open sqlite database")
	t.Cleanup(func() { _ = db.Close() })

	provider, err := sqlite.NewMigrationProvider(db)
	require.NoError(t, err)
	_, err = provider.Up(ctx)
	require.NoError(t, err, "failed to apply sqlite migrations")

	return db
}
