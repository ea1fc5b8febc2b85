// Package testutil opens throwaway stores for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Triaksa-Space/youthspark-cms/config"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// NewSQLite returns a migrated sqlite database in t's temp dir, closed on cleanup.
// It holds a single connection, so a running transaction blocks other callers.
func NewSQLite(t testing.TB) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "cms.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := config.OpenDB(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		URL:    dsn,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, config.Migrate(context.Background(), db, "sqlite", "up"))
	return db
}
