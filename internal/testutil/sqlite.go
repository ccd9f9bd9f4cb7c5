// Package testutil provides fixtures for tests that need a migrated database.
package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/todokeeper/internal/server/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// NewSQLiteDB returns a private in-memory SQLite database with all migrations
// applied. It is closed when the test ends.
func NewSQLiteDB(t testing.TB) *sql.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(context.Background(), db, "sqlite"))
	return db
}
