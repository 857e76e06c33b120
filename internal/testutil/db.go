// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/blogging-tool/internal/config"
	"github.com/blogging-tool/internal/database"
	"github.com/rs/zerolog"
)

// NewSQLiteDB opens a migrated SQLite database file inside t.TempDir.
func NewSQLiteDB(t testing.TB) *database.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "blog.db"),
	}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// CountRows counts the rows of table matching where, e.g. sq.Eq{"article_id": 1}.
// A nil where counts the whole table.
func CountRows(t testing.TB, db *database.DB, table string, where any) int {
	t.Helper()

	query, args, err := db.Builder().Select("COUNT(*)").From(table).Where(where).ToSql()
	if err != nil {
		t.Fatalf("failed to build count query: %v", err)
	}
	var count int
	if err := db.GetContext(context.Background(), &count, query, args...); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return count
}
