// Package testdb provides in-memory SQLite databases for tests.
package testdb

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/donatewisely/donatewisely/internal/db"
	"github.com/donatewisely/donatewisely/internal/db/migrate"
	"github.com/donatewisely/donatewisely/migrations"
)

// RunWhile returns an in-memory database with the app schema applied.
// It's closed when t finishes.
func RunWhile(t *testing.T, write bool) *sql.DB {
	t.Helper()

	sqlDB := RunUnmigratedWhile(t, write)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := migrate.RunFS(ctx, sqlDB, migrations.FS); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	return sqlDB
}

// RunUnmigratedWhile is RunWhile without the schema.
func RunUnmigratedWhile(t *testing.T, write bool) *sql.DB {
	t.Helper()

	sqlDB, err := db.OpenSQLite(":memory:", write)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})

	return sqlDB
}
