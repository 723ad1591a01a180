// Package migrate applies the SQL migrations to a SQLite database.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// Migration is a migration that was ran.
type Migration struct {
	Version  int64
	Filename string
}

// RunFS runs all pending migrations from the root of fileSys, in order of
// their version prefix. It returns the migrations that were ran, if no
// migrations were ran it returns an empty slice.
func RunFS(ctx context.Context, db *sql.DB, fileSys fs.FS) ([]Migration, error) {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fileSys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(results))
	for _, r := range results {
		migrations = append(migrations, Migration{
			Version:  r.Source.Version,
			Filename: r.Source.Path,
		})
	}

	return migrations, nil
}

// Version returns the version of the latest migration that was applied.
func Version(ctx context.Context, db *sql.DB, fileSys fs.FS) (int64, error) {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fileSys)
	if err != nil {
		return 0, fmt.Errorf("failed to create migration provider: %w", err)
	}

	return provider.GetDBVersion(ctx)
}
