package migrate_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/donatewisely/donatewisely/internal/db/migrate"
	"github.com/donatewisely/donatewisely/internal/db/testdb"
	"github.com/donatewisely/donatewisely/migrations"
)

func Test_RunFS(t *testing.T) {
	t.Run("ok, progression of migrations", func(t *testing.T) {
		db := testdb.RunUnmigratedWhile(t, true)

		got, err := migrate.RunFS(context.Background(), db, os.DirFS("./testdata/progression"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []migrate.Migration{
			{Version: 1, Filename: "00001_create_test_table.sql"},
			{Version: 2, Filename: "00002_insert_row.sql"},
		}
		assertMigrations(t, got, want)
		assertNrOfRowsInTestTable(t, db, 1)

		version, err := migrate.Version(context.Background(), db, os.DirFS("./testdata/progression"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if version != 2 {
			t.Errorf("expected version 2, got %d", version)
		}
	})

	t.Run("ok, second run is a no-op", func(t *testing.T) {
		db := testdb.RunUnmigratedWhile(t, true)

		_, err := migrate.RunFS(context.Background(), db, os.DirFS("./testdata/progression"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := migrate.RunFS(context.Background(), db, os.DirFS("./testdata/progression"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		assertMigrations(t, got, []migrate.Migration{})
		assertNrOfRowsInTestTable(t, db, 1)
	})

	t.Run("ok, app migrations", func(t *testing.T) {
		db := testdb.RunUnmigratedWhile(t, true)

		got, err := migrate.RunFS(context.Background(), db, migrations.FS)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(got) == 0 {
			t.Fatalf("expected migrations to run")
		}
	})

	t.Run("fail, invalid sql", func(t *testing.T) {
		db := testdb.RunUnmigratedWhile(t, true)

		_, err := migrate.RunFS(context.Background(), db, os.DirFS("./testdata/invalid"))
		if err == nil {
			t.Fatalf("expected error")
		}
	})
}

func assertMigrations(t *testing.T, got, want []migrate.Migration) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("got %d migrations, want %d", len(got), len(want))
	}

	for i := range want {
		if got[i].Version != want[i].Version || filepath.Base(got[i].Filename) != want[i].Filename {
			t.Errorf("migration %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func assertNrOfRowsInTestTable(t *testing.T, db *sql.DB, want int) {
	t.Helper()

	var got int
	err := db.QueryRow("SELECT COUNT(*) FROM test").Scan(&got)
	if err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}

	if got != want {
		t.Errorf("got %d rows, want %d", got, want)
	}
}
