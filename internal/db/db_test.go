package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/donatewisely/donatewisely/internal/db"
)

func Test_OpenSQLite(t *testing.T) {
	file := filepath.Join(t.TempDir(), "wishes.db")
	ctx := context.Background()

	writeDB, err := db.OpenSQLite(file, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer writeDB.Close()

	_, err = writeDB.ExecContext(ctx, `CREATE TABLE cards (id INTEGER PRIMARY KEY, item TEXT NOT NULL)`)
	if err != nil {
		t.Fatalf("unexpected error creating table: %v", err)
	}

	_, err = writeDB.ExecContext(ctx, `INSERT INTO cards (item) VALUES ('Lego Castle')`)
	if err != nil {
		t.Fatalf("unexpected error inserting: %v", err)
	}

	readDB, err := db.OpenSQLite(file, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer readDB.Close()

	t.Run("ok, reads through read pool", func(t *testing.T) {
		var item string
		err := readDB.QueryRowContext(ctx, `SELECT item FROM cards`).Scan(&item)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if item != "Lego Castle" {
			t.Errorf("got %q", item)
		}
	})

	t.Run("ok, foreign keys enforced", func(t *testing.T) {
		var on int
		err := writeDB.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&on)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if on != 1 {
			t.Errorf("expected foreign keys to be on, got %d", on)
		}
	})

	t.Run("fail, read pool rejects writes", func(t *testing.T) {
		_, err := readDB.ExecContext(ctx, `INSERT INTO cards (item) VALUES ('Bike')`)
		if err == nil {
			t.Fatalf("expected error, got <nil>")
		}
	})
}
