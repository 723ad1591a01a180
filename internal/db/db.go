package db

import (
	"database/sql"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

// connParams returns the go-sqlite3 DSN parameters for a pool.
// Both pools run in WAL mode with foreign keys and a busy timeout.
// The write pool takes its lock at the start of every transaction,
// see https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995
func connParams(write bool) url.Values {
	p := url.Values{}
	p.Set("_foreign_keys", "on")
	p.Set("_journal_mode", "wal")
	p.Set("_busy_timeout", "5000")

	if write {
		p.Set("_txlock", "immediate")
	} else {
		p.Set("mode", "ro")
	}

	return p
}

// OpenSQLite opens the wish card database. The app keeps two pools on the
// same file: a single-connection pool for writes and a read-only pool
// for everything else.
func OpenSQLite(dbFile string, write bool) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbFile+"?"+connParams(write).Encode())
	if err != nil {
		return nil, err
	}

	if !write {
		return db, nil
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	return db, nil
}
