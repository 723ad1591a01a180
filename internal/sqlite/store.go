// Package sqlite implements the stores of the different services on top
// of a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
)

// Store is responsible for interacting with a database. Writes go to a
// single connection, reads can use a pool of read-only connections.
type Store struct {
	write *sql.DB
	read  *sql.DB
}

// New creates a new Store. read may be the same as write.
func New(write, read *sql.DB) *Store {
	return &Store{
		write: write,
		read:  read,
	}
}

type execFunc func(ctx context.Context, query string, params ...any) (sql.Result, error)
type queryFunc func(ctx context.Context, query string, params ...any) (*sql.Rows, error)

func anySlice[T any](s []T) []any {
	out := make([]any, 0, len(s))
	for _, v := range s {
		out = append(out, v)
	}
	return out
}
