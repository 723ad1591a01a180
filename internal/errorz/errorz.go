package errorz

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConstraintViolated = errors.New("constraint violated")
)

// MapDBErr maps SQLite errors to errorz errors.
// If err is nil, MapDBErr returns nil.
func MapDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var sErr sqlite3.Error
	if errors.As(err, &sErr) && sErr.Code == sqlite3.ErrConstraint {
		return errors.Join(ErrConstraintViolated, err)
	}

	return err
}
