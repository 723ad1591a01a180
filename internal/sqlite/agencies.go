package sqlite

import (
	"context"
	"fmt"

	"github.com/donatewisely/donatewisely/internal/agency"
	"github.com/donatewisely/donatewisely/internal/db"
	"github.com/donatewisely/donatewisely/internal/errorz"
	"github.com/google/uuid"
)

// CreateAgency creates an agency in the database.
// It returns errorz.ErrConstraintViolated if the account manager already
// manages an agency.
func (s *Store) CreateAgency(ctx context.Context, a *agency.Agency) error {
	if a.ID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	var q db.Query
	q.Unsafe(`INSERT INTO agencies (id, name, website, phone, bio, account_manager, created_at) VALUES (`)
	q.Params(a.ID, a.Name, a.Website, a.Phone, a.Bio, a.AccountManager, a.CreatedAt.UTC())
	q.Unsafe(`)`)

	query, params := q.Get()

	_, err := s.write.ExecContext(ctx, query, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

// FindAgencies queries for agencies based on the provided filter.
// It returns an empty slice if no agencies are found.
func (s *Store) FindAgencies(ctx context.Context, f *agency.Filter) ([]agency.Agency, error) {
	var q db.Query
	q.Unsafe(`SELECT id, name, website, phone, bio, account_manager, created_at FROM agencies WHERE 1=1 `)

	if len(f.IDs) > 0 {
		q.Unsafe(`AND id IN (`)
		q.Params(anySlice(f.IDs)...)
		q.Unsafe(`) `)
	}

	if len(f.AccountManagers) > 0 {
		q.Unsafe(`AND account_manager IN (`)
		q.Params(anySlice(f.AccountManagers)...)
		q.Unsafe(`) `)
	}

	q.Unsafe(`ORDER BY created_at ASC, id ASC`)

	query, params := q.Get()

	rows, err := s.read.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]agency.Agency, 0)
	for rows.Next() {
		var a agency.Agency
		err := rows.Scan(&a.ID, &a.Name, &a.Website, &a.Phone, &a.Bio, &a.AccountManager, &a.CreatedAt)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
}
