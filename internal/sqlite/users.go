package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/donatewisely/donatewisely/internal/auth"
	"github.com/donatewisely/donatewisely/internal/db"
	"github.com/donatewisely/donatewisely/internal/errorz"
	"github.com/google/uuid"
)

// CreateUser creates a user in the database.
// It returns errorz.ErrConstraintViolated if the email is already in use.
func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	return insertUser(ctx, s.write.ExecContext, u)
}

// UpdateUser writes only the fields set in u.
// It returns errorz.ErrNotFound if no user is found.
func (s *Store) UpdateUser(ctx context.Context, u auth.UserUpdate) error {
	return updateUser(ctx, s.write.ExecContext, u)
}

// FindUsers queries for users based on the provided filter.
// It returns an empty slice if no users are found.
func (s *Store) FindUsers(ctx context.Context, filter *auth.UserFilter) ([]auth.User, error) {
	return selectUsers(ctx, s.read.QueryContext, filter)
}

// ResetPassword sets the new password hash and clears the reset token in a
// single statement, so a token can only be used once.
func (s *Store) ResetPassword(ctx context.Context, r auth.PasswordReset) error {
	var q db.Query
	q.Unsafe(`UPDATE users SET password_hash = `)
	q.Param(r.PasswordHash.String())
	q.Unsafe(`, reset_digest = '', reset_expires_at = NULL, updated_at = `)
	q.Param(r.Now.UTC())
	q.Unsafe(` WHERE reset_digest != '' AND reset_digest = `)
	q.Param(r.TokenDigest)
	q.Unsafe(` AND reset_expires_at > `)
	q.Param(r.Now.UTC())

	query, params := q.Get()

	result, err := s.write.ExecContext(ctx, query, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errorz.MapDBErr(err)
	}

	if rows == 0 {
		return fmt.Errorf("no user with valid reset token: %w", errorz.ErrNotFound)
	}

	return nil
}

func insertUser(ctx context.Context, ef execFunc, u *auth.User) error {
	if u.ID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	var q db.Query
	q.Unsafe(`INSERT INTO users (id, email, first_name, last_name, password_hash, role, provider, email_verified, verification_digest, reset_digest, reset_expires_at, about_me, created_at, updated_at) VALUES (`)
	q.Params(
		u.ID,
		u.Email,
		u.FirstName,
		u.LastName,
		u.PasswordHash.String(),
		u.Role,
		u.Provider,
		u.EmailVerified,
		u.VerificationDigest,
		u.ResetDigest,
		utcPtr(u.ResetExpiresAt),
		u.AboutMe,
		u.CreatedAt.UTC(),
		u.UpdatedAt.UTC(),
	)
	q.Unsafe(`)`)

	query, params := q.Get()

	_, err := ef(ctx, query, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

func updateUser(ctx context.Context, ef execFunc, u auth.UserUpdate) error {
	var q db.Query
	q.Unsafe(`UPDATE users SET updated_at = `)
	q.Param(u.UpdatedAt.UTC())

	if u.EmailVerified != nil {
		q.Unsafe(`, email_verified = `)
		q.Param(*u.EmailVerified)
	}

	if u.AboutMe != nil {
		q.Unsafe(`, about_me = `)
		q.Param(*u.AboutMe)
	}

	if u.Reset != nil {
		q.Unsafe(`, reset_digest = `)
		q.Param(u.Reset.Digest)
		q.Unsafe(`, reset_expires_at = `)
		q.Param(u.Reset.ExpiresAt.UTC())
	}

	q.Unsafe(` WHERE id = `)
	q.Param(u.ID)

	query, params := q.Get()

	result, err := ef(ctx, query, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errorz.MapDBErr(err)
	}

	if rows == 0 {
		return fmt.Errorf("user not found: %w", errorz.ErrNotFound)
	}

	return nil
}

func selectUsers(ctx context.Context, qf queryFunc, f *auth.UserFilter) ([]auth.User, error) {
	var q db.Query
	q.Unsafe(`SELECT id, email, first_name, last_name, password_hash, role, provider, email_verified, verification_digest, reset_digest, reset_expires_at, about_me, created_at, updated_at FROM users WHERE 1=1 `)

	if len(f.IDs) > 0 {
		q.Unsafe(`AND id IN (`)
		q.Params(anySlice(f.IDs)...)
		q.Unsafe(`) `)
	}

	if len(f.Emails) > 0 {
		q.Unsafe(`AND email IN (`)
		q.Params(anySlice(f.Emails)...)
		q.Unsafe(`) `)
	}

	if len(f.VerificationDigests) > 0 {
		q.Unsafe(`AND verification_digest != '' AND verification_digest IN (`)
		q.Params(anySlice(f.VerificationDigests)...)
		q.Unsafe(`) `)
	}

	if len(f.ResetDigests) > 0 {
		q.Unsafe(`AND reset_digest != '' AND reset_digest IN (`)
		q.Params(anySlice(f.ResetDigests)...)
		q.Unsafe(`) `)
	}

	q.Unsafe(`ORDER BY created_at ASC, id ASC`)

	query, params := q.Get()

	rows, err := qf(ctx, query, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]auth.User, 0)
	for rows.Next() {
		var u auth.User
		err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.FirstName,
			&u.LastName,
			&u.PasswordHash,
			&u.Role,
			&u.Provider,
			&u.EmailVerified,
			&u.VerificationDigest,
			&u.ResetDigest,
			&u.ResetExpiresAt,
			&u.AboutMe,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		out = append(out, u)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	utc := t.UTC()
	return &utc
}
