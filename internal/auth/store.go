package auth

import (
	"context"
	"time"

	"github.com/donatewisely/donatewisely/internal/email"
	"github.com/donatewisely/donatewisely/internal/krypto"
	"github.com/google/uuid"
)

// UserFilter is used filter users.
// Returned users must match all the provided fields.
// If a field is empty, it's ignored.
type UserFilter struct {
	IDs                 []uuid.UUID
	Emails              []email.Address
	VerificationDigests []string
	ResetDigests        []string
}

// PasswordReset replaces the password of the user holding an unexpired
// reset token.
type PasswordReset struct {
	TokenDigest  string
	PasswordHash krypto.Argon2Hash
	Now          time.Time
}

// UserUpdate changes the fields of a user that are set, and nothing else.
// The password hash is only written by ResetPassword, so an update that
// races with a reset can't bring back the old password or token.
type UserUpdate struct {
	ID            uuid.UUID
	EmailVerified *bool
	AboutMe       *string
	Reset         *ResetToken
	UpdatedAt     time.Time
}

// ResetToken is a pending password reset.
type ResetToken struct {
	Digest    string
	ExpiresAt time.Time
}

// Store provides access to users. Implementations enforce unique email
// addresses and report violations as errorz.ErrConstraintViolated.
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	// UpdateUser writes the set fields of u.
	// It returns errorz.ErrNotFound if the user does not exist.
	UpdateUser(ctx context.Context, u UserUpdate) error
	FindUsers(ctx context.Context, filter *UserFilter) ([]User, error)
	// ResetPassword atomically sets the new password and clears the reset
	// token, but only when the digest matches and the token expires after
	// Now. Otherwise it returns errorz.ErrNotFound.
	ResetPassword(ctx context.Context, r PasswordReset) error
}
