package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/donatewisely/donatewisely/internal/email"
	"github.com/donatewisely/donatewisely/internal/krypto"
	"github.com/google/uuid"
)

var (
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidProvider = errors.New("invalid provider")
)

// Role determines what a user is allowed to do.
type Role string

const (
	RoleDonor   Role = "donor"
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

// ParseRole parses a role, unknown roles are rejected.
func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleDonor, RolePartner, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}

	*r = parsed
	return nil
}

// RequiresAgency reports whether users with this role need to be linked
// to an agency before they can use the site.
func (r Role) RequiresAgency() bool {
	switch r {
	case RolePartner:
		return true
	case RoleDonor, RoleAdmin:
		return false
	default:
		return false
	}
}

// selfAssignable reports whether users can pick this role when signing up.
func (r Role) selfAssignable() bool {
	switch r {
	case RoleDonor, RolePartner:
		return true
	case RoleAdmin:
		return false
	default:
		return false
	}
}

// Provider is how a user authenticates.
type Provider string

const (
	ProviderLocal    Provider = "local"
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

func ParseProvider(raw string) (Provider, error) {
	switch p := Provider(raw); p {
	case ProviderLocal, ProviderGoogle, ProviderFacebook:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidProvider, raw)
	}
}

// User contains the data for a user.
type User struct {
	ID            uuid.UUID
	Email         email.Address
	FirstName     string
	LastName      string
	PasswordHash  krypto.Argon2Hash
	Role          Role
	Provider      Provider
	EmailVerified bool
	// VerificationDigest is the digest of the token sent to verify the email address.
	VerificationDigest string
	// ResetDigest is the digest of the pending password reset token, empty if none.
	ResetDigest    string
	ResetExpiresAt *time.Time
	AboutMe        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
