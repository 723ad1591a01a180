package auth

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/donatewisely/donatewisely/internal/krypto"
)

const (
	minPasswordBytes = 8
	// Generous enough for passphrases, but no MBs of data.
	maxPasswordBytes = 512
)

var ErrInvalidPassword = errors.New("invalid password")

// Password is a plaintext password.
//
// It should never be persisted, logged or exposed in any other way. The
// type implements the common formatting and marshalling interfaces to
// redact itself.
//
// The only operations on a Password are hashing it and matching it
// against an existing hash.
type Password struct {
	plain []byte
}

// ParsePassword creates a new Password from a plaintext string.
// It errors if the password is too short or too long.
func ParsePassword(pwd string) (Password, error) {
	if len(pwd) < minPasswordBytes || len(pwd) > maxPasswordBytes {
		return Password{}, ErrInvalidPassword
	}

	return Password{plain: []byte(pwd)}, nil
}

func (p *Password) UnmarshalText(text []byte) error {
	parsed, err := ParsePassword(string(text))
	if err != nil {
		return err
	}

	*p = parsed
	return nil
}

// Match checks if the plaintext password matches the given hash.
func (p Password) Match(h krypto.Argon2Hash) bool {
	return h.MatchBytes(p.plain)
}

// Hash hashes the plaintext password using argon2id.
func (p Password) Hash() (krypto.Argon2Hash, error) {
	return krypto.HashArgon2(p.plain)
}

func (p Password) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(krypto.SecretMarker))
}

func (p Password) MarshalText() ([]byte, error) {
	return []byte(krypto.SecretMarker), nil
}

func (p Password) LogValue() slog.Value {
	return slog.StringValue(krypto.SecretMarker)
}
