package krypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
)

const tokenLen = 32

var ErrInvalidToken = errors.New("invalid token")

// Token is a random token that is sent via email, for example to verify
// an email address or to reset a password.
//
// The plaintext token only ever appears in the email to the user. Stores
// persist the Digest.
type Token [tokenLen]byte

// GenerateToken creates a new random token.
func GenerateToken() (Token, error) {
	b, err := genRandomBytes(tokenLen)
	if err != nil {
		return Token{}, err
	}
	return Token(b), nil
}

// ParseToken parses a hex encoded token.
func ParseToken(raw string) (Token, error) {
	if len(raw) != tokenLen*2 {
		return Token{}, ErrInvalidToken
	}

	b, err := hex.DecodeString(raw)
	if err != nil {
		return Token{}, ErrInvalidToken
	}

	return Token(b), nil
}

// String returns the hex encoded token. Unlike passwords this is allowed,
// tokens need to be embedded in emails.
func (t Token) String() string {
	return hex.EncodeToString(t[:])
}

// Digest returns the hex encoded SHA-256 digest of the token. Tokens have
// 256 bits of entropy so a fast hash is enough, and it allows looking up
// the owner of a token by an exact match.
func (t Token) Digest() string {
	sum := sha256.Sum256(t[:])
	return hex.EncodeToString(sum[:])
}

func (t *Token) UnmarshalText(text []byte) error {
	tok, err := ParseToken(string(text))
	if err != nil {
		return err
	}

	*t = tok
	return nil
}

func (t Token) LogValue() slog.Value {
	return slog.StringValue(SecretMarker)
}
