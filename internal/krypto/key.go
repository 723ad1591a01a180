package krypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
)

const (
	keyLen = 32

	// SecretMarker replaces sensitive values in logs and formatted output.
	// Grep for it to check nothing slipped through.
	SecretMarker = "<!SECRET_REDACTED!>"
)

var ErrInvalidKey = errors.New("invalid key")

// Key is a 32 byte key, used for things like CSRF protection.
type Key struct {
	value []byte
}

// ParseKey expects a hex encoded key of 32 bytes (64 characters as hex).
func ParseKey(raw string) (Key, error) {
	if len(raw) != keyLen*2 {
		return Key{}, ErrInvalidKey
	}

	k, err := hex.DecodeString(raw)
	if err != nil {
		return Key{}, ErrInvalidKey
	}

	return Key{value: k}, nil
}

func (k Key) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(SecretMarker))
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(SecretMarker), nil
}

func (k Key) LogValue() slog.Value {
	return slog.StringValue(SecretMarker)
}

// SecretValue returns the raw key, for handing it to third party libraries.
func (k Key) SecretValue() []byte {
	return k.value
}
