package krypto

import (
	"fmt"
	"log/slog"
)

// Secret is sensitive data that needs to be passed around but never
// exposed: API keys, client secrets and other credentials.
type Secret struct {
	value []byte
}

func NewSecret(raw string) Secret {
	return Secret{value: []byte(raw)}
}

// IsEmpty reports whether no secret was provided.
func (s Secret) IsEmpty() bool {
	return len(s.value) == 0
}

func (s Secret) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(SecretMarker))
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(SecretMarker), nil
}

func (s Secret) LogValue() slog.Value {
	return slog.StringValue(SecretMarker)
}

// SecretValue returns the raw secret, for handing it to third party libraries.
func (s Secret) SecretValue() []byte {
	return s.value
}
