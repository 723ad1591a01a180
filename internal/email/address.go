package email

import (
	"errors"
	"net/mail"
	"strings"
)

// maxAddressLen is the longest address SMTP will carry (RFC 5321).
const maxAddressLen = 254

var ErrInvalidEmail = errors.New("invalid email address")

// Address is a bare email address such as "dana@example.com".
type Address string

// ParseAddress trims raw and accepts it only when it is a bare address,
// without display name or comments. Whether the mailbox exists is not checked.
func ParseAddress(raw string) (Address, error) {
	s := strings.TrimSpace(raw)
	if s == "" || len(s) > maxAddressLen {
		return "", ErrInvalidEmail
	}

	parsed, err := mail.ParseAddress(s)
	if err != nil || parsed.Name != "" || parsed.Address != s {
		return "", ErrInvalidEmail
	}

	return Address(parsed.Address), nil
}

// UnmarshalText lets form decoding and env parsing produce an Address.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}
