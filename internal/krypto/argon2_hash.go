package krypto

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argon2Variant = "argon2id"

	// Parameters follow the OWASP recommendation for argon2id:
	// https://cheatsheetseries.owasp.org/cheatsheets/Password_Storage_Cheat_Sheet.html#argon2id
	argon2MemoryKiB   = 47104
	argon2Iterations  = 1
	argon2Parallelism = 1

	argon2SaltLen = 16
	argon2KeyLen  = 32
)

var ErrInvalidInput = errors.New("invalid input")

// Argon2Hash is an argon2id hash together with the parameters used to create it.
type Argon2Hash struct {
	Variant     string
	Version     int
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	Salt        []byte
	Hash        []byte
}

// HashArgon2 hashes data with argon2id and a random salt.
func HashArgon2(data []byte) (Argon2Hash, error) {
	if len(data) == 0 {
		return Argon2Hash{}, fmt.Errorf("%w: nothing to hash", ErrInvalidInput)
	}

	salt, err := genRandomBytes(argon2SaltLen)
	if err != nil {
		return Argon2Hash{}, err
	}

	return Argon2Hash{
		Variant:     argon2Variant,
		Version:     argon2.Version,
		MemoryKiB:   argon2MemoryKiB,
		Iterations:  argon2Iterations,
		Parallelism: argon2Parallelism,
		Salt:        salt,
		Hash:        argon2.IDKey(data, salt, argon2Iterations, argon2MemoryKiB, argon2Parallelism, argon2KeyLen),
	}, nil
}

// ParseArgon2Hash parses a hash in the PHC string format:
// $argon2id$v=19$m=47104,t=1,p=1$<salt>$<hash>
func ParseArgon2Hash(s string) (Argon2Hash, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" {
		return Argon2Hash{}, fmt.Errorf("%w: expected 6 parts in argon2 hash", ErrInvalidInput)
	}

	if parts[1] != argon2Variant {
		return Argon2Hash{}, fmt.Errorf("%w: unsupported variant %q", ErrInvalidInput, parts[1])
	}

	h := Argon2Hash{Variant: parts[1]}

	_, err := fmt.Sscanf(parts[2], "v=%d", &h.Version)
	if err != nil {
		return Argon2Hash{}, fmt.Errorf("%w: invalid version: %w", ErrInvalidInput, err)
	}

	if h.Version != argon2.Version {
		return Argon2Hash{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidInput, h.Version)
	}

	err = parseArgon2Params(parts[3], &h)
	if err != nil {
		return Argon2Hash{}, err
	}

	h.Salt, err = base64.RawStdEncoding.Strict().DecodeString(parts[4])
	if err != nil {
		return Argon2Hash{}, fmt.Errorf("%w: invalid salt: %w", ErrInvalidInput, err)
	}

	h.Hash, err = base64.RawStdEncoding.Strict().DecodeString(parts[5])
	if err != nil {
		return Argon2Hash{}, fmt.Errorf("%w: invalid hash: %w", ErrInvalidInput, err)
	}

	return h, nil
}

func parseArgon2Params(s string, h *Argon2Hash) error {
	params := strings.Split(s, ",")
	if len(params) != 3 {
		return fmt.Errorf("%w: expected 3 parameters", ErrInvalidInput)
	}

	values := make([]uint64, 0, 3)
	for i, prefix := range []string{"m=", "t=", "p="} {
		raw, ok := strings.CutPrefix(params[i], prefix)
		if !ok {
			return fmt.Errorf("%w: expected parameter %s", ErrInvalidInput, prefix)
		}

		bitSize := 32
		if prefix == "p=" {
			bitSize = 8
		}

		v, err := strconv.ParseUint(raw, 10, bitSize)
		if err != nil {
			return fmt.Errorf("%w: invalid parameter %s: %w", ErrInvalidInput, prefix, err)
		}

		values = append(values, v)
	}

	h.MemoryKiB = uint32(values[0])
	h.Iterations = uint32(values[1])
	h.Parallelism = uint8(values[2])

	return nil
}

// MatchBytes reports whether data hashes to h, in constant time.
func (h Argon2Hash) MatchBytes(data []byte) bool {
	if len(h.Hash) == 0 {
		return false
	}

	other := argon2.IDKey(data, h.Salt, h.Iterations, h.MemoryKiB, h.Parallelism, uint32(len(h.Hash)))
	return subtle.ConstantTimeCompare(h.Hash, other) == 1
}

func (h Argon2Hash) String() string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		h.Variant,
		h.Version,
		h.MemoryKiB,
		h.Iterations,
		h.Parallelism,
		base64.RawStdEncoding.EncodeToString(h.Salt),
		base64.RawStdEncoding.EncodeToString(h.Hash),
	)
}

func (h Argon2Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Argon2Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseArgon2Hash(string(text))
	if err != nil {
		return err
	}

	*h = parsed
	return nil
}

// Scan implements sql.Scanner.
func (h *Argon2Hash) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return h.UnmarshalText([]byte(v))
	case []byte:
		return h.UnmarshalText(v)
	default:
		return fmt.Errorf("can't scan %T into argon2 hash", src)
	}
}
