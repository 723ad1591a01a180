package wishcard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidPrice = errors.New("invalid price")

// Cents is a price in cents.
type Cents int64

// ParseCents parses a decimal price such as "12", "12.5" or "12.50".
func ParseCents(raw string) (Cents, error) {
	raw = strings.TrimSpace(raw)
	whole, frac, hasFrac := strings.Cut(raw, ".")
	if whole == "" || (hasFrac && (frac == "" || len(frac) > 2)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}

	w, err := strconv.ParseUint(whole, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}

	var f uint64
	if hasFrac {
		f, err = strconv.ParseUint(frac, 10, 8)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
		}
		if len(frac) == 1 {
			f *= 10
		}
	}

	return Cents(w*100 + f), nil
}

func (c *Cents) UnmarshalText(text []byte) error {
	parsed, err := ParseCents(string(text))
	if err != nil {
		return err
	}

	*c = parsed
	return nil
}

func (c Cents) String() string {
	return fmt.Sprintf("%d.%02d", c/100, c%100)
}
