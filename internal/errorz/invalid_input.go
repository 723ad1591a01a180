package errorz

import (
	"errors"
	"sort"
	"strings"
)

// InvalidInput signals that a provided input is invalid due to the wrapped errors.
type InvalidInput []error

func (e InvalidInput) Error() string {
	var b strings.Builder
	b.WriteString("invalid input:\n")
	for _, err := range e {
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func (e InvalidInput) Unwrap() []error {
	return e
}

// First returns the first keyed error in key order. Decoders tend to report
// errors in map order, sorting makes responses stable.
func (e InvalidInput) First() (Keyed, bool) {
	var keyed []Keyed
	for _, err := range e {
		var k Keyed
		if errors.As(err, &k) {
			keyed = append(keyed, k)
		}
	}

	if len(keyed) == 0 {
		return Keyed{}, false
	}

	sort.Slice(keyed, func(i, j int) bool {
		return keyed[i].Key < keyed[j].Key
	})

	return keyed[0], true
}
