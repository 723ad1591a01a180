package wishcard_test

import (
	"errors"
	"testing"

	"github.com/donatewisely/donatewisely/internal/wishcard"
)

func Test_ParseCents(t *testing.T) {
	okTests := map[string]struct {
		in   string
		want wishcard.Cents
	}{
		"ok, whole":          {in: "12", want: 1200},
		"ok, one decimal":    {in: "12.5", want: 1250},
		"ok, two decimals":   {in: "12.05", want: 1205},
		"ok, zero":           {in: "0", want: 0},
		"ok, surrounding ws": {in: " 3.99 ", want: 399},
	}

	for name, tc := range okTests {
		t.Run(name, func(t *testing.T) {
			got, err := wishcard.ParseCents(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}

	failTests := map[string]string{
		"fail, empty":           "",
		"fail, negative":        "-1",
		"fail, three decimals":  "1.999",
		"fail, trailing dot":    "1.",
		"fail, leading dot":     ".5",
		"fail, letters":         "abc",
		"fail, comma separator": "1,50",
	}

	for name, in := range failTests {
		t.Run(name, func(t *testing.T) {
			_, err := wishcard.ParseCents(in)
			if !errors.Is(err, wishcard.ErrInvalidPrice) {
				t.Errorf("expected %v, got %v", wishcard.ErrInvalidPrice, err)
			}
		})
	}
}

func Test_Cents_String(t *testing.T) {
	tests := map[wishcard.Cents]string{
		0:    "0.00",
		5:    "0.05",
		1250: "12.50",
	}

	for in, want := range tests {
		if got := in.String(); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}
