package krypto_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/donatewisely/donatewisely/internal/krypto"
)

// redacted is implemented by every type that wraps credentials.
type redacted interface {
	fmt.Formatter
	slog.LogValuer
	MarshalText() ([]byte, error)
	SecretValue() []byte
}

func Test_Redaction(t *testing.T) {
	values := map[string]redacted{
		"key":    must(krypto.ParseKey(csrfKeyHex)),
		"secret": krypto.NewSecret("recaptcha-secret-value"),
	}

	for name, v := range values {
		raw := string(v.SecretValue())

		t.Run("ok, "+name+" formatted", func(t *testing.T) {
			for _, verb := range []string{"%s", "%v", "%+v", "%#v", "%d", "%x", "%q"} {
				if got := fmt.Sprintf(verb, v); got != krypto.SecretMarker {
					t.Errorf("%s: got %q", verb, got)
				}
			}
		})

		t.Run("ok, "+name+" as text", func(t *testing.T) {
			txt := must(v.MarshalText())
			if string(txt) != krypto.SecretMarker {
				t.Errorf("got %q", txt)
			}
		})

		t.Run("ok, "+name+" logged", func(t *testing.T) {
			var buf bytes.Buffer
			slog.New(slog.NewTextHandler(&buf, nil)).Info("config loaded", "value", v)

			out := buf.String()
			if strings.Contains(out, raw) {
				t.Errorf("raw value leaked into log:\n%s", out)
			}

			if !strings.Contains(out, krypto.SecretMarker) {
				t.Errorf("expected %s in log:\n%s", krypto.SecretMarker, out)
			}
		})
	}
}

func Test_Secret_IsEmpty(t *testing.T) {
	tests := map[string]struct {
		raw  string
		want bool
	}{
		"ok, unset":  {raw: "", want: true},
		"ok, one ch": {raw: "x", want: false},
		"ok, spaces": {raw: "  ", want: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := krypto.NewSecret(tc.raw).IsEmpty(); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
