package google

import (
	"context"
	"errors"
	"testing"

	"github.com/donatewisely/donatewisely/internal/auth"
	"google.golang.org/api/idtoken"
)

func Test_Verifier_Verify(t *testing.T) {
	okClaims := map[string]any{
		"email":          "alice@example.com",
		"email_verified": true,
		"given_name":     "Alice",
		"family_name":    "Liddell",
	}

	t.Run("ok, profile from claims", func(t *testing.T) {
		var gotAudience string
		v := &Verifier{
			clientID: "client-id",
			validate: func(_ context.Context, _, audience string) (*idtoken.Payload, error) {
				gotAudience = audience
				return &idtoken.Payload{Claims: okClaims}, nil
			},
		}

		got, err := v.Verify(context.Background(), "token")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := auth.FederatedProfile{Email: "alice@example.com", FirstName: "Alice", LastName: "Liddell"}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}

		if gotAudience != "client-id" {
			t.Errorf("got audience %q, want %q", gotAudience, "client-id")
		}
	})

	t.Run("fail, invalid token", func(t *testing.T) {
		errInvalid := errors.New("invalid")
		v := &Verifier{
			validate: func(context.Context, string, string) (*idtoken.Payload, error) {
				return nil, errInvalid
			},
		}

		_, err := v.Verify(context.Background(), "token")
		if !errors.Is(err, errInvalid) {
			t.Fatalf("expected %v, got %v", errInvalid, err)
		}
	})

	failClaims := map[string]map[string]any{
		"fail, missing email": {
			"email_verified": true,
		},
		"fail, unverified email": {
			"email":          "alice@example.com",
			"email_verified": false,
		},
	}

	for name, claims := range failClaims {
		t.Run(name, func(t *testing.T) {
			v := &Verifier{
				validate: func(context.Context, string, string) (*idtoken.Payload, error) {
					return &idtoken.Payload{Claims: claims}, nil
				},
			}

			_, err := v.Verify(context.Background(), "token")
			if err == nil {
				t.Fatalf("expected error, got <nil>")
			}
		})
	}
}
