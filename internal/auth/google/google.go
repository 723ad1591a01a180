// Package google verifies Google Sign-In ID tokens.
package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/donatewisely/donatewisely/internal/auth"
	"github.com/donatewisely/donatewisely/internal/email"
	"google.golang.org/api/idtoken"
)

var ErrUnverifiedEmail = errors.New("google account email is not verified")

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// Verifier checks ID tokens against Google's public keys.
type Verifier struct {
	clientID string
	validate validateFunc
}

// NewVerifier creates a verifier that only accepts tokens issued for clientID.
func NewVerifier(clientID string) *Verifier {
	return &Verifier{
		clientID: clientID,
		validate: idtoken.Validate,
	}
}

// Verify validates the token signature, expiry and audience and returns
// the profile from its claims.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (auth.FederatedProfile, error) {
	payload, err := v.validate(ctx, rawToken, v.clientID)
	if err != nil {
		return auth.FederatedProfile{}, err
	}

	return profileFromClaims(payload.Claims)
}

func profileFromClaims(claims map[string]any) (auth.FederatedProfile, error) {
	rawEmail, _ := claims["email"].(string)
	addr, err := email.ParseAddress(rawEmail)
	if err != nil {
		return auth.FederatedProfile{}, fmt.Errorf("invalid email claim: %w", err)
	}

	if verified, _ := claims["email_verified"].(bool); !verified {
		return auth.FederatedProfile{}, ErrUnverifiedEmail
	}

	first, _ := claims["given_name"].(string)
	last, _ := claims["family_name"].(string)

	return auth.FederatedProfile{
		Email:     addr,
		FirstName: first,
		LastName:  last,
	}, nil
}
