// Package captcha verifies reCAPTCHA tokens submitted with forms.
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/donatewisely/donatewisely/internal/krypto"
)

// DefaultVerifyURL is the reCAPTCHA endpoint that verifies tokens.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

var ErrInvalidToken = errors.New("invalid captcha token")

// Verifier verifies captcha tokens.
type Verifier interface {
	// Verify returns ErrInvalidToken if the token is not valid.
	Verify(ctx context.Context, token string) error
}

// AllowAll accepts every token. It's used when no reCAPTCHA secret is configured.
type AllowAll struct{}

func (AllowAll) Verify(context.Context, string) error {
	return nil
}

type Settings struct {
	VerifyURL *url.URL
	Secret    krypto.Secret
}

// ReCAPTCHA verifies tokens with the reCAPTCHA API.
type ReCAPTCHA struct {
	client   *http.Client
	settings Settings
}

func NewReCAPTCHA(client *http.Client, s Settings) *ReCAPTCHA {
	return &ReCAPTCHA{
		client:   client,
		settings: s,
	}
}

type response struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func (r *ReCAPTCHA) Verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	form := url.Values{
		"secret":   {string(r.settings.Secret.SecretValue())},
		"response": {token},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.settings.VerifyURL.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request did not succeed, status code %d", resp.StatusCode)
	}

	var res response
	err = json.NewDecoder(resp.Body).Decode(&res)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !res.Success {
		return fmt.Errorf("%w: %s", ErrInvalidToken, strings.Join(res.ErrorCodes, ", "))
	}

	return nil
}
