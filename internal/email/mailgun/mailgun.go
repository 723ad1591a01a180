package mailgun

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/donatewisely/donatewisely/internal/email"
	"github.com/donatewisely/donatewisely/internal/krypto"
)

// Settings contains the settings for the Mailgun API.
type Settings struct {
	APIURL   *url.URL
	Domain   string
	Username string
	Password krypto.Secret
}

// Sender sends emails using the Mailgun API.
type Sender struct {
	client   *http.Client
	settings Settings
}

func NewSender(client *http.Client, s Settings) *Sender {
	return &Sender{
		client:   client,
		settings: s,
	}
}

// Send posts the email as a multipart form. The official Go client pulls in
// far more than this single call needs.
func (s *Sender) Send(ctx context.Context, from, recipient email.Address, subject, body string) error {
	fields := [][2]string{
		{"from", string(from)},
		{"to", string(recipient)},
		{"subject", subject},
		{"text", body},
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		err := w.WriteField(f[0], f[1])
		if err != nil {
			return fmt.Errorf("failed to write field %s: %w", f[0], err)
		}
	}

	err := w.Close()
	if err != nil {
		return err
	}

	reqURL := s.settings.APIURL.JoinPath("v3", s.settings.Domain, "messages")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", w.FormDataContentType())
	req.SetBasicAuth(s.settings.Username, string(s.settings.Password.SecretValue()))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	resBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request did not succeed %d: %s", resp.StatusCode, resBody)
	}

	return nil
}
