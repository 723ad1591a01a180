// Package postmark delivers emails through the Postmark HTTP API.
package postmark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/donatewisely/donatewisely/internal/email"
	"github.com/donatewisely/donatewisely/internal/krypto"
)

type Settings struct {
	// APIURL is the API root, the sender posts to its /email endpoint.
	APIURL        *url.URL
	ServerToken   krypto.Secret
	MessageStream string
}

type Sender struct {
	client   *http.Client
	settings Settings
}

func NewSender(client *http.Client, s Settings) *Sender {
	return &Sender{client: client, settings: s}
}

// message is the body of POST /email.
type message struct {
	From          string `json:"From"`
	To            string `json:"To"`
	Subject       string `json:"Subject"`
	TextBody      string `json:"TextBody"`
	MessageStream string `json:"MessageStream,omitempty"`
}

// result is returned for accepted and rejected messages alike.
type result struct {
	ErrorCode int    `json:"ErrorCode"`
	Message   string `json:"Message"`
	MessageID string `json:"MessageID"`
}

func (s *Sender) Send(ctx context.Context, from, recipient email.Address, subject, body string) error {
	payload, err := json.Marshal(message{
		From:          string(from),
		To:            string(recipient),
		Subject:       subject,
		TextBody:      body,
		MessageStream: s.settings.MessageStream,
	})
	if err != nil {
		return fmt.Errorf("encoding postmark message: %w", err)
	}

	endpoint := s.settings.APIURL.JoinPath("email")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating postmark request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Postmark-Server-Token", string(s.settings.ServerToken.SecretValue()))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("postmark request: %w", err)
	}
	defer resp.Body.Close()

	// Rejections come back as 422 with a non-zero ErrorCode.
	var res result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return fmt.Errorf("postmark responded %d with unreadable body: %w", resp.StatusCode, err)
	}

	switch {
	case res.ErrorCode != 0:
		return fmt.Errorf("postmark rejected message (code %d): %s", res.ErrorCode, res.Message)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("postmark responded %d", resp.StatusCode)
	}

	return nil
}
