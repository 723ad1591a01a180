package email

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// TemplateElement is used by a renderer to identify the different parts of an email template.
type TemplateElement string

const (
	ElementSubject TemplateElement = "subject"
	ElementBody    TemplateElement = "body"
)

// Renderer renders an element of a named email template.
type Renderer interface {
	Render(w io.Writer, name string, element TemplateElement, data any) error
}

// Sender is responsible for actually sending an email.
type Sender interface {
	Send(ctx context.Context, from, recipient Address, subject, body string) error
}

// ServiceConfig is the configuration for the Service.
type ServiceConfig struct {
	From    Address
	BaseURL *url.URL
}

// TemplateData is passed to every email template. Links in emails are
// built from BaseURL.
type TemplateData struct {
	BaseURL string
	Data    any
}

// Service renders templated emails and hands them to a Sender.
type Service struct {
	renderer Renderer
	sender   Sender
	cfg      ServiceConfig
}

func NewService(renderer Renderer, sender Sender, cfg ServiceConfig) *Service {
	return &Service{
		renderer: renderer,
		sender:   sender,
		cfg:      cfg,
	}
}

// Send renders the template with the given name and sends it to the recipient.
func (s *Service) Send(ctx context.Context, template string, recipient Address, data any) error {
	td := TemplateData{
		Data: data,
	}

	if s.cfg.BaseURL != nil {
		td.BaseURL = strings.TrimSuffix(s.cfg.BaseURL.String(), "/")
	}

	var subject bytes.Buffer
	err := s.renderer.Render(&subject, template, ElementSubject, td)
	if err != nil {
		return fmt.Errorf("failed to render subject of %s: %w", template, err)
	}

	var body bytes.Buffer
	err = s.renderer.Render(&body, template, ElementBody, td)
	if err != nil {
		return fmt.Errorf("failed to render body of %s: %w", template, err)
	}

	err = s.sender.Send(ctx, s.cfg.From, recipient, strings.TrimSpace(subject.String()), strings.TrimSpace(body.String()))
	if err != nil {
		return fmt.Errorf("failed to send %s: %w", template, err)
	}

	return nil
}
