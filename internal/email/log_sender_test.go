package email_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/donatewisely/donatewisely/internal/email"
)

func Test_LogSender_Send(t *testing.T) {
	var buf bytes.Buffer
	s := email.NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	err := s.Send(context.Background(), "noreply@donatewisely.org", "dana@example.com", "Verify", "Open http://localhost/users/verify/abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := buf.String()
	for _, want := range []string{
		`msg="send email"`,
		`email.from=noreply@donatewisely.org`,
		`email.recipient=dana@example.com`,
		`email.subject=Verify`,
		`http://localhost/users/verify/abc`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in log line\n%s", want, got)
		}
	}

	if strings.Count(got, "\n") != 1 {
		t.Errorf("expected a single log line, got\n%s", got)
	}
}
