package mailgun_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/donatewisely/donatewisely/internal/email/mailgun"
	"github.com/donatewisely/donatewisely/internal/krypto"
)

func Test_Sender_Send(t *testing.T) {
	t.Run("ok, posts multipart form", func(t *testing.T) {
		var gotPath, gotUser, gotPass string
		var gotForm url.Values

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotUser, gotPass, _ = r.BasicAuth()
			err := r.ParseMultipartForm(1 << 20)
			if err != nil {
				t.Errorf("failed to parse form: %v", err)
			}
			gotForm = r.MultipartForm.Value
			_, _ = w.Write([]byte(`{"id":"1","message":"Queued"}`))
		}))
		defer srv.Close()

		sender := mailgun.NewSender(srv.Client(), settings(t, srv.URL))
		err := sender.Send(context.Background(), "from@example.com", "to@example.com", "Subject", "Body")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotPath != "/v3/mg.example.com/messages" {
			t.Errorf("got path %q", gotPath)
		}

		if gotUser != "api" || gotPass != "secret" {
			t.Errorf("got basic auth %q:%q", gotUser, gotPass)
		}

		want := map[string]string{
			"from":    "from@example.com",
			"to":      "to@example.com",
			"subject": "Subject",
			"text":    "Body",
		}
		for k, v := range want {
			if gotForm.Get(k) != v {
				t.Errorf("field %s: got %q, want %q", k, gotForm.Get(k), v)
			}
		}
	})

	t.Run("fail, non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer srv.Close()

		sender := mailgun.NewSender(srv.Client(), settings(t, srv.URL))
		err := sender.Send(context.Background(), "from@example.com", "to@example.com", "Subject", "Body")
		if err == nil {
			t.Fatalf("expected error, got <nil>")
		}
	})
}

func settings(t *testing.T, rawURL string) mailgun.Settings {
	t.Helper()

	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("failed to parse url: %v", err)
	}

	return mailgun.Settings{
		APIURL:   u,
		Domain:   "mg.example.com",
		Username: "api",
		Password: krypto.NewSecret("secret"),
	}
}
