package captcha_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/donatewisely/donatewisely/internal/captcha"
	"github.com/donatewisely/donatewisely/internal/krypto"
)

func Test_ReCAPTCHA_Verify(t *testing.T) {
	t.Run("ok, valid token", func(t *testing.T) {
		var gotSecret, gotResponse string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := r.ParseForm()
			if err != nil {
				t.Errorf("failed to parse form: %v", err)
			}
			gotSecret = r.PostForm.Get("secret")
			gotResponse = r.PostForm.Get("response")
			_, _ = w.Write([]byte(`{"success":true}`))
		}))
		defer srv.Close()

		v := captcha.NewReCAPTCHA(srv.Client(), settings(t, srv.URL))
		err := v.Verify(context.Background(), "token")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotSecret != "secret" || gotResponse != "token" {
			t.Errorf("got secret %q and response %q", gotSecret, gotResponse)
		}
	})

	t.Run("fail, empty token", func(t *testing.T) {
		v := captcha.NewReCAPTCHA(http.DefaultClient, settings(t, "http://localhost"))
		err := v.Verify(context.Background(), "")
		if !errors.Is(err, captcha.ErrInvalidToken) {
			t.Fatalf("expected %v, got %v", captcha.ErrInvalidToken, err)
		}
	})

	t.Run("fail, token rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
		}))
		defer srv.Close()

		v := captcha.NewReCAPTCHA(srv.Client(), settings(t, srv.URL))
		err := v.Verify(context.Background(), "token")
		if !errors.Is(err, captcha.ErrInvalidToken) {
			t.Fatalf("expected %v, got %v", captcha.ErrInvalidToken, err)
		}
	})

	t.Run("fail, server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		v := captcha.NewReCAPTCHA(srv.Client(), settings(t, srv.URL))
		err := v.Verify(context.Background(), "token")
		if err == nil || errors.Is(err, captcha.ErrInvalidToken) {
			t.Fatalf("expected a request error, got %v", err)
		}
	})
}

func Test_AllowAll(t *testing.T) {
	err := captcha.AllowAll{}.Verify(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func settings(t *testing.T, rawURL string) captcha.Settings {
	t.Helper()

	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("failed to parse url: %v", err)
	}

	return captcha.Settings{
		VerifyURL: u,
		Secret:    krypto.NewSecret("secret"),
	}
}
