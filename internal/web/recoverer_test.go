package web

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func Test_Recoverer(t *testing.T) {
	t.Run("ok, panic becomes internal server error", func(t *testing.T) {
		var logs bytes.Buffer
		s := &Server{deps: &ServerDeps{Logger: slog.New(slog.NewTextHandler(&logs, nil))}}

		h := s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected status %d got %d", http.StatusInternalServerError, w.Code)
		}

		if !strings.Contains(w.Body.String(), "internal server error") {
			t.Errorf("unexpected body %q", w.Body.String())
		}

		if !strings.Contains(logs.String(), "boom") {
			t.Errorf("expected panic to be logged, got %q", logs.String())
		}
	})

	t.Run("ok, abort handler panics again", func(t *testing.T) {
		s := &Server{deps: &ServerDeps{Logger: slog.New(slog.DiscardHandler)}}

		h := s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic(http.ErrAbortHandler)
		}))

		defer func() {
			if rec := recover(); rec != http.ErrAbortHandler {
				t.Errorf("expected ErrAbortHandler got %v", rec)
			}
		}()

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
