package sessions_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/donatewisely/donatewisely/internal/auth"
	"github.com/donatewisely/donatewisely/internal/web/sessions"
	"github.com/google/uuid"
)

func Test_Store(t *testing.T) {
	store := sessions.NewStore(sessions.Config{
		CookieName: "dw-test-session",
		Lifetime:   time.Hour,
	})

	user := sessions.User{
		ID:        uuid.New(),
		Email:     "donor@example.com",
		FirstName: "Dana",
		Role:      auth.RoleDonor,
		Provider:  auth.ProviderLocal,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		err := store.Login(r.Context(), user)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		store.AddFlash(r.Context(), "welcome")
	})
	mux.HandleFunc("GET /whoami", func(w http.ResponseWriter, r *http.Request) {
		u, ok := store.User(r.Context())
		if !ok {
			http.Error(w, "anonymous", http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, u.FirstName)
		for _, f := range store.ConsumeFlashes(r.Context()) {
			_, _ = io.WriteString(w, " "+f)
		}
	})
	mux.HandleFunc("GET /logout", func(w http.ResponseWriter, r *http.Request) {
		err := store.Destroy(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	srv := httptest.NewServer(store.Middleware(mux))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	c := &http.Client{Jar: jar}

	get := func(t *testing.T, path string, wantStatus int) string {
		t.Helper()

		res, err := c.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		if err != nil {
			t.Fatalf("failed to read body: %v", err)
		}

		if res.StatusCode != wantStatus {
			t.Fatalf("got status %d, want %d (body %q)", res.StatusCode, wantStatus, body)
		}

		return string(body)
	}

	get(t, "/whoami", http.StatusUnauthorized)
	get(t, "/login", http.StatusOK)

	if got := get(t, "/whoami", http.StatusOK); got != "Dana welcome" {
		t.Errorf("got %q, want %q", got, "Dana welcome")
	}

	// flashes are only shown once.
	if got := get(t, "/whoami", http.StatusOK); got != "Dana" {
		t.Errorf("got %q, want %q", got, "Dana")
	}

	get(t, "/logout", http.StatusOK)
	get(t, "/whoami", http.StatusUnauthorized)
}

func Test_UserFrom(t *testing.T) {
	u := auth.User{
		ID:            uuid.New(),
		Email:         "partner@example.com",
		FirstName:     "Pat",
		LastName:      "Smith",
		Role:          auth.RolePartner,
		Provider:      auth.ProviderGoogle,
		EmailVerified: true,
		AboutMe:       "not part of the snapshot",
	}

	got := sessions.UserFrom(u)
	want := sessions.User{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     "Pat",
		LastName:      "Smith",
		Role:          auth.RolePartner,
		Provider:      auth.ProviderGoogle,
		EmailVerified: true,
	}

	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if !got.IsPartner() {
		t.Errorf("expected partner")
	}
}
