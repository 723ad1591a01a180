package sessions

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

const (
	userKey    = "user"
	flashesKey = "flashes"
)

type Config struct {
	CookieName string
	Lifetime   time.Duration
	Secure     bool
}

// Store keeps sessions server side, the cookie only carries the session token.
type Store struct {
	manager *scs.SessionManager
}

func NewStore(cfg Config) *Store {
	m := scs.New()
	m.Store = memstore.NewWithCleanupInterval(time.Minute)
	m.Lifetime = cfg.Lifetime
	m.Cookie.Name = cfg.CookieName
	m.Cookie.Path = "/"
	m.Cookie.HttpOnly = true
	m.Cookie.SameSite = http.SameSiteLaxMode
	m.Cookie.Secure = cfg.Secure

	return &Store{manager: m}
}

// Middleware loads the session for every request and writes the session
// cookie when the session changed.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return s.manager.LoadAndSave(next)
}

// User returns the user of the session, ok is false for anonymous sessions.
func (s *Store) User(ctx context.Context) (User, bool) {
	u, ok := s.manager.Get(ctx, userKey).(User)
	return u, ok
}

// Login stores the user in the session. The session token is renewed to
// prevent session fixation.
func (s *Store) Login(ctx context.Context, u User) error {
	err := s.manager.RenewToken(ctx)
	if err != nil {
		return err
	}

	s.manager.Put(ctx, userKey, u)
	return nil
}

// Destroy removes the session from the store and expires the cookie.
func (s *Store) Destroy(ctx context.Context) error {
	return s.manager.Destroy(ctx)
}

func (s *Store) AddFlash(ctx context.Context, msg string) {
	flashes, _ := s.manager.Get(ctx, flashesKey).([]string)
	s.manager.Put(ctx, flashesKey, append(flashes, msg))
}

// ConsumeFlashes returns the flash messages and removes them from the session.
func (s *Store) ConsumeFlashes(ctx context.Context) []string {
	flashes, _ := s.manager.Pop(ctx, flashesKey).([]string)
	return flashes
}
