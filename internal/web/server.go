package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/donatewisely/donatewisely/internal/agency"
	"github.com/donatewisely/donatewisely/internal/auth"
	"github.com/donatewisely/donatewisely/internal/captcha"
	"github.com/donatewisely/donatewisely/internal/errorz"
	"github.com/donatewisely/donatewisely/internal/krypto"
	"github.com/donatewisely/donatewisely/internal/validate"
	"github.com/donatewisely/donatewisely/internal/web/sessions"
	"github.com/donatewisely/donatewisely/internal/wishcard"
	"github.com/gorilla/csrf"
	"github.com/gorilla/schema"
)

const (
	csrfTokenCookieName = "_csrf"
	csrfTokenField      = "csrf_token"
	csrfTokenHeader     = "X-CSRF-Token"
)

// ViewRenderer renders named views with the given data.
type ViewRenderer interface {
	Render(w io.Writer, name string, data any) error
}

// ServerDeps are the dependencies for the server.
type ServerDeps struct {
	Logger          *slog.Logger
	ViewRenderer    ViewRenderer
	Sessions        *sessions.Store
	AuthService     *auth.Service
	AgencyService   *agency.Service
	WishCardService *wishcard.Service
	Captcha         captcha.Verifier
	DistFS          http.FileSystem
	// UploadFS serves uploaded files under /uploads/, it's nil when
	// uploads are stored elsewhere.
	UploadFS http.FileSystem
}

// ClientConfig is the public configuration the front-end needs.
type ClientConfig struct {
	GoogleClientID   string
	FacebookAppID    string
	RecaptchaSiteKey string
}

// ServerConfig is the configuration for the server.
type ServerConfig struct {
	CSRFKey      krypto.Key
	SecureCookie bool
	Client       ClientConfig
}

type Server struct {
	deps    *ServerDeps
	cfg     ServerConfig
	mux     *http.ServeMux
	decoder *schema.Decoder
	handler http.Handler
}

func NewServer(deps *ServerDeps, cfg ServerConfig) *Server {
	s := &Server{
		deps:    deps,
		cfg:     cfg,
		mux:     http.NewServeMux(),
		decoder: newDecoder(),
	}

	s.userRoutes()
	s.passwordRoutes()
	s.federatedRoutes()
	s.wishCardRoutes()

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(deps.DistFS)))
	if deps.UploadFS != nil {
		s.mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(deps.UploadFS)))
	}

	// Wrap the mux with global middlewares.
	csrfMW := csrf.Protect(
		cfg.CSRFKey.SecretValue(),
		csrf.CookieName(csrfTokenCookieName),
		csrf.FieldName(csrfTokenField),
		csrf.RequestHeader(csrfTokenHeader),
		csrf.Path("/"),
		csrf.Secure(cfg.SecureCookie),
		csrf.ErrorHandler(http.HandlerFunc(s.csrfFailure)),
	)

	middlewares := []middleware{
		s.recoverer,
		deps.Sessions.Middleware,
		csrfMW,
		s.body,
	}
	s.handler = s.mux
	for i := len(middlewares) - 1; i >= 0; i-- {
		s.handler = middlewares[i](s.handler)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// handleError writes err as a JSON envelope. Errors the client is not
// supposed to see are logged and answered with a generic message.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		pageErr  pageError
		pubErr   publicError
		fieldErr validate.FieldError
		invalid  errorz.InvalidInput
	)

	switch {
	case errors.As(err, &pageErr):
		renderErr := s.writeView(w, r, pageErr.page)
		if renderErr != nil {
			s.handleError(w, r, renderErr)
		}
		return
	case errors.As(err, &pubErr):
		s.writeError(w, r, pubErr.status, pubErr.msg)
	case errors.As(err, &fieldErr):
		s.writeError(w, r, http.StatusBadRequest, fieldErr)
	case errors.As(err, &invalid):
		fe := validate.FieldError{Msg: validate.DefaultMessage, Location: validate.LocationBody}
		if first, ok := invalid.First(); ok {
			fe.Param = first.Key
		}
		s.writeError(w, r, http.StatusBadRequest, fe)
	case errors.Is(err, auth.ErrDuplicateUser):
		s.writeError(w, r, http.StatusConflict, "This email is already taken. Try another")
	case errors.Is(err, agency.ErrAlreadyExists):
		s.writeError(w, r, http.StatusConflict, "Agency already exists")
	case errors.Is(err, auth.ErrTokenExpired):
		s.writeError(w, r, http.StatusBadRequest, "Password token expired")
	case errors.Is(err, errorz.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, "not found")
	default:
		s.deps.Logger.Error("internal server error", "method", r.Method, "url", r.URL.String(), "error", err)
		s.writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg any) {
	err := writeJSON(w, status, envelope{Success: false, Error: msg})
	if err != nil {
		s.deps.Logger.Error("failed to write error response", "url", r.URL.String(), "error", err)
	}
}

func (s *Server) csrfFailure(w http.ResponseWriter, r *http.Request) {
	s.deps.Logger.Warn("csrf check failed", "url", r.URL.String(), "reason", csrf.FailureReason(r))
	s.writeError(w, r, http.StatusForbidden, "Invalid CSRF token")
}

// recoverer turns panics in handlers into internal server errors.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			s.handleError(w, r, fmt.Errorf("panic: %v", rec))
		}()

		next.ServeHTTP(w, r)
	})
}
