package web

import (
	"net/http"

	"github.com/donatewisely/donatewisely/internal/validate"
)

type middleware func(http.Handler) http.Handler

// handle registers h for pattern behind the given middlewares, the first
// middleware runs first.
func (s *Server) handle(pattern string, h http.Handler, mws ...middleware) {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}

	s.mux.Handle(pattern, h)
}

// publicOnly redirects logged in users to their profile.
func (s *Server) publicOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.deps.Sessions.User(r.Context()); ok {
			http.Redirect(w, r, "/users/profile", http.StatusFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggedIn redirects anonymous users to the login page.
func (s *Server) loggedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.deps.Sessions.User(r.Context()); !ok {
			http.Redirect(w, r, "/users/login", http.StatusFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggedInAPI answers anonymous users with a 403 envelope.
func (s *Server) loggedInAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.deps.Sessions.User(r.Context()); !ok {
			s.handleError(w, r, newPublicError(http.StatusForbidden, "You must be logged in", nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// partnerOnly answers everyone but partners with a 403 envelope.
func (s *Server) partnerOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.deps.Sessions.User(r.Context())
		if !ok || !u.IsPartner() {
			s.handleError(w, r, newPublicError(http.StatusForbidden, "Only partners can do this", nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// validated checks the request against the schema. The first failing rule
// is answered with a 400 envelope and next is not called.
func (s *Server) validated(schema validate.Schema) middleware {
	names := schema.ParamNames()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			in := validate.Input{
				Body:   r.PostForm,
				Query:  r.URL.Query(),
				Params: make(map[string]string, len(names)),
			}

			for _, name := range names {
				in.Params[name] = r.PathValue(name)
			}

			err := schema.Validate(in)
			if err != nil {
				s.handleError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
