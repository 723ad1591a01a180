package web

import (
	"context"
	"net/http"

	"github.com/donatewisely/donatewisely/internal/auth"
)

type googleSignin struct {
	IDToken string `schema:"id_token"`
}

func (s *Server) federatedRoutes() {
	// Federated logins fail with the same message whatever went wrong,
	// the details are only logged.
	loginFailed := func(err error) error {
		s.deps.Logger.Warn("federated login failed", "error", err)
		return newPublicError(http.StatusBadRequest, "Error during login!\nTry again in a few minutes!", err)
	}

	{
		h := mapBoth(s, func(ctx context.Context, in googleSignin) (auth.User, error) {
			return s.deps.AuthService.SignInWithGoogle(ctx, in.IDToken)
		})
		h.onError(loginFailed)
		h.response(federatedSession[googleSignin])

		s.handle("POST /google-signin", h)
	}

	{
		h := mapBoth(s, s.deps.AuthService.SignInWithFacebook)
		h.onError(loginFailed)
		h.response(federatedSession[auth.FacebookProfile])

		s.handle("POST /fb-signin", h)
	}
}

func federatedSession[IN any](r result[IN, auth.User]) error {
	_, err := r.s.startSession(r.w, r.r, r.out)
	if err != nil {
		return err
	}

	return writeJSON(r.w, http.StatusOK, envelope{
		Success: true,
		URL:     "/users/profile",
	})
}
