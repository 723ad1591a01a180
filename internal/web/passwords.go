package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/donatewisely/donatewisely/internal/auth"
	"github.com/donatewisely/donatewisely/internal/email"
	"github.com/donatewisely/donatewisely/internal/errorz"
	"github.com/donatewisely/donatewisely/internal/krypto"
)

type passwordRequest struct {
	Email string `schema:"email"`
}

func (s *Server) passwordRoutes() {
	// Request password reset endpoints.
	s.handle("GET /users/password/request", s.viewHandler("request-password"))
	{
		h := mapRequest(s, func(ctx context.Context, in passwordRequest) error {
			addr, err := email.ParseAddress(in.Email)
			if err != nil {
				return fmt.Errorf("%w: %w", errorz.ErrNotFound, err)
			}

			return s.deps.AuthService.RequestPasswordReset(ctx, addr)
		})
		h.onError(notFoundAs(http.StatusBadRequest, "user not found"))

		s.handle("POST /users/password/request", h, s.validated(passwordRequestSchema))
	}

	// Reset password endpoints.
	s.handle("GET /users/password/reset/{token}", http.HandlerFunc(s.resetPasswordForm))
	{
		h := mapRequest(s, s.deps.AuthService.ResetPassword)
		h.request(func(r *http.Request) (auth.NewPassword, error) {
			in, err := decodeForm[auth.NewPassword](s, r)
			if err != nil {
				return in, err
			}

			in.Token, err = resetToken(r)
			return in, err
		})
		h.onError(notFoundAs(http.StatusBadRequest, "User not found"))
		h.response(func(r result[auth.NewPassword, struct{}]) error {
			// Log out everywhere the reset was requested from.
			err := r.s.deps.Sessions.Destroy(r.r.Context())
			if err != nil {
				return err
			}

			return writeJSON(r.w, http.StatusOK, envelope{Success: true})
		})

		s.handle("POST /users/password/reset/{token}", h, s.validated(passwordResetSchema))
	}
}

func (s *Server) resetPasswordForm(w http.ResponseWriter, r *http.Request) {
	token, err := resetToken(r)
	if err == nil {
		err = s.deps.AuthService.CheckResetToken(r.Context(), token)
	}
	if err != nil {
		s.handleError(w, r, notFoundAs(http.StatusBadRequest, "User not found")(err))
		return
	}

	err = s.writeView(w, r, page{name: "reset-password", data: token.String()})
	if err != nil {
		s.handleError(w, r, err)
	}
}

// resetToken reads the token from the path, malformed tokens are not found.
func resetToken(r *http.Request) (krypto.Token, error) {
	token, err := krypto.ParseToken(r.PathValue("token"))
	if errors.Is(err, krypto.ErrInvalidToken) {
		return krypto.Token{}, fmt.Errorf("%w: %w", errorz.ErrNotFound, err)
	}

	return token, err
}
