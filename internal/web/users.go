package web

import (
	"errors"
	"net/http"

	"github.com/donatewisely/donatewisely/internal/agency"
	"github.com/donatewisely/donatewisely/internal/auth"
	"github.com/donatewisely/donatewisely/internal/captcha"
	"github.com/donatewisely/donatewisely/internal/errorz"
	"github.com/donatewisely/donatewisely/internal/krypto"
	"github.com/donatewisely/donatewisely/internal/validate"
	"github.com/donatewisely/donatewisely/internal/web/sessions"
)

func (s *Server) userRoutes() {
	s.handle("GET /{$}", http.RedirectHandler("/users", http.StatusFound))
	s.handle("GET /users", s.viewHandler("home"))
	s.handle("GET /users/terms", s.viewHandler("terms"))

	// Signup endpoints.
	s.handle("GET /users/signup", s.viewHandler("signup"), s.publicOnly)
	{
		h := mapBoth(s, s.deps.AuthService.Signup)
		h.request(func(r *http.Request) (auth.Signup, error) {
			token := r.PostForm.Get("captchaToken")
			err := s.deps.Captcha.Verify(r.Context(), token)
			if errors.Is(err, captcha.ErrInvalidToken) {
				return auth.Signup{}, validate.FieldError{
					Value:    token,
					Msg:      "Provided captcha token is not valid",
					Param:    "captchaToken",
					Location: validate.LocationBody,
				}
			}
			if err != nil {
				return auth.Signup{}, err
			}

			return decodeForm[auth.Signup](s, r)
		})
		h.response(func(r result[auth.Signup, auth.User]) error {
			u, err := r.s.startSession(r.w, r.r, r.out)
			if err != nil {
				return err
			}

			return writeJSON(r.w, http.StatusOK, envelope{
				Success: true,
				User:    &u,
				URL:     landingURL(u),
			})
		})

		s.handle("POST /users/signup", h, s.validated(signupSchema), s.publicOnly)
	}

	// Login endpoints.
	s.handle("GET /users/login", s.viewHandler("login"), s.publicOnly)
	{
		h := mapBoth(s, s.deps.AuthService.Authenticate)
		h.onError(func(err error) error {
			// Undecodable credentials get the same answer as wrong ones.
			var invalid errorz.InvalidInput
			if errors.Is(err, auth.ErrInvalidCredentials) || errors.As(err, &invalid) {
				return pageError{
					page: page{
						name:   "login",
						status: http.StatusForbidden,
						error:  "Username and/or password incorrect",
					},
					err: err,
				}
			}
			return err
		})
		h.response(func(r result[auth.Credentials, auth.User]) error {
			_, err := r.s.startSession(r.w, r.r, r.out)
			if err != nil {
				return err
			}

			http.Redirect(r.w, r.r, "/users/profile", http.StatusFound)
			return nil
		})

		s.handle("POST /users/login", h, s.validated(loginSchema), s.publicOnly)
	}

	s.handle("GET /users/logout", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := s.deps.Sessions.Destroy(r.Context())
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		http.Redirect(w, r, "/users/login", http.StatusFound)
	}))

	// Profile endpoints.
	s.handle("GET /users/profile", http.HandlerFunc(s.profile), s.loggedIn)
	{
		h := mapBoth(s, s.deps.AuthService.UpdateAboutMe)
		h.request(func(r *http.Request) (auth.AboutMeUpdate, error) {
			in, err := decodeForm[auth.AboutMeUpdate](s, r)
			in.UserID = s.sessionUser(r).ID
			return in, err
		})
		h.onError(notFoundAs(http.StatusNotFound, "User could not be found"))

		s.handle("PUT /users/profile", h, s.validated(aboutMeSchema), s.loggedInAPI)
	}

	// Agency endpoints.
	s.handle("GET /users/agency", s.viewHandler("agency"), s.loggedIn)
	{
		h := mapBoth(s, s.deps.AgencyService.Create)
		h.request(func(r *http.Request) (agency.NewAgency, error) {
			in, err := decodeForm[agency.NewAgency](s, r)
			in.AccountManager = s.sessionUser(r).ID
			return in, err
		})
		h.response(func(r result[agency.NewAgency, agency.Agency]) error {
			u := r.s.sessionUser(r.r)
			return writeJSON(r.w, http.StatusOK, envelope{
				Success: true,
				User:    &u,
				URL:     "/users/profile",
			})
		})

		s.handle("POST /users/agency", h, s.validated(agencySchema), s.partnerOnly)
	}

	s.handle("GET /users/choose", http.HandlerFunc(s.chooseItem), s.loggedIn)
	s.handle("GET /users/verify/{hash}", http.HandlerFunc(s.verifyEmail))
}

type profileData struct {
	User   auth.User
	Agency *agency.Agency
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	u, err := s.deps.AuthService.FindUser(r.Context(), s.sessionUser(r).ID)
	if err != nil {
		s.handleError(w, r, notFoundAs(http.StatusNotFound, "User could not be found")(err))
		return
	}

	data := profileData{User: u}
	if u.Role.RequiresAgency() {
		a, err := s.deps.AgencyService.FindByAccountManager(r.Context(), u.ID)
		if errors.Is(err, errorz.ErrNotFound) {
			http.Redirect(w, r, "/users/agency", http.StatusFound)
			return
		}
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		data.Agency = &a
	}

	err = s.writeView(w, r, page{name: "profile", data: data})
	if err != nil {
		s.handleError(w, r, err)
	}
}

type chooseItemData struct {
	User   sessions.User
	Agency *agency.Agency
}

func (s *Server) chooseItem(w http.ResponseWriter, r *http.Request) {
	data := chooseItemData{User: s.sessionUser(r)}

	if data.User.IsPartner() {
		a, err := s.deps.AgencyService.FindByAccountManager(r.Context(), data.User.ID)
		if err != nil {
			s.handleError(w, r, notFoundAs(http.StatusNotFound, "Agency Not Found")(err))
			return
		}

		data.Agency = &a
	}

	err := s.writeView(w, r, page{name: "choose-item", data: data})
	if err != nil {
		s.handleError(w, r, err)
	}
}

func (s *Server) verifyEmail(w http.ResponseWriter, r *http.Request) {
	const failed = "Email Verification failed!"

	token, err := krypto.ParseToken(r.PathValue("hash"))
	if err != nil {
		s.handleError(w, r, newPublicError(http.StatusBadRequest, failed, err))
		return
	}

	alreadyVerified, err := s.deps.AuthService.VerifyEmail(r.Context(), token)
	if err != nil {
		s.handleError(w, r, notFoundAs(http.StatusBadRequest, failed)(err))
		return
	}

	msg := "Email Verification successful"
	if alreadyVerified {
		msg = "Your email is already verified."
	}

	err = s.writeView(w, r, page{name: "login", success: msg})
	if err != nil {
		s.handleError(w, r, err)
	}
}

// startSession stores a snapshot of u in a renewed session.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, u auth.User) (sessions.User, error) {
	// Clear the CSRF token so a token obtained before logging in is
	// worthless afterwards. A new one is issued on the next page view.
	http.SetCookie(w, &http.Cookie{
		Name:   csrfTokenCookieName,
		Path:   "/",
		MaxAge: -1,
	})

	su := sessions.UserFrom(u)
	return su, s.deps.Sessions.Login(r.Context(), su)
}

// sessionUser returns the user of the session, guards make sure there is one.
func (s *Server) sessionUser(r *http.Request) sessions.User {
	u, _ := s.deps.Sessions.User(r.Context())
	return u
}

// landingURL is where users go after signing up.
func landingURL(u sessions.User) string {
	if u.Role.RequiresAgency() {
		return "/users/agency"
	}
	return "/users/profile"
}

// notFoundAs replaces errorz.ErrNotFound with a public error.
func notFoundAs(status int, msg string) func(error) error {
	return func(err error) error {
		if errors.Is(err, errorz.ErrNotFound) {
			return newPublicError(status, msg, err)
		}
		return err
	}
}
