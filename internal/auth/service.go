package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/donatewisely/donatewisely/internal/email"
	"github.com/donatewisely/donatewisely/internal/errorz"
	"github.com/donatewisely/donatewisely/internal/krypto"
	"github.com/google/uuid"
)

var (
	ErrDuplicateUser      = errors.New("duplicate user")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidProfile     = errors.New("invalid federated profile")
	ErrProviderDisabled   = errors.New("provider disabled")
)

const (
	templateEmailVerification = "email-verification"
	templatePasswordReset     = "password-reset"
)

// Emailer is used to send templated emails.
type Emailer interface {
	Send(ctx context.Context, template string, to email.Address, data any) error
}

// FederatedProfile is what an identity provider tells us about a user.
type FederatedProfile struct {
	Email     email.Address
	FirstName string
	LastName  string
}

// IDTokenVerifier verifies an ID token issued by an identity provider.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (FederatedProfile, error)
}

// ErrFunc is a function that handles errors.
type ErrFunc func(error)

// ServiceConfig is the configuration for the Service.
type ServiceConfig struct {
	// WorkerTimeout is the max duration worker goroutines are allowed
	// to take before they are cancelled.
	WorkerTimeout time.Duration
	// ResetTokenExpiry is the duration a password reset token is valid.
	ResetTokenExpiry time.Duration
}

// Service implements signup, the different ways of logging in, email
// verification and password resets.
type Service struct {
	store      Store
	emailer    Emailer
	google     IDTokenVerifier
	wg         *sync.WaitGroup
	errHandler ErrFunc
	cfg        ServiceConfig

	// comparisonHash is used to compare passwords when no user was found.
	comparisonHash krypto.Argon2Hash

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

// NewService creates a new service. google may be nil, in which case
// Google sign in is disabled.
func NewService(s Store, emailer Emailer, google IDTokenVerifier, errHandler ErrFunc, cfg ServiceConfig) (*Service, error) {
	hash, err := unguessableHash()
	if err != nil {
		return nil, err
	}

	return &Service{
		store:          s,
		emailer:        emailer,
		google:         google,
		wg:             &sync.WaitGroup{},
		errHandler:     errHandler,
		cfg:            cfg,
		comparisonHash: hash,
		NowFunc:        time.Now,
	}, nil
}

// Wait waits for all open workers to finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Signup is the input for creating a local user.
type Signup struct {
	FirstName string        `schema:"fName"`
	LastName  string        `schema:"lName"`
	Email     email.Address `schema:"email"`
	Password  Password      `schema:"password"`
	Role      Role          `schema:"userRole"`
}

// VerificationEmail is the data for the email verification template.
type VerificationEmail struct {
	FirstName string
	Token     krypto.Token
}

// Signup creates a local user and sends an email verification link in the
// background. A failing email is reported to the error handler, the user
// remains created.
func (s *Service) Signup(ctx context.Context, in Signup) (User, error) {
	if !in.Role.selfAssignable() {
		return User{}, fmt.Errorf("%w: %q can't be picked at signup", ErrInvalidRole, in.Role)
	}

	existing, err := s.store.FindUsers(ctx, &UserFilter{
		Emails: []email.Address{in.Email},
	})
	if err != nil {
		return User{}, err
	}

	if len(existing) > 0 {
		return User{}, ErrDuplicateUser
	}

	hash, err := in.Password.Hash()
	if err != nil {
		return User{}, err
	}

	token, err := krypto.GenerateToken()
	if err != nil {
		return User{}, err
	}

	now := s.NowFunc()
	u := User{
		ID:                 uuid.New(),
		Email:              in.Email,
		FirstName:          strings.TrimSpace(in.FirstName),
		LastName:           strings.TrimSpace(in.LastName),
		PasswordHash:       hash,
		Role:               in.Role,
		Provider:           ProviderLocal,
		VerificationDigest: token.Digest(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.store.CreateUser(ctx, &u)
	if errors.Is(err, errorz.ErrConstraintViolated) {
		// Lost a race with a concurrent signup for the same address.
		return User{}, ErrDuplicateUser
	}
	if err != nil {
		return User{}, err
	}

	s.work("send verification email", func(ctx context.Context) error {
		return s.emailer.Send(ctx, templateEmailVerification, u.Email, VerificationEmail{
			FirstName: u.FirstName,
			Token:     token,
		})
	})

	return u, nil
}

// Credentials are used to log in with an email address and password.
type Credentials struct {
	Email    email.Address `schema:"email"`
	Password Password      `schema:"password"`
}

// Authenticate returns the user matching the credentials. All failures
// are reported as ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, c Credentials) (User, error) {
	users, err := s.store.FindUsers(ctx, &UserFilter{
		Emails: []email.Address{c.Email},
	})
	if err != nil {
		return User{}, err
	}

	if len(users) != 1 {
		// Compare against a hash anyway, so the response time doesn't reveal
		// whether the email address is known.
		_ = c.Password.Match(s.comparisonHash)
		return User{}, ErrInvalidCredentials
	}

	if !c.Password.Match(users[0].PasswordHash) {
		return User{}, ErrInvalidCredentials
	}

	return users[0], nil
}

// VerifyEmail marks the email address of the token owner as verified.
// Verifying twice succeeds, alreadyVerified is then true.
func (s *Service) VerifyEmail(ctx context.Context, token krypto.Token) (alreadyVerified bool, err error) {
	users, err := s.store.FindUsers(ctx, &UserFilter{
		VerificationDigests: []string{token.Digest()},
	})
	if err != nil {
		return false, err
	}

	if len(users) != 1 {
		return false, errorz.ErrNotFound
	}

	u := users[0]
	if u.EmailVerified {
		return true, nil
	}

	verified := true
	return false, s.store.UpdateUser(ctx, UserUpdate{
		ID:            u.ID,
		EmailVerified: &verified,
		UpdatedAt:     s.NowFunc(),
	})
}

// PasswordResetEmail is the data for the password reset template.
type PasswordResetEmail struct {
	FirstName string
	Token     krypto.Token
	ExpiresAt time.Time
}

// RequestPasswordReset stores a new reset token for the user and emails it
// in the background. Any earlier token stops working. Unknown addresses
// return errorz.ErrNotFound.
func (s *Service) RequestPasswordReset(ctx context.Context, addr email.Address) error {
	users, err := s.store.FindUsers(ctx, &UserFilter{
		Emails: []email.Address{addr},
	})
	if err != nil {
		return err
	}

	if len(users) != 1 {
		return errorz.ErrNotFound
	}

	token, err := krypto.GenerateToken()
	if err != nil {
		return err
	}

	now := s.NowFunc()
	expiresAt := now.Add(s.cfg.ResetTokenExpiry)

	u := users[0]
	err = s.store.UpdateUser(ctx, UserUpdate{
		ID:        u.ID,
		Reset:     &ResetToken{Digest: token.Digest(), ExpiresAt: expiresAt},
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}

	s.work("send password reset email", func(ctx context.Context) error {
		return s.emailer.Send(ctx, templatePasswordReset, u.Email, PasswordResetEmail{
			FirstName: u.FirstName,
			Token:     token,
			ExpiresAt: expiresAt,
		})
	})

	return nil
}

// CheckResetToken returns errorz.ErrNotFound for unknown tokens and
// ErrTokenExpired for expired ones.
func (s *Service) CheckResetToken(ctx context.Context, token krypto.Token) error {
	users, err := s.store.FindUsers(ctx, &UserFilter{
		ResetDigests: []string{token.Digest()},
	})
	if err != nil {
		return err
	}

	if len(users) != 1 || users[0].ResetExpiresAt == nil {
		return errorz.ErrNotFound
	}

	if !s.NowFunc().Before(*users[0].ResetExpiresAt) {
		return ErrTokenExpired
	}

	return nil
}

// NewPassword is the input for resetting a password.
type NewPassword struct {
	Token    krypto.Token `schema:"-"`
	Password Password     `schema:"password"`
}

// ResetPassword consumes the reset token and sets the new password. The
// token can only be used once, also under concurrent requests.
func (s *Service) ResetPassword(ctx context.Context, in NewPassword) error {
	err := s.CheckResetToken(ctx, in.Token)
	if err != nil {
		return err
	}

	hash, err := in.Password.Hash()
	if err != nil {
		return err
	}

	return s.store.ResetPassword(ctx, PasswordReset{
		TokenDigest:  in.Token.Digest(),
		PasswordHash: hash,
		Now:          s.NowFunc(),
	})
}

// SignInWithGoogle verifies the Google ID token and returns the matching
// user, creating one if needed.
func (s *Service) SignInWithGoogle(ctx context.Context, rawToken string) (User, error) {
	if s.google == nil {
		return User{}, ErrProviderDisabled
	}

	if rawToken == "" {
		return User{}, fmt.Errorf("%w: empty id token", ErrInvalidProfile)
	}

	p, err := s.google.Verify(ctx, rawToken)
	if err != nil {
		return User{}, fmt.Errorf("failed to verify google id token: %w", err)
	}

	return s.federatedUser(ctx, p, ProviderGoogle)
}

// FacebookProfile is the profile the client obtained from Facebook.
type FacebookProfile struct {
	Name  string        `schema:"userName"`
	Email email.Address `schema:"email"`
}

// LastNameUnset is stored for Facebook users whose name is a single word.
const LastNameUnset = "LastnameUnset"

// SignInWithFacebook returns the user matching the profile, creating one
// if needed. The profile is provided by the client and is not checked
// with Facebook.
func (s *Service) SignInWithFacebook(ctx context.Context, in FacebookProfile) (User, error) {
	names := strings.Fields(in.Name)
	if len(names) == 0 || in.Email == "" {
		return User{}, fmt.Errorf("%w: name and email are required", ErrInvalidProfile)
	}

	p := FederatedProfile{
		Email:     in.Email,
		FirstName: names[0],
		LastName:  LastNameUnset,
	}

	if len(names) > 1 {
		p.LastName = strings.Join(names[1:], " ")
	}

	return s.federatedUser(ctx, p, ProviderFacebook)
}

func (s *Service) federatedUser(ctx context.Context, p FederatedProfile, provider Provider) (User, error) {
	if p.Email == "" {
		return User{}, fmt.Errorf("%w: missing email", ErrInvalidProfile)
	}

	users, err := s.store.FindUsers(ctx, &UserFilter{
		Emails: []email.Address{p.Email},
	})
	if err != nil {
		return User{}, err
	}

	if len(users) == 1 {
		return users[0], nil
	}

	// Federated users never log in with a password, they get a hash of a
	// random value nobody knows.
	hash, err := unguessableHash()
	if err != nil {
		return User{}, err
	}

	now := s.NowFunc()
	u := User{
		ID:            uuid.New(),
		Email:         p.Email,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		PasswordHash:  hash,
		Role:          RoleDonor,
		Provider:      provider,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.store.CreateUser(ctx, &u)
	if errors.Is(err, errorz.ErrConstraintViolated) {
		// A concurrent sign in created the user first.
		users, err = s.store.FindUsers(ctx, &UserFilter{
			Emails: []email.Address{p.Email},
		})
		if err != nil {
			return User{}, err
		}

		if len(users) != 1 {
			return User{}, errorz.ErrNotFound
		}

		return users[0], nil
	}
	if err != nil {
		return User{}, err
	}

	return u, nil
}

// FindUser returns the user with the given ID.
func (s *Service) FindUser(ctx context.Context, id uuid.UUID) (User, error) {
	users, err := s.store.FindUsers(ctx, &UserFilter{
		IDs: []uuid.UUID{id},
	})
	if err != nil {
		return User{}, err
	}

	if len(users) != 1 {
		return User{}, errorz.ErrNotFound
	}

	return users[0], nil
}

// AboutMeUpdate changes the about me text of a user.
type AboutMeUpdate struct {
	UserID  uuid.UUID `schema:"-"`
	AboutMe string    `schema:"aboutMe"`
}

// UpdateAboutMe stores the about me text and returns it.
func (s *Service) UpdateAboutMe(ctx context.Context, in AboutMeUpdate) (string, error) {
	aboutMe := strings.TrimSpace(in.AboutMe)

	err := s.store.UpdateUser(ctx, UserUpdate{
		ID:        in.UserID,
		AboutMe:   &aboutMe,
		UpdatedAt: s.NowFunc(),
	})
	if err != nil {
		return "", err
	}

	return aboutMe, nil
}

// work runs f in a worker goroutine, bounded by the worker timeout.
func (s *Service) work(name string, f func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WorkerTimeout)
		defer cancel()

		err := f(ctx)
		if err != nil {
			s.errHandler(fmt.Errorf("failed to %s: %w", name, err))
		}
	}()
}

func unguessableHash() (krypto.Argon2Hash, error) {
	tok, err := krypto.GenerateToken()
	if err != nil {
		return krypto.Argon2Hash{}, err
	}

	return krypto.HashArgon2(tok[:])
}
