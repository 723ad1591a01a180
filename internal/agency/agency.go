// Package agency manages the partner organizations that create wish cards.
package agency

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/donatewisely/donatewisely/internal/errorz"
	"github.com/google/uuid"
)

var ErrAlreadyExists = errors.New("agency already exists")

// Agency is a partner organization. Every partner user manages at most one.
type Agency struct {
	ID             uuid.UUID
	Name           string
	Website        string
	Phone          string
	Bio            string
	AccountManager uuid.UUID
	CreatedAt      time.Time
}

// Filter is used to filter agencies.
// Returned agencies must match all the provided fields.
// If a field is empty, it's ignored.
type Filter struct {
	IDs             []uuid.UUID
	AccountManagers []uuid.UUID
}

// Store provides access to agencies. Implementations enforce a single
// agency per account manager and report violations as
// errorz.ErrConstraintViolated.
type Store interface {
	CreateAgency(ctx context.Context, a *Agency) error
	FindAgencies(ctx context.Context, filter *Filter) ([]Agency, error)
}

type Service struct {
	store Store

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(s Store) *Service {
	return &Service{
		store:   s,
		NowFunc: time.Now,
	}
}

// NewAgency is the input for creating an agency.
type NewAgency struct {
	Name           string    `schema:"agencyName"`
	Website        string    `schema:"agencyWebsite"`
	Phone          string    `schema:"agencyPhone"`
	Bio            string    `schema:"agencyBio"`
	AccountManager uuid.UUID `schema:"-"`
}

// Create creates the agency for the account manager. A second agency for
// the same account manager fails with ErrAlreadyExists.
func (s *Service) Create(ctx context.Context, in NewAgency) (Agency, error) {
	_, err := s.FindByAccountManager(ctx, in.AccountManager)
	if err == nil {
		return Agency{}, ErrAlreadyExists
	}
	if !errors.Is(err, errorz.ErrNotFound) {
		return Agency{}, err
	}

	a := Agency{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(in.Name),
		Website:        strings.TrimSpace(in.Website),
		Phone:          strings.TrimSpace(in.Phone),
		Bio:            strings.TrimSpace(in.Bio),
		AccountManager: in.AccountManager,
		CreatedAt:      s.NowFunc(),
	}

	err = s.store.CreateAgency(ctx, &a)
	if errors.Is(err, errorz.ErrConstraintViolated) {
		return Agency{}, ErrAlreadyExists
	}
	if err != nil {
		return Agency{}, err
	}

	return a, nil
}

// FindByAccountManager returns the agency managed by the given user, or
// errorz.ErrNotFound.
func (s *Service) FindByAccountManager(ctx context.Context, userID uuid.UUID) (Agency, error) {
	agencies, err := s.store.FindAgencies(ctx, &Filter{
		AccountManagers: []uuid.UUID{userID},
	})
	if err != nil {
		return Agency{}, err
	}

	if len(agencies) != 1 {
		return Agency{}, errorz.ErrNotFound
	}

	return agencies[0], nil
}
