package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/donatewisely/donatewisely/internal/agency"
	"github.com/donatewisely/donatewisely/internal/errorz"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type agencyDoc struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Website        string    `bson:"website"`
	Phone          string    `bson:"phone"`
	Bio            string    `bson:"bio"`
	AccountManager string    `bson:"account_manager"`
	CreatedAt      time.Time `bson:"created_at"`
}

// CreateAgency creates an agency in the database.
// It returns errorz.ErrConstraintViolated if the account manager already
// manages an agency.
func (s *Store) CreateAgency(ctx context.Context, a *agency.Agency) error {
	if a.ID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	_, err := s.db.Collection(agenciesCollection).InsertOne(ctx, agencyDoc{
		ID:             a.ID.String(),
		Name:           a.Name,
		Website:        a.Website,
		Phone:          a.Phone,
		Bio:            a.Bio,
		AccountManager: a.AccountManager.String(),
		CreatedAt:      utc(a.CreatedAt),
	})
	return mapErr(err)
}

// FindAgencies queries for agencies based on the provided filter.
// It returns an empty slice if no agencies are found.
func (s *Store) FindAgencies(ctx context.Context, f *agency.Filter) ([]agency.Agency, error) {
	filter := bson.M{}

	if len(f.IDs) > 0 {
		filter["_id"] = bson.M{"$in": idStrings(f.IDs)}
	}

	if len(f.AccountManagers) > 0 {
		filter["account_manager"] = bson.M{"$in": idStrings(f.AccountManagers)}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	docs, err := findAll[agencyDoc](ctx, s.db.Collection(agenciesCollection), filter, opts)
	if err != nil {
		return nil, err
	}

	out := make([]agency.Agency, 0, len(docs))
	for _, d := range docs {
		id, err := parseID(d.ID)
		if err != nil {
			return nil, err
		}

		manager, err := parseID(d.AccountManager)
		if err != nil {
			return nil, err
		}

		out = append(out, agency.Agency{
			ID:             id,
			Name:           d.Name,
			Website:        d.Website,
			Phone:          d.Phone,
			Bio:            d.Bio,
			AccountManager: manager,
			CreatedAt:      d.CreatedAt,
		})
	}

	return out, nil
}
