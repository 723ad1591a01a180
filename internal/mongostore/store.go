// Package mongostore implements the stores of the different services on
// top of a MongoDB database.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/donatewisely/donatewisely/internal/errorz"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection     = "users"
	agenciesCollection  = "agencies"
	wishCardsCollection = "wishcards"
	messagesCollection  = "messages"
)

// Store is responsible for interacting with a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect connects to the MongoDB deployment at uri and uses the named database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(database),
	}, nil
}

// Close disconnects from the database.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop drops the database, only used in tests.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

// EnsureIndexes creates the indexes the store relies on. Unique indexes
// guarantee one user per email and one agency per account manager.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "verification_digest", Value: 1}}},
			{Keys: bson.D{{Key: "reset_digest", Value: 1}}},
		},
		agenciesCollection: {
			{Keys: bson.D{{Key: "account_manager", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		wishCardsCollection: {
			{Keys: bson.D{{Key: "created_by", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		messagesCollection: {
			{Keys: bson.D{{Key: "wishcard_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		_, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", coll, err)
		}
	}

	return nil
}

// mapErr maps MongoDB errors to errorz errors.
func mapErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return errorz.ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return errors.Join(errorz.ErrConstraintViolated, err)
	}

	return err
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q in document: %w", raw, err)
	}
	return id, nil
}

func utc(t time.Time) time.Time {
	return t.UTC()
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, mapErr(err)
	}

	out := make([]T, 0)
	err = cur.All(ctx, &out)
	if err != nil {
		return nil, mapErr(err)
	}

	return out, nil
}
