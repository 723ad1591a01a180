package mongostore

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/donatewisely/donatewisely/internal/errorz"
	"github.com/donatewisely/donatewisely/internal/wishcard"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type wishCardDoc struct {
	ID             string    `bson:"_id"`
	ChildFirstName string    `bson:"child_first_name"`
	ChildLastName  string    `bson:"child_last_name"`
	ChildBirthday  time.Time `bson:"child_birthday"`
	ChildInterest  string    `bson:"child_interest"`
	ChildStory     string    `bson:"child_story"`
	ItemName       string    `bson:"item_name"`
	ItemPriceCents int64     `bson:"item_price_cents"`
	ItemURL        string    `bson:"item_url"`
	ImageURL       string    `bson:"image_url"`
	CreatedBy      string    `bson:"created_by"`
	CreatedAt      time.Time `bson:"created_at"`
}

func (d wishCardDoc) toWishCard() (wishcard.WishCard, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return wishcard.WishCard{}, err
	}

	createdBy, err := parseID(d.CreatedBy)
	if err != nil {
		return wishcard.WishCard{}, err
	}

	return wishcard.WishCard{
		ID:             id,
		ChildFirstName: d.ChildFirstName,
		ChildLastName:  d.ChildLastName,
		ChildBirthday:  d.ChildBirthday,
		ChildInterest:  d.ChildInterest,
		ChildStory:     d.ChildStory,
		WishItemName:   d.ItemName,
		WishItemPrice:  wishcard.Cents(d.ItemPriceCents),
		WishItemURL:    d.ItemURL,
		ImageURL:       d.ImageURL,
		CreatedBy:      createdBy,
		CreatedAt:      d.CreatedAt,
	}, nil
}

type messageDoc struct {
	ID            string    `bson:"_id"`
	WishCardID    string    `bson:"wishcard_id"`
	From          string    `bson:"from_user"`
	FromFirstName string    `bson:"from_first_name"`
	Text          string    `bson:"text"`
	CreatedAt     time.Time `bson:"created_at"`
}

// CreateWishCard creates a wish card in the database.
func (s *Store) CreateWishCard(ctx context.Context, c *wishcard.WishCard) error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	_, err := s.db.Collection(wishCardsCollection).InsertOne(ctx, wishCardDoc{
		ID:             c.ID.String(),
		ChildFirstName: c.ChildFirstName,
		ChildLastName:  c.ChildLastName,
		ChildBirthday:  utc(c.ChildBirthday),
		ChildInterest:  c.ChildInterest,
		ChildStory:     c.ChildStory,
		ItemName:       c.WishItemName,
		ItemPriceCents: int64(c.WishItemPrice),
		ItemURL:        c.WishItemURL,
		ImageURL:       c.ImageURL,
		CreatedBy:      c.CreatedBy.String(),
		CreatedAt:      utc(c.CreatedAt),
	})
	return mapErr(err)
}

// FindWishCards queries for wish cards based on the provided filter,
// newest first. It returns an empty slice if no cards are found.
func (s *Store) FindWishCards(ctx context.Context, f *wishcard.Filter) ([]wishcard.WishCard, error) {
	filter := bson.M{}

	if len(f.IDs) > 0 {
		filter["_id"] = bson.M{"$in": idStrings(f.IDs)}
	}

	if len(f.CreatedBy) > 0 {
		filter["created_by"] = bson.M{"$in": idStrings(f.CreatedBy)}
	}

	if f.ItemNameContains != "" {
		filter["item_name"] = primitive.Regex{
			Pattern: regexp.QuoteMeta(f.ItemNameContains),
			Options: "i",
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})

	docs, err := findAll[wishCardDoc](ctx, s.db.Collection(wishCardsCollection), filter, opts)
	if err != nil {
		return nil, err
	}

	return toWishCards(docs)
}

// SampleWishCards returns up to n randomly selected wish cards.
func (s *Store) SampleWishCards(ctx context.Context, n int) ([]wishcard.WishCard, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: n}}}},
	}

	cur, err := s.db.Collection(wishCardsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapErr(err)
	}

	docs := make([]wishCardDoc, 0)
	err = cur.All(ctx, &docs)
	if err != nil {
		return nil, mapErr(err)
	}

	return toWishCards(docs)
}

func toWishCards(docs []wishCardDoc) ([]wishcard.WishCard, error) {
	out := make([]wishcard.WishCard, 0, len(docs))
	for _, d := range docs {
		c, err := d.toWishCard()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// CreateMessage creates a message in the database.
func (s *Store) CreateMessage(ctx context.Context, m *wishcard.Message) error {
	if m.ID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	_, err := s.db.Collection(messagesCollection).InsertOne(ctx, messageDoc{
		ID:            m.ID.String(),
		WishCardID:    m.WishCardID.String(),
		From:          m.From.String(),
		FromFirstName: m.FromFirstName,
		Text:          m.Text,
		CreatedAt:     utc(m.CreatedAt),
	})
	return mapErr(err)
}

// FindMessages returns the messages of a wish card, oldest first.
func (s *Store) FindMessages(ctx context.Context, wishCardID uuid.UUID) ([]wishcard.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	docs, err := findAll[messageDoc](ctx, s.db.Collection(messagesCollection), bson.M{"wishcard_id": wishCardID.String()}, opts)
	if err != nil {
		return nil, err
	}

	out := make([]wishcard.Message, 0, len(docs))
	for _, d := range docs {
		id, err := parseID(d.ID)
		if err != nil {
			return nil, err
		}

		from, err := parseID(d.From)
		if err != nil {
			return nil, err
		}

		out = append(out, wishcard.Message{
			ID:            id,
			WishCardID:    wishCardID,
			From:          from,
			FromFirstName: d.FromFirstName,
			Text:          d.Text,
			CreatedAt:     d.CreatedAt,
		})
	}

	return out, nil
}
