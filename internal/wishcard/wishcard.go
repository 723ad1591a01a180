// Package wishcard manages the wish cards partners create for children,
// and the messages donors leave on them.
package wishcard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/donatewisely/donatewisely/internal/errorz"
	"github.com/donatewisely/donatewisely/internal/storage"
	"github.com/google/uuid"
)

// RandomCount is the number of cards shown on the home page.
const RandomCount = 3

var ErrUnknownCard = errors.New("unknown wish card")

type WishCard struct {
	ID             uuid.UUID
	ChildFirstName string
	ChildLastName  string
	ChildBirthday  time.Time
	ChildInterest  string
	ChildStory     string
	WishItemName   string
	WishItemPrice  Cents
	WishItemURL    string
	ImageURL       string
	CreatedBy      uuid.UUID
	CreatedAt      time.Time
}

// Message is a message left by a donor on a wish card.
type Message struct {
	ID         uuid.UUID
	WishCardID uuid.UUID
	From       uuid.UUID
	// FromFirstName is the first name of the sender at the time of sending.
	FromFirstName string
	Text          string
	CreatedAt     time.Time
}

// Filter is used to filter wish cards.
// Returned cards must match all the provided fields.
// If a field is empty, it's ignored.
type Filter struct {
	IDs       []uuid.UUID
	CreatedBy []uuid.UUID
	// ItemNameContains matches item names containing the text, case insensitive.
	// The text is matched literally.
	ItemNameContains string
}

type Store interface {
	CreateWishCard(ctx context.Context, c *WishCard) error
	FindWishCards(ctx context.Context, filter *Filter) ([]WishCard, error)
	// SampleWishCards returns up to n randomly selected cards.
	SampleWishCards(ctx context.Context, n int) ([]WishCard, error)
	CreateMessage(ctx context.Context, m *Message) error
	// FindMessages returns the messages for a card, oldest first.
	FindMessages(ctx context.Context, wishCardID uuid.UUID) ([]Message, error)
}

type Service struct {
	store    Store
	uploader storage.Uploader

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(s Store, u storage.Uploader) *Service {
	return &Service{
		store:    s,
		uploader: u,
		NowFunc:  time.Now,
	}
}

// NewWishCard is the input for creating a wish card.
type NewWishCard struct {
	ChildFirstName string       `schema:"childFirstName"`
	ChildLastName  string       `schema:"childLastName"`
	ChildBirthday  time.Time    `schema:"childBirthday"`
	ChildInterest  string       `schema:"childInterest"`
	ChildStory     string       `schema:"childStory"`
	WishItemName   string       `schema:"wishItemName"`
	WishItemPrice  Cents        `schema:"wishItemPrice"`
	WishItemURL    string       `schema:"wishItemURL"`
	Image          storage.File `schema:"-"`
	CreatedBy      uuid.UUID    `schema:"-"`
}

// Create checks and uploads the image, then stores the card.
func (s *Service) Create(ctx context.Context, in NewWishCard) (WishCard, error) {
	err := storage.CheckImage(in.Image)
	if err != nil {
		return WishCard{}, err
	}

	id := uuid.New()
	key := "wishcards/" + id.String() + storage.Ext(in.Image)

	loc, err := s.uploader.Upload(ctx, key, in.Image)
	if err != nil {
		return WishCard{}, fmt.Errorf("failed to upload image: %w", err)
	}

	c := WishCard{
		ID:             id,
		ChildFirstName: strings.TrimSpace(in.ChildFirstName),
		ChildLastName:  strings.TrimSpace(in.ChildLastName),
		ChildBirthday:  in.ChildBirthday,
		ChildInterest:  strings.TrimSpace(in.ChildInterest),
		ChildStory:     strings.TrimSpace(in.ChildStory),
		WishItemName:   strings.TrimSpace(in.WishItemName),
		WishItemPrice:  in.WishItemPrice,
		WishItemURL:    strings.TrimSpace(in.WishItemURL),
		ImageURL:       loc,
		CreatedBy:      in.CreatedBy,
		CreatedAt:      s.NowFunc(),
	}

	err = s.store.CreateWishCard(ctx, &c)
	if err != nil {
		delErr := s.uploader.Delete(ctx, key)
		if delErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to delete orphaned image: %w", delErr))
		}
		return WishCard{}, err
	}

	return c, nil
}

func (s *Service) List(ctx context.Context) ([]WishCard, error) {
	return s.store.FindWishCards(ctx, &Filter{})
}

// Search returns the cards whose item name contains text.
func (s *Service) Search(ctx context.Context, text string) ([]WishCard, error) {
	return s.store.FindWishCards(ctx, &Filter{
		ItemNameContains: strings.TrimSpace(text),
	})
}

func (s *Service) Random(ctx context.Context) ([]WishCard, error) {
	return s.store.SampleWishCards(ctx, RandomCount)
}

// Details is a wish card as shown to a logged in user.
type Details struct {
	Card     WishCard
	Messages []Message
	// Choices are the default messages the viewer can pick from.
	Choices []string
}

// Details returns the card with its messages and the messages the viewer
// can choose from. It returns errorz.ErrNotFound for unknown cards.
func (s *Service) Details(ctx context.Context, id uuid.UUID, viewerFirstName string) (Details, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return Details{}, err
	}

	msgs, err := s.store.FindMessages(ctx, c.ID)
	if err != nil {
		return Details{}, err
	}

	return Details{
		Card:     c,
		Messages: msgs,
		Choices:  DefaultMessages(viewerFirstName, c.ChildFirstName),
	}, nil
}

// NewMessage is the input for posting a message to a wish card.
type NewMessage struct {
	To            uuid.UUID `schema:"messageTo"`
	Text          string    `schema:"message"`
	From          uuid.UUID `schema:"-"`
	FromFirstName string    `schema:"-"`
}

// PostMessage stores a message on a card. It returns ErrUnknownCard if the
// card does not exist.
func (s *Service) PostMessage(ctx context.Context, in NewMessage) (Message, error) {
	_, err := s.find(ctx, in.To)
	if errors.Is(err, errorz.ErrNotFound) {
		return Message{}, ErrUnknownCard
	}
	if err != nil {
		return Message{}, err
	}

	m := Message{
		ID:            uuid.New(),
		WishCardID:    in.To,
		From:          in.From,
		FromFirstName: in.FromFirstName,
		Text:          strings.TrimSpace(in.Text),
		CreatedAt:     s.NowFunc(),
	}

	err = s.store.CreateMessage(ctx, &m)
	if err != nil {
		return Message{}, err
	}

	return m, nil
}

func (s *Service) find(ctx context.Context, id uuid.UUID) (WishCard, error) {
	cards, err := s.store.FindWishCards(ctx, &Filter{
		IDs: []uuid.UUID{id},
	})
	if err != nil {
		return WishCard{}, err
	}

	if len(cards) != 1 {
		return WishCard{}, errorz.ErrNotFound
	}

	return cards[0], nil
}
