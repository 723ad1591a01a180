package sqlite

import (
	"context"
	"fmt"

	"github.com/donatewisely/donatewisely/internal/db"
	"github.com/donatewisely/donatewisely/internal/errorz"
	"github.com/donatewisely/donatewisely/internal/wishcard"
	"github.com/google/uuid"
)

const wishCardColumns = `id, child_first_name, child_last_name, child_birthday, child_interest, child_story, item_name, item_price_cents, item_url, image_url, created_by, created_at`

// CreateWishCard creates a wish card in the database.
func (s *Store) CreateWishCard(ctx context.Context, c *wishcard.WishCard) error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	var q db.Query
	q.Unsafe(`INSERT INTO wishcards (` + wishCardColumns + `) VALUES (`)
	q.Params(
		c.ID,
		c.ChildFirstName,
		c.ChildLastName,
		c.ChildBirthday.UTC(),
		c.ChildInterest,
		c.ChildStory,
		c.WishItemName,
		c.WishItemPrice,
		c.WishItemURL,
		c.ImageURL,
		c.CreatedBy,
		c.CreatedAt.UTC(),
	)
	q.Unsafe(`)`)

	query, params := q.Get()

	_, err := s.write.ExecContext(ctx, query, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

// FindWishCards queries for wish cards based on the provided filter,
// newest first. It returns an empty slice if no cards are found.
func (s *Store) FindWishCards(ctx context.Context, f *wishcard.Filter) ([]wishcard.WishCard, error) {
	var q db.Query
	q.Unsafe(`SELECT ` + wishCardColumns + ` FROM wishcards WHERE 1=1 `)

	if len(f.IDs) > 0 {
		q.Unsafe(`AND id IN (`)
		q.Params(anySlice(f.IDs)...)
		q.Unsafe(`) `)
	}

	if len(f.CreatedBy) > 0 {
		q.Unsafe(`AND created_by IN (`)
		q.Params(anySlice(f.CreatedBy)...)
		q.Unsafe(`) `)
	}

	if f.ItemNameContains != "" {
		q.Unsafe(`AND item_name LIKE `)
		q.Param("%" + db.EscapeLike(f.ItemNameContains) + "%")
		q.Unsafe(` ESCAPE '\' `)
	}

	q.Unsafe(`ORDER BY created_at DESC, id ASC`)

	query, params := q.Get()
	return s.queryWishCards(ctx, query, params)
}

// SampleWishCards returns up to n randomly selected wish cards.
func (s *Store) SampleWishCards(ctx context.Context, n int) ([]wishcard.WishCard, error) {
	var q db.Query
	q.Unsafe(`SELECT ` + wishCardColumns + ` FROM wishcards ORDER BY RANDOM() LIMIT `)
	q.Param(n)

	query, params := q.Get()
	return s.queryWishCards(ctx, query, params)
}

func (s *Store) queryWishCards(ctx context.Context, query string, params []any) ([]wishcard.WishCard, error) {
	rows, err := s.read.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]wishcard.WishCard, 0)
	for rows.Next() {
		var c wishcard.WishCard
		err := rows.Scan(
			&c.ID,
			&c.ChildFirstName,
			&c.ChildLastName,
			&c.ChildBirthday,
			&c.ChildInterest,
			&c.ChildStory,
			&c.WishItemName,
			&c.WishItemPrice,
			&c.WishItemURL,
			&c.ImageURL,
			&c.CreatedBy,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
}

// CreateMessage creates a message in the database.
func (s *Store) CreateMessage(ctx context.Context, m *wishcard.Message) error {
	if m.ID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	var q db.Query
	q.Unsafe(`INSERT INTO messages (id, wishcard_id, from_user, from_first_name, text, created_at) VALUES (`)
	q.Params(m.ID, m.WishCardID, m.From, m.FromFirstName, m.Text, m.CreatedAt.UTC())
	q.Unsafe(`)`)

	query, params := q.Get()

	_, err := s.write.ExecContext(ctx, query, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

// FindMessages returns the messages of a wish card, oldest first.
func (s *Store) FindMessages(ctx context.Context, wishCardID uuid.UUID) ([]wishcard.Message, error) {
	var q db.Query
	q.Unsafe(`SELECT id, wishcard_id, from_user, from_first_name, text, created_at FROM messages WHERE wishcard_id = `)
	q.Param(wishCardID)
	q.Unsafe(` ORDER BY created_at ASC, id ASC`)

	query, params := q.Get()

	rows, err := s.read.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]wishcard.Message, 0)
	for rows.Next() {
		var m wishcard.Message
		err := rows.Scan(&m.ID, &m.WishCardID, &m.From, &m.FromFirstName, &m.Text, &m.CreatedAt)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
}
