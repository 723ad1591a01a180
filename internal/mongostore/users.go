package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/donatewisely/donatewisely/internal/auth"
	"github.com/donatewisely/donatewisely/internal/email"
	"github.com/donatewisely/donatewisely/internal/errorz"
	"github.com/donatewisely/donatewisely/internal/krypto"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDoc struct {
	ID                 string     `bson:"_id"`
	Email              string     `bson:"email"`
	FirstName          string     `bson:"first_name"`
	LastName           string     `bson:"last_name"`
	PasswordHash       string     `bson:"password_hash"`
	Role               string     `bson:"role"`
	Provider           string     `bson:"provider"`
	EmailVerified      bool       `bson:"email_verified"`
	VerificationDigest string     `bson:"verification_digest"`
	ResetDigest        string     `bson:"reset_digest"`
	ResetExpiresAt     *time.Time `bson:"reset_expires_at"`
	AboutMe            string     `bson:"about_me"`
	CreatedAt          time.Time  `bson:"created_at"`
	UpdatedAt          time.Time  `bson:"updated_at"`
}

func toUserDoc(u *auth.User) userDoc {
	var expires *time.Time
	if u.ResetExpiresAt != nil {
		t := utc(*u.ResetExpiresAt)
		expires = &t
	}

	return userDoc{
		ID:                 u.ID.String(),
		Email:              string(u.Email),
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		PasswordHash:       u.PasswordHash.String(),
		Role:               string(u.Role),
		Provider:           string(u.Provider),
		EmailVerified:      u.EmailVerified,
		VerificationDigest: u.VerificationDigest,
		ResetDigest:        u.ResetDigest,
		ResetExpiresAt:     expires,
		AboutMe:            u.AboutMe,
		CreatedAt:          utc(u.CreatedAt),
		UpdatedAt:          utc(u.UpdatedAt),
	}
}

func (d userDoc) toUser() (auth.User, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return auth.User{}, err
	}

	hash, err := krypto.ParseArgon2Hash(d.PasswordHash)
	if err != nil {
		return auth.User{}, fmt.Errorf("invalid password hash for user %s: %w", d.ID, err)
	}

	role, err := auth.ParseRole(d.Role)
	if err != nil {
		return auth.User{}, err
	}

	provider, err := auth.ParseProvider(d.Provider)
	if err != nil {
		return auth.User{}, err
	}

	return auth.User{
		ID:                 id,
		Email:              email.Address(d.Email),
		FirstName:          d.FirstName,
		LastName:           d.LastName,
		PasswordHash:       hash,
		Role:               role,
		Provider:           provider,
		EmailVerified:      d.EmailVerified,
		VerificationDigest: d.VerificationDigest,
		ResetDigest:        d.ResetDigest,
		ResetExpiresAt:     d.ResetExpiresAt,
		AboutMe:            d.AboutMe,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}, nil
}

// CreateUser creates a user in the database.
// It returns errorz.ErrConstraintViolated if the email is already in use.
func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	if u.ID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	_, err := s.db.Collection(usersCollection).InsertOne(ctx, toUserDoc(u))
	return mapErr(err)
}

// UpdateUser sets only the fields set in u.
// It returns errorz.ErrNotFound if no user is found.
func (s *Store) UpdateUser(ctx context.Context, u auth.UserUpdate) error {
	set := bson.M{"updated_at": utc(u.UpdatedAt)}

	if u.EmailVerified != nil {
		set["email_verified"] = *u.EmailVerified
	}

	if u.AboutMe != nil {
		set["about_me"] = *u.AboutMe
	}

	if u.Reset != nil {
		set["reset_digest"] = u.Reset.Digest
		set["reset_expires_at"] = utc(u.Reset.ExpiresAt)
	}

	res, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": u.ID.String()},
		bson.M{"$set": set},
	)
	if err != nil {
		return mapErr(err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("user not found: %w", errorz.ErrNotFound)
	}

	return nil
}

// FindUsers queries for users based on the provided filter.
// It returns an empty slice if no users are found.
func (s *Store) FindUsers(ctx context.Context, f *auth.UserFilter) ([]auth.User, error) {
	filter := bson.M{}

	if len(f.IDs) > 0 {
		filter["_id"] = bson.M{"$in": idStrings(f.IDs)}
	}

	if len(f.Emails) > 0 {
		emails := make([]string, 0, len(f.Emails))
		for _, e := range f.Emails {
			emails = append(emails, string(e))
		}
		filter["email"] = bson.M{"$in": emails}
	}

	if len(f.VerificationDigests) > 0 {
		filter["verification_digest"] = bson.M{"$in": f.VerificationDigests, "$ne": ""}
	}

	if len(f.ResetDigests) > 0 {
		filter["reset_digest"] = bson.M{"$in": f.ResetDigests, "$ne": ""}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	docs, err := findAll[userDoc](ctx, s.db.Collection(usersCollection), filter, opts)
	if err != nil {
		return nil, err
	}

	out := make([]auth.User, 0, len(docs))
	for _, d := range docs {
		u, err := d.toUser()
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}

	return out, nil
}

// ResetPassword sets the new password hash and clears the reset token in a
// single update, so a token can only be used once.
func (s *Store) ResetPassword(ctx context.Context, r auth.PasswordReset) error {
	res, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{
			"reset_digest":     bson.M{"$eq": r.TokenDigest, "$ne": ""},
			"reset_expires_at": bson.M{"$gt": utc(r.Now)},
		},
		bson.M{"$set": bson.M{
			"password_hash":    r.PasswordHash.String(),
			"reset_digest":     "",
			"reset_expires_at": nil,
			"updated_at":       utc(r.Now),
		}},
	)
	if err != nil {
		return mapErr(err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("no user with valid reset token: %w", errorz.ErrNotFound)
	}

	return nil
}
