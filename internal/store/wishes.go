package store

import (
	"context"
	"strings"

	apperr "github.com/dalemusser/gigboard/pantry/errors"
	"github.com/dalemusser/gigboard/pantry/validate"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var newestFirst = bson.D{{Key: "_id", Value: -1}}

// NewWish stores an unpublished wish. A user may share an aphorism once.
func (s *Store) NewWish(ctx context.Context, userID primitive.ObjectID, aphorism, author string) (*Wish, error) {
	aphorism = strings.TrimSpace(aphorism)
	if !validate.NameGiven(aphorism) {
		return nil, apperr.Validation("aphorism is empty")
	}
	now := s.stamp()
	w := Wish{
		ID:        s.newID(),
		UserID:    userID,
		Aphorism:  aphorism,
		Author:    strings.TrimSpace(author),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.insert(ctx, CollWishes, w, "wish already exists"); err != nil {
		return nil, err
	}
	return &w, nil
}

// Wishes returns wishes newest first. published > 0 keeps published ones,
// < 0 keeps unpublished ones and 0 keeps all.
func (s *Store) Wishes(ctx context.Context, published int) ([]Wish, error) {
	return find[Wish](ctx, s, CollWishes, "wishes", publishedFilter(bson.M{}, published), options.Find().SetSort(newestFirst))
}

// WishesByUserID returns the wishes of one user, filtered like Wishes.
func (s *Store) WishesByUserID(ctx context.Context, userID primitive.ObjectID, published int) ([]Wish, error) {
	filter := publishedFilter(bson.M{"user_id": userID}, published)
	return find[Wish](ctx, s, CollWishes, "wishes_by_user", filter, options.Find().SetSort(newestFirst))
}

func publishedFilter(f bson.M, published int) bson.M {
	switch {
	case published > 0:
		f["published"] = true
	case published < 0:
		f["published"] = false
	}
	return f
}

// RandomWish picks a published wish. With a username ("" or "-" meaning
// none) it prefers that user's wishes and falls back to anyone's.
func (s *Store) RandomWish(ctx context.Context, username string) (*Wish, error) {
	if validate.NameGiven(username) {
		u, err := s.UserByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		w, err := sampleOne[Wish](ctx, s.coll(CollWishes), bson.M{"published": true, "user_id": u.ID})
		if err != nil || w != nil {
			return w, err
		}
	}
	w, err := sampleOne[Wish](ctx, s.coll(CollWishes), bson.M{"published": true})
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperr.NotFound("no published wish")
	}
	return w, nil
}
