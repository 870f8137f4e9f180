package store

import (
	"context"
	"sort"
	"strings"

	apperr "github.com/dalemusser/gigboard/pantry/errors"
	"github.com/dalemusser/gigboard/pantry/pagination"
	"github.com/dalemusser/gigboard/pantry/text"
	"github.com/dalemusser/gigboard/pantry/validate"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// byQuotes orders tag-like listings: most quoted first, newest first on ties.
var byQuotes = bson.D{{Key: "quotes", Value: -1}, {Key: "_id", Value: -1}}

// CategorySlug derives the slug of a category from its two names.
func CategorySlug(nameZh, nameEn string) string {
	zh, en := text.Slugify(nameZh), text.Slugify(nameEn)
	switch {
	case zh == en || en == "":
		return zh
	case zh == "":
		return en
	}
	return zh + "-" + en
}

// NewCategory stores a category. Both names are required and the pair, like
// the derived slug, must be unused.
func (s *Store) NewCategory(ctx context.Context, nameZh, nameEn string) (*Category, error) {
	nameZh, nameEn = strings.TrimSpace(nameZh), strings.TrimSpace(nameEn)
	if !validate.NameGiven(nameZh) || !validate.NameGiven(nameEn) {
		return nil, apperr.Validation("category names are required").
			WithDetail("name_zh", nameZh).
			WithDetail("name_en", nameEn)
	}
	slug := CategorySlug(nameZh, nameEn)
	if slug == "" {
		return nil, apperr.Validation("category names yield an empty slug")
	}

	c := Category{ID: s.newID(), NameZh: nameZh, NameEn: nameEn, Slug: slug}
	if err := s.insert(ctx, CollCategories, c, "category already exists"); err != nil {
		return nil, err
	}
	return &c, nil
}

// NewCategoryUser records that a user follows a category.
func (s *Store) NewCategoryUser(ctx context.Context, userID, categoryID primitive.ObjectID) (*CategoryUser, error) {
	cu := CategoryUser{ID: s.newID(), UserID: userID, CategoryID: categoryID}
	if err := s.insert(ctx, CollCategoriesUsers, cu, "user already follows the category"); err != nil {
		return nil, err
	}
	return &cu, nil
}

// CategoryByID returns the category with the given id.
func (s *Store) CategoryByID(ctx context.Context, id primitive.ObjectID) (*Category, error) {
	miss := apperr.NotFound("category does not exist").WithDetail("id", id.Hex())
	return findOne[Category](ctx, s.coll(CollCategories), bson.M{"_id": id}, miss)
}

// CategoryBySlug returns the category with the given slug.
func (s *Store) CategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	miss := apperr.NotFound("category does not exist").WithDetail("slug", slug)
	return findOne[Category](ctx, s.coll(CollCategories), bson.M{"slug": slug}, miss)
}

// Categories returns every category, most quoted first.
func (s *Store) Categories(ctx context.Context) ([]Category, error) {
	return find[Category](ctx, s, CollCategories, "categories", bson.M{}, options.Find().SetSort(byQuotes))
}

// CategoriesByUserID returns the categories a user follows.
func (s *Store) CategoriesByUserID(ctx context.Context, userID primitive.ObjectID) ([]Category, error) {
	ids, err := s.RelatedIDs(ctx, joinCategoriesOfUser, userID)
	if err != nil {
		return nil, err
	}
	filter := pagination.NewFilter().In(pagination.IDField, ids).Doc()
	out, err := find[Category](ctx, s, CollCategories, "categories_by_user", filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quotes > out[j].Quotes })
	return out, nil
}

// CategoriesByUsername returns the categories the named user follows.
func (s *Store) CategoriesByUsername(ctx context.Context, username string) ([]Category, error) {
	u, err := s.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.CategoriesByUserID(ctx, u.ID)
}
