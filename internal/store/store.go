// Package store holds the gigboard entities and the repositories that read
// and write them.
//
// Every repository goes through a Source, which hands out collections by
// name. Production wires MongoSource over a *mongo.Database; tests wire the
// in-memory collections from internal/testutil/memdb.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/gigboard/pantry/crypto"
	apperr "github.com/dalemusser/gigboard/pantry/errors"
	gmongo "github.com/dalemusser/gigboard/pantry/mongo"
	"github.com/dalemusser/gigboard/pantry/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names.
const (
	CollUsers           = "users"
	CollProjects        = "projects"
	CollCategories      = "categories"
	CollCategoriesUsers = "categories_users"
	CollTopics          = "topics"
	CollTopicLinks      = "topics_users_projects"
	CollFiles           = "files"
	CollProjectsFiles   = "projects_files"
	CollWishes          = "wishes"
)

// Collection is the subset of *mongo.Collection the repositories use.
type Collection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

// Source returns the collection with the given name.
type Source func(name string) Collection

// MongoSource serves collections from db.
func MongoSource(db *mongo.Database) Source {
	return func(name string) Collection { return db.Collection(name) }
}

// Options tunes a Store. Zero values fall back to the defaults below.
type Options struct {
	DupWindow   time.Duration
	FreshWindow time.Duration
	Hasher      crypto.Hasher
	Logger      *zap.Logger
	Clock       func() time.Time
}

// Defaults for Options.
const (
	DefaultDupWindow   = 48 * time.Hour
	DefaultFreshWindow = 7 * 24 * time.Hour
)

// Store serves every entity of the board.
type Store struct {
	src    Source
	engine *pagination.Engine
	hasher crypto.Hasher
	logger *zap.Logger
	now    func() time.Time

	dupWindow   time.Duration
	freshWindow time.Duration
}

// New returns a Store reading through src and paging with engine.
func New(src Source, engine *pagination.Engine, opts Options) *Store {
	s := &Store{
		src:         src,
		engine:      engine,
		hasher:      opts.Hasher,
		logger:      opts.Logger,
		now:         opts.Clock,
		dupWindow:   opts.DupWindow,
		freshWindow: opts.FreshWindow,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.hasher.Cost == 0 {
		s.hasher = crypto.NewHasher(crypto.BcryptDefaultCost)
	}
	if s.dupWindow <= 0 {
		s.dupWindow = DefaultDupWindow
	}
	if s.freshWindow <= 0 {
		s.freshWindow = DefaultFreshWindow
	}
	return s
}

// Engine exposes the pagination engine the store lists with.
func (s *Store) Engine() *pagination.Engine { return s.engine }

func (s *Store) coll(name string) Collection { return s.src(name) }

// stamp returns the current time truncated to what BSON dates can hold.
func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// findOne decodes the single document matching filter into T. A miss is
// reported as not_found with the given message and detail.
func findOne[T any](ctx context.Context, c Collection, filter any, miss *apperr.Error, opts ...*options.FindOneOptions) (*T, error) {
	raw, err := c.FindOne(ctx, filter, opts...).Raw()
	if err != nil {
		if gmongo.IsNotFound(err) {
			return nil, miss
		}
		return nil, fmt.Errorf("find one: %w", err)
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, apperr.Decode("stored record does not fit its entity").
			WithDetail("id", pagination.RawID(raw)).
			Wrap(err)
	}
	return &out, nil
}

// findAll decodes every document a cursor yields. Records that fail to
// decode are logged and skipped, as paginated listings do.
func findAll[T any](ctx context.Context, s *Store, what string, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)
	out := make([]T, 0)
	for cur.Next(ctx) {
		var item T
		if err := cur.Decode(&item); err != nil {
			s.logger.Warn("skipping undecodable record",
				zap.String("listing", what),
				zap.String("id", pagination.RawID(cur.Current)),
				zap.Error(err),
			)
			continue
		}
		out = append(out, item)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", what, err)
	}
	return out, nil
}

// find runs a Find and decodes the result with findAll.
func find[T any](ctx context.Context, s *Store, coll, what string, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := s.coll(coll).Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", what, err)
	}
	return findAll[T](ctx, s, what, cur)
}

// insert stores doc in coll. Duplicate keys become already_exists.
func (s *Store) insert(ctx context.Context, coll string, doc any, conflict string) error {
	if _, err := s.coll(coll).InsertOne(ctx, doc); err != nil {
		if gmongo.IsDup(err) {
			return apperr.AlreadyExists(conflict).Wrap(err)
		}
		return fmt.Errorf("insert into %s: %w", coll, err)
	}
	return nil
}

// newID returns a fresh id. Ids grow with insertion order, which is what
// every newest-first listing sorts on.
func (s *Store) newID() primitive.ObjectID {
	return primitive.NewObjectID()
}
