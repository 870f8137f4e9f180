// Package memdb is an in-memory stand-in for Mongo collections used by tests.
//
// Collections speak the driver's method signatures and hand back real
// *mongo.Cursor and *mongo.SingleResult values, so decoding behaves exactly
// as it does against a server. The query language covered is the subset the
// application emits: equality, $eq $ne $gt $gte $lt $lte $in $nin $exists
// $regex, $and/$or, $set/$inc updates, and $match/$sample/$sort/$limit
// pipelines. Unique indexes are emulated and fail with an E11000 write error.
package memdb

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DB is a set of named collections.
type DB struct {
	mu    sync.Mutex
	colls map[string]*Collection
}

// New returns an empty DB.
func New() *DB {
	return &DB{colls: make(map[string]*Collection)}
}

// Collection returns the named collection, creating it on first use.
func (d *DB) Collection(name string) *Collection {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.colls[name]
	if !ok {
		c = &Collection{name: name}
		d.colls[name] = c
	}
	return c
}

// Collection is an in-memory document collection.
type Collection struct {
	mu     sync.Mutex
	name   string
	docs   []bson.M
	unique [][]string

	// Err, when set, is returned by every operation.
	Err error
}

// Unique declares a unique index over fields.
func (c *Collection) Unique(fields ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unique = append(c.unique, fields)
}

// Seed stores documents without any shape check and returns their ids.
// Documents lacking an _id get a fresh one.
func (c *Collection) Seed(docs ...any) []primitive.ObjectID {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		m, err := toM(d)
		if err != nil {
			panic(fmt.Sprintf("memdb: seed %s: %v", c.name, err))
		}
		id, _ := ensureID(m)
		c.docs = append(c.docs, m)
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of stored documents.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

// Docs returns the stored documents matching filter (nil matches all).
func (c *Collection) Docs(filter any) []bson.M {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, err := toM(filter)
	if err != nil {
		return nil
	}
	var out []bson.M
	for _, d := range c.docs {
		if match(d, f) {
			out = append(out, d)
		}
	}
	return out
}

// CountDocuments implements the driver method.
func (c *Collection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	if err := c.gate(ctx); err != nil {
		return 0, err
	}
	f, err := toM(filter)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, d := range c.docs {
		if match(d, f) {
			n++
		}
	}
	return n, nil
}

// Find implements the driver method. Sort, skip and limit are honored.
func (c *Collection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	if err := c.gate(ctx); err != nil {
		return nil, err
	}
	f, err := toM(filter)
	if err != nil {
		return nil, err
	}
	fo := options.MergeFindOptions(opts...)

	c.mu.Lock()
	out := c.selectLocked(f)
	c.mu.Unlock()

	if fo.Sort != nil {
		if err := sortDocs(out, fo.Sort); err != nil {
			return nil, err
		}
	}
	if fo.Skip != nil {
		out = skip(out, *fo.Skip)
	}
	if fo.Limit != nil && *fo.Limit > 0 && int64(len(out)) > *fo.Limit {
		out = out[:*fo.Limit]
	}
	return cursorOf(out)
}

// FindOne implements the driver method. A miss yields mongo.ErrNoDocuments.
func (c *Collection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	if err := c.gate(ctx); err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, err, nil)
	}
	f, err := toM(filter)
	if err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, err, nil)
	}
	fo := options.MergeFindOneOptions(opts...)

	c.mu.Lock()
	out := c.selectLocked(f)
	c.mu.Unlock()

	if fo.Sort != nil {
		if err := sortDocs(out, fo.Sort); err != nil {
			return mongo.NewSingleResultFromDocument(bson.D{}, err, nil)
		}
	}
	if len(out) == 0 {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(out[0], nil, nil)
}

// InsertOne implements the driver method.
func (c *Collection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if err := c.gate(ctx); err != nil {
		return nil, err
	}
	m, err := toM(document)
	if err != nil {
		return nil, err
	}
	id, _ := ensureID(m)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkUniqueLocked(m, -1); err != nil {
		return nil, err
	}
	c.docs = append(c.docs, m)
	return &mongo.InsertOneResult{InsertedID: id}, nil
}

// UpdateOne implements the driver method for $set and $inc updates.
func (c *Collection) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if err := c.gate(ctx); err != nil {
		return nil, err
	}
	f, err := toM(filter)
	if err != nil {
		return nil, err
	}
	u, err := toM(update)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.docs {
		if !match(d, f) {
			continue
		}
		next := cloneM(d)
		if err := applyUpdate(next, u); err != nil {
			return nil, err
		}
		if err := c.checkUniqueLocked(next, i); err != nil {
			return nil, err
		}
		c.docs[i] = next
		return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}
	return &mongo.UpdateResult{}, nil
}

// DeleteOne implements the driver method.
func (c *Collection) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	if err := c.gate(ctx); err != nil {
		return nil, err
	}
	f, err := toM(filter)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.docs {
		if match(d, f) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return &mongo.DeleteResult{DeletedCount: 1}, nil
		}
	}
	return &mongo.DeleteResult{}, nil
}

// Aggregate implements the driver method for $match, $sample, $sort and
// $limit stages.
func (c *Collection) Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error) {
	if err := c.gate(ctx); err != nil {
		return nil, err
	}
	stages, err := stagesOf(pipeline)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	out := c.selectLocked(bson.M{})
	c.mu.Unlock()

	for _, st := range stages {
		for op, arg := range st {
			switch op {
			case "$match":
				f, err := toM(arg)
				if err != nil {
					return nil, err
				}
				kept := out[:0]
				for _, d := range out {
					if match(d, f) {
						kept = append(kept, d)
					}
				}
				out = kept
			case "$sample":
				spec, _ := arg.(bson.M)
				n, _ := asFloat(spec["size"])
				rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
				if int(n) < len(out) {
					out = out[:int(n)]
				}
			case "$sort":
				spec, _ := arg.(bson.M)
				keys := make(bson.D, 0, len(spec))
				for k, v := range spec {
					keys = append(keys, bson.E{Key: k, Value: v})
				}
				if err := sortDocs(out, keys); err != nil {
					return nil, err
				}
			case "$limit":
				n, _ := asFloat(arg)
				if int(n) < len(out) {
					out = out[:int(n)]
				}
			default:
				return nil, fmt.Errorf("memdb: unsupported stage %s", op)
			}
		}
	}
	return cursorOf(out)
}

func (c *Collection) gate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Err
}

func (c *Collection) selectLocked(f bson.M) []bson.M {
	out := make([]bson.M, 0, len(c.docs))
	for _, d := range c.docs {
		if match(d, f) {
			out = append(out, d)
		}
	}
	return out
}

// checkUniqueLocked fails when m collides with a stored document (other
// than the one at index self) on any unique index.
func (c *Collection) checkUniqueLocked(m bson.M, self int) error {
	for _, fields := range c.unique {
		for i, d := range c.docs {
			if i == self {
				continue
			}
			same := true
			for _, f := range fields {
				if !equal(d[f], m[f]) {
					same = false
					break
				}
			}
			if same {
				return mongo.WriteException{WriteErrors: []mongo.WriteError{{
					Code:    11000,
					Message: fmt.Sprintf("E11000 duplicate key error collection: %s index: %v", c.name, fields),
				}}}
			}
		}
	}
	return nil
}

func cursorOf(docs []bson.M) (*mongo.Cursor, error) {
	items := make([]interface{}, len(docs))
	for i, d := range docs {
		items[i] = d
	}
	return mongo.NewCursorFromDocuments(items, nil, nil)
}

func skip(docs []bson.M, n int64) []bson.M {
	if n <= 0 {
		return docs
	}
	if n >= int64(len(docs)) {
		return nil
	}
	return docs[n:]
}

// toM normalizes any document shape (struct, bson.M, bson.D, named map
// types) into bson.M by a round trip through the codec.
func toM(v any) (bson.M, error) {
	if v == nil {
		return bson.M{}, nil
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("memdb: marshal: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("memdb: unmarshal: %w", err)
	}
	return m, nil
}

func stagesOf(pipeline any) ([]bson.M, error) {
	var raw []any
	switch p := pipeline.(type) {
	case mongo.Pipeline:
		for _, st := range p {
			raw = append(raw, st)
		}
	case []bson.M:
		for _, st := range p {
			raw = append(raw, st)
		}
	case []bson.D:
		for _, st := range p {
			raw = append(raw, st)
		}
	case bson.A:
		raw = p
	case []any:
		raw = p
	default:
		return nil, errors.New("memdb: unsupported pipeline type")
	}
	out := make([]bson.M, 0, len(raw))
	for _, st := range raw {
		m, err := toM(st)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func ensureID(m bson.M) (primitive.ObjectID, bool) {
	if id, ok := m["_id"].(primitive.ObjectID); ok {
		return id, false
	}
	id := primitive.NewObjectID()
	m["_id"] = id
	return id, true
}

func cloneM(m bson.M) bson.M {
	out := make(bson.M, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func applyUpdate(doc, update bson.M) error {
	for op, arg := range update {
		fields, ok := arg.(bson.M)
		if !ok {
			return fmt.Errorf("memdb: %s expects a document", op)
		}
		switch op {
		case "$set":
			for k, v := range fields {
				doc[k] = v
			}
		case "$inc":
			for k, v := range fields {
				doc[k] = add(doc[k], v)
			}
		default:
			return fmt.Errorf("memdb: unsupported update operator %s", op)
		}
	}
	return nil
}

// add keeps the integer width of the stored value when it has one.
func add(cur, delta any) any {
	d, _ := asFloat(delta)
	switch c := cur.(type) {
	case int32:
		return c + int32(d)
	case int64:
		return c + int64(d)
	case float64:
		return c + d
	case nil:
		return delta
	default:
		return delta
	}
}

func sortDocs(docs []bson.M, spec any) error {
	keys, ok := spec.(bson.D)
	if !ok {
		m, isM := spec.(bson.M)
		if !isM || len(m) > 1 {
			return fmt.Errorf("memdb: sort spec must be bson.D, got %T", spec)
		}
		for k, v := range m {
			keys = bson.D{{Key: k, Value: v}}
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			dir, _ := asFloat(k.Value)
			c, _ := compare(docs[i][k.Key], docs[j][k.Key])
			if c == 0 {
				continue
			}
			if dir < 0 {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return nil
}
