// pagination/engine.go
package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/gigboard/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DefaultPageSize is used when an Engine is built with a page size below one.
const DefaultPageSize = 10

// Collection is the slice of a document collection the engine needs.
// *mongo.Collection satisfies it.
type Collection interface {
	Counter
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Engine runs paginated listings with a fixed page size.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	pageSize int64
	logger   *zap.Logger
}

// NewEngine returns an Engine. A nil logger discards output.
func NewEngine(pageSize int64, logger *zap.Logger) *Engine {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{pageSize: pageSize, logger: logger}
}

// PageSize reports the configured number of items per page.
func (e *Engine) PageSize() int64 { return e.pageSize }

// List runs one listing named stuff over coll.
//
// The status filter of req is applied to base, the whole set is counted,
// the window is resolved and fetched newest first, and the envelope is
// assembled from what came back. Records that fail to decode into T are
// logged and skipped.
func List[T Identified](ctx context.Context, e *Engine, coll Collection, stuff string, base Filter, req Request) (*Envelope[T], error) {
	start := time.Now()
	defer func() { metrics.ObserveListing(stuff, time.Since(start)) }()

	base = base.Clone().Status(req.Status)

	counts, err := Count(ctx, coll, base, e.pageSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stuff, err)
	}

	win := Resolve(req, base)
	items, err := fetch[T](ctx, e, coll, stuff, win)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stuff, err)
	}

	e.logger.Debug("listing served",
		zap.String("listing", stuff),
		zap.Stringer("strategy", win.Strategy),
		zap.Uint32("page", win.Page),
		zap.Int("items", len(items)),
		zap.Uint64("total", counts.TotalCount),
	)
	return Assemble(stuff, win.Page, counts, items), nil
}

func fetch[T Identified](ctx context.Context, e *Engine, coll Collection, stuff string, win Window) ([]T, error) {
	dir := -1
	if win.Ascending {
		dir = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: IDField, Value: dir}}).
		SetLimit(e.pageSize)
	if win.SkipPages > 0 {
		opts.SetSkip(win.SkipPages * e.pageSize)
	}

	cur, err := coll.Find(ctx, win.Filter.Doc(), opts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]T, 0, e.pageSize)
	for cur.Next(ctx) {
		var item T
		if err := cur.Decode(&item); err != nil {
			e.logger.Warn("skipping undecodable record",
				zap.String("listing", stuff),
				zap.String("id", RawID(cur.Current)),
				zap.Error(err),
			)
			metrics.ListingDecodeSkipped(stuff)
			continue
		}
		items = append(items, item)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}

	if win.Ascending {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}
	return items, nil
}

// RawID returns the hex _id of a raw document, or "" when it has none.
func RawID(doc bson.Raw) string {
	if oid, ok := doc.Lookup(IDField).ObjectIDOK(); ok {
		return oid.Hex()
	}
	return ""
}
