// pagination/count.go
package pagination

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo/options"
)

// Counter counts documents matching a filter.
type Counter interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// ResCount holds the size of the whole matching set.
type ResCount struct {
	PagesCount uint32 `json:"pagesCount"`
	TotalCount uint64 `json:"totalCount"`
}

// PagesCount returns ceil(total / pageSize). A total of zero yields zero
// pages. A non-positive page size is treated as one item per page.
func PagesCount(total uint64, pageSize int64) uint32 {
	if pageSize < 1 {
		pageSize = 1
	}
	size := uint64(pageSize)
	return uint32((total + size - 1) / size)
}

// Count counts filter in c and derives the page count.
//
// The filter must be the snapshot taken before any cursor bound was added,
// otherwise the page count describes the window instead of the whole set.
func Count(ctx context.Context, c Counter, filter Filter, pageSize int64) (ResCount, error) {
	n, err := c.CountDocuments(ctx, filter.Doc())
	if err != nil {
		return ResCount{}, fmt.Errorf("count: %w", err)
	}
	if n < 0 {
		n = 0
	}
	total := uint64(n)
	return ResCount{
		PagesCount: PagesCount(total, pageSize),
		TotalCount: total,
	}, nil
}
