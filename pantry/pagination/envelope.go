// pagination/envelope.go
package pagination

import "go.mongodb.org/mongo-driver/bson/primitive"

// Identified is implemented by every entity that can be listed.
type Identified interface {
	Identity() primitive.ObjectID
}

// PageInfo describes where the returned items sit in the whole set.
// The cursors are taken from the returned items, never from the request.
type PageInfo struct {
	CurrentStuff    string              `json:"currentStuff"`
	CurrentPage     uint32              `json:"currentPage"`
	FirstCursor     *primitive.ObjectID `json:"firstCursor"`
	LastCursor      *primitive.ObjectID `json:"lastCursor"`
	HasPreviousPage bool                `json:"hasPreviousPage"`
	HasNextPage     bool                `json:"hasNextPage"`
}

// Envelope is the result of one listing call.
type Envelope[T Identified] struct {
	PageInfo     PageInfo `json:"pageInfo"`
	ResCount     ResCount `json:"resCount"`
	CurrentItems []T      `json:"currentItems"`
}

// Assemble packages items (already sorted newest first) into an envelope.
// An empty page carries no cursors.
func Assemble[T Identified](stuff string, page uint32, counts ResCount, items []T) *Envelope[T] {
	if items == nil {
		items = []T{}
	}
	info := PageInfo{
		CurrentStuff:    stuff,
		CurrentPage:     page,
		HasPreviousPage: page > 1,
		HasNextPage:     page < counts.PagesCount,
	}
	if len(items) > 0 {
		first := items[0].Identity()
		last := items[len(items)-1].Identity()
		info.FirstCursor = &first
		info.LastCursor = &last
	}
	return &Envelope[T]{
		PageInfo:     info,
		ResCount:     counts,
		CurrentItems: items,
	}
}
