// pagination/window.go
package pagination

import (
	"strings"

	apperr "github.com/dalemusser/gigboard/pantry/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDField is the ordered id every window is bounded on.
const IDField = "_id"

// unsetBoundary is the placeholder clients send for "no boundary".
const unsetBoundary = "-"

// Boundary is an optional edge id of the page the caller is looking at.
type Boundary struct {
	ID  primitive.ObjectID
	Set bool
}

// NoBoundary returns an unset boundary.
func NoBoundary() Boundary { return Boundary{} }

// BoundaryAt returns a boundary anchored at id.
func BoundaryAt(id primitive.ObjectID) Boundary {
	return Boundary{ID: id, Set: true}
}

// ParseBoundary normalizes a wire boundary. The empty string and "-" both
// mean absent; anything else must be a hex object id.
func ParseBoundary(raw string) (Boundary, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == unsetBoundary {
		return NoBoundary(), nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return Boundary{}, apperr.Validation("malformed boundary id").
			WithDetail("value", raw).
			Wrap(err)
	}
	return BoundaryAt(id), nil
}

// Request is one page request as received from a caller.
type Request struct {
	// Page is the page the caller believes it is on.
	Page uint32

	// First is the first (newest) id of the page being shown; set when the
	// caller travels back toward newer records.
	First Boundary

	// Last is the last (oldest) id of the page being shown; set when the
	// caller travels forward toward older records.
	Last Boundary

	Status StatusFilter
}

// ParseRequest builds a Request from wire values: a page number, the two
// boundary strings, and the signed status code.
func ParseRequest(page int, first, last string, status int) (Request, error) {
	fb, err := ParseBoundary(first)
	if err != nil {
		return Request{}, err
	}
	lb, err := ParseBoundary(last)
	if err != nil {
		return Request{}, err
	}
	if page < 1 {
		page = 1
	}
	return Request{
		Page:   uint32(page),
		First:  fb,
		Last:   lb,
		Status: StatusFromCode(status),
	}, nil
}

// FirstPage returns a request for page one with no boundary.
func FirstPage(status StatusFilter) Request {
	return Request{Page: 1, Status: status}
}

// Strategy names how a window is positioned.
type Strategy uint8

const (
	// FirstLoad: no boundary and page <= 1. Skip nothing.
	FirstLoad Strategy = iota
	// Offset: no boundary and page > 1. Skip page-1 whole pages.
	Offset
	// Backward: first boundary set. Take the page immediately newer than it.
	Backward
	// Forward: last boundary set. Take the page immediately older than it.
	Forward
)

func (s Strategy) String() string {
	switch s {
	case Offset:
		return "offset"
	case Backward:
		return "backward"
	case Forward:
		return "forward"
	default:
		return "first_load"
	}
}

// Window is a resolved page request.
type Window struct {
	Strategy Strategy

	// Page is the page number the returned items belong to.
	Page uint32

	// SkipPages is the number of whole pages to skip. Boundary strategies
	// always skip zero; the id bound does the windowing.
	SkipPages int64

	// Filter is the base filter plus the id bound. The base is not modified.
	Filter Filter

	// Ascending is true when the store must be read oldest-first; the
	// assembler restores newest-first order before returning.
	Ascending bool
}

// Resolve positions a window for req over base.
//
// A first boundary wins over a last boundary when both are set. Bounds are
// exclusive so the edge item of the page being shown is not repeated.
func Resolve(req Request, base Filter) Window {
	page := req.Page
	if page < 1 {
		page = 1
	}
	f := base.Clone()

	switch {
	case req.First.Set:
		prev := page - 1
		if prev < 1 {
			prev = 1
		}
		return Window{
			Strategy:  Backward,
			Page:      prev,
			Filter:    f.and(IDField, "$gt", req.First.ID),
			Ascending: true,
		}
	case req.Last.Set:
		return Window{
			Strategy: Forward,
			Page:     page + 1,
			Filter:   f.and(IDField, "$lt", req.Last.ID),
		}
	case page > 1:
		return Window{
			Strategy:  Offset,
			Page:      page,
			SkipPages: int64(page - 1),
			Filter:    f,
		}
	default:
		return Window{Strategy: FirstLoad, Page: 1, Filter: f}
	}
}
