// pagination/filter.go
package pagination

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusField is the document field every paginated entity keeps its
// moderation state in.
const StatusField = "status"

// Filter maps a document field to its predicate.
// Builder methods mutate the receiver and return it so calls can be chained:
//
//	f := pagination.NewFilter().
//	    Eq("user_id", uid).
//	    Status(pagination.StatusAtLeast(1))
type Filter bson.M

// NewFilter returns an empty filter.
func NewFilter() Filter {
	return Filter{}
}

// Eq adds an equality predicate.
func (f Filter) Eq(field string, v any) Filter {
	f[field] = v
	return f
}

// In adds a membership predicate. A nil slice matches nothing.
func (f Filter) In(field string, ids []primitive.ObjectID) Filter {
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return f.and(field, "$in", ids)
}

// Range adds min <= field <= max.
func (f Filter) Range(field string, min, max any) Filter {
	f.and(field, "$gte", min)
	return f.and(field, "$lte", max)
}

// AtLeast adds field >= min.
func (f Filter) AtLeast(field string, min any) Filter {
	return f.and(field, "$gte", min)
}

// Contains adds a case-insensitive substring match on field. The term is
// matched literally; regex metacharacters in it carry no meaning.
func (f Filter) Contains(field, term string) Filter {
	f[field] = primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	return f
}

// Exists adds an existence predicate on field.
func (f Filter) Exists(field string, exists bool) Filter {
	return f.and(field, "$exists", exists)
}

// Since adds field >= now - window (a trailing date window).
func (f Filter) Since(field string, window time.Duration, now time.Time) Filter {
	return f.and(field, "$gte", primitive.NewDateTimeFromTime(now.Add(-window)))
}

// Status applies s to the status field. NoConstraint removes any predicate
// already present on the field.
func (f Filter) Status(s StatusFilter) Filter {
	p, ok := s.Predicate()
	if !ok {
		delete(f, StatusField)
		return f
	}
	f[StatusField] = p
	return f
}

// Clone returns a copy that can be extended without touching f.
// Operator maps created by the builder are copied as well.
func (f Filter) Clone() Filter {
	out := make(Filter, len(f))
	for k, v := range f {
		if m, ok := v.(bson.M); ok {
			cp := make(bson.M, len(m))
			for op, arg := range m {
				cp[op] = arg
			}
			v = cp
		}
		out[k] = v
	}
	return out
}

// Doc returns f as a driver document.
func (f Filter) Doc() bson.M {
	return bson.M(f)
}

// and merges an operator into the predicate on field, keeping any operators
// already there. An existing equality predicate is preserved as $eq.
func (f Filter) and(field, op string, arg any) Filter {
	switch cur := f[field].(type) {
	case nil:
		f[field] = bson.M{op: arg}
	case bson.M:
		cur[op] = arg
	default:
		f[field] = bson.M{"$eq": cur, op: arg}
	}
	return f
}
