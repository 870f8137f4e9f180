// pagination/status.go
package pagination

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// StatusKind discriminates the variants of StatusFilter.
type StatusKind uint8

const (
	// NoConstraint matches records of every status, negative ones included.
	NoConstraint StatusKind = iota
	// AtLeast matches records whose status is >= Value.
	AtLeast
	// Exactly matches records whose status equals Value.
	Exactly
)

// StatusFilter is the moderation-state constraint of a listing.
//
// Positive thresholds act as quality gates (published >= 1, recommended >= 2,
// managed >= 6); exact values select moderation states such as banned (-1).
// Build one with AnyStatus, StatusAtLeast, StatusExactly, or decode the signed
// wire value once with StatusFromCode.
type StatusFilter struct {
	Kind  StatusKind
	Value int32
}

// AnyStatus returns the filter that places no constraint on status.
func AnyStatus() StatusFilter {
	return StatusFilter{Kind: NoConstraint}
}

// StatusAtLeast returns a filter matching status >= n.
func StatusAtLeast(n int32) StatusFilter {
	return StatusFilter{Kind: AtLeast, Value: n}
}

// StatusExactly returns a filter matching status == n.
func StatusExactly(n int32) StatusFilter {
	return StatusFilter{Kind: Exactly, Value: n}
}

// StatusFromCode decodes the signed integer used on the wire:
// 0 means no constraint, a positive value means "at least", and a negative
// value means "exactly".
func StatusFromCode(code int) StatusFilter {
	switch {
	case code > 0:
		return StatusAtLeast(int32(code))
	case code < 0:
		return StatusExactly(int32(code))
	default:
		return AnyStatus()
	}
}

// Predicate returns the value to store under the status field, and false
// when the filter places no constraint and the field must be omitted.
func (s StatusFilter) Predicate() (any, bool) {
	switch s.Kind {
	case AtLeast:
		return bson.M{"$gte": s.Value}, true
	case Exactly:
		return s.Value, true
	default:
		return nil, false
	}
}

// Matches reports whether a record with the given status passes the filter.
func (s StatusFilter) Matches(status int32) bool {
	switch s.Kind {
	case AtLeast:
		return status >= s.Value
	case Exactly:
		return status == s.Value
	default:
		return true
	}
}

func (s StatusFilter) String() string {
	switch s.Kind {
	case AtLeast:
		return fmt.Sprintf("status>=%d", s.Value)
	case Exactly:
		return fmt.Sprintf("status==%d", s.Value)
	default:
		return "status:any"
	}
}
