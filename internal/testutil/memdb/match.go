package memdb

import (
	"bytes"
	"reflect"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// match reports whether doc satisfies filter.
func match(doc, filter bson.M) bool {
	for key, cond := range filter {
		switch key {
		case "$and":
			for _, sub := range asList(cond) {
				if !match(doc, sub) {
					return false
				}
			}
			continue
		case "$or":
			hit := false
			for _, sub := range asList(cond) {
				if match(doc, sub) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
			continue
		}

		val, present := doc[key]
		if !matchField(val, present, cond) {
			return false
		}
	}
	return true
}

func asList(v any) []bson.M {
	arr, _ := v.(bson.A)
	out := make([]bson.M, 0, len(arr))
	for _, e := range arr {
		if m, ok := e.(bson.M); ok {
			out = append(out, m)
		}
	}
	return out
}

func matchField(val any, present bool, cond any) bool {
	switch c := cond.(type) {
	case primitive.Regex:
		return matchRegex(val, c.Pattern, c.Options)
	case bson.M:
		if isOperatorDoc(c) {
			return matchOperators(val, present, c)
		}
	}
	if cond == nil {
		return !present || val == nil
	}
	return equal(val, cond)
}

func isOperatorDoc(m bson.M) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

func matchOperators(val any, present bool, ops bson.M) bool {
	for op, arg := range ops {
		switch op {
		case "$eq":
			if !equal(val, arg) {
				return false
			}
		case "$ne":
			if present && equal(val, arg) {
				return false
			}
		case "$gt", "$gte", "$lt", "$lte":
			if !present {
				return false
			}
			c, ok := compare(val, arg)
			if !ok {
				return false
			}
			switch op {
			case "$gt":
				if c <= 0 {
					return false
				}
			case "$gte":
				if c < 0 {
					return false
				}
			case "$lt":
				if c >= 0 {
					return false
				}
			case "$lte":
				if c > 0 {
					return false
				}
			}
		case "$in", "$nin":
			arr, _ := arg.(bson.A)
			found := false
			for _, e := range arr {
				if equal(val, e) {
					found = true
					break
				}
			}
			if found != (op == "$in") {
				return false
			}
		case "$exists":
			want, _ := arg.(bool)
			if present != want {
				return false
			}
		case "$regex":
			pattern := ""
			switch p := arg.(type) {
			case string:
				pattern = p
			case primitive.Regex:
				pattern = p.Pattern
			}
			opts, _ := ops["$options"].(string)
			if !matchRegex(val, pattern, opts) {
				return false
			}
		case "$options":
		default:
			return false
		}
	}
	return true
}

func matchRegex(val any, pattern, options string) bool {
	s, ok := val.(string)
	if !ok {
		return false
	}
	if strings.Contains(options, "i") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// compare orders two values of the same BSON family. ok is false when they
// are not comparable.
func compare(a, b any) (int, bool) {
	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	switch x := a.(type) {
	case primitive.ObjectID:
		y, ok := b.(primitive.ObjectID)
		if !ok {
			return 0, false
		}
		return bytes.Compare(x[:], y[:]), true
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case primitive.DateTime:
		y, ok := b.(primitive.DateTime)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if x == y {
			return 0, true
		}
		if !x {
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
