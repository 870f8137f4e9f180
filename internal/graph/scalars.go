package graph

import (
	"time"

	"github.com/graphql-go/graphql"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectID serializes document ids as 24-digit hex strings. Ids sent by
// callers arrive as String arguments and are parsed by the resolvers, so
// a malformed id fails with a validation_failed code like every other
// input error.
var ObjectID = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "ObjectId",
	Description: "A document id as 24 hex digits.",
	Serialize: func(v interface{}) interface{} {
		switch id := v.(type) {
		case primitive.ObjectID:
			return id.Hex()
		case *primitive.ObjectID:
			if id == nil {
				return nil
			}
			return id.Hex()
		}
		return nil
	},
})

// DateTime serializes timestamps as RFC 3339 in UTC.
var DateTime = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "DateTime",
	Description: "An RFC 3339 timestamp in UTC.",
	Serialize: func(v interface{}) interface{} {
		switch t := v.(type) {
		case time.Time:
			return t.UTC().Format(time.RFC3339)
		case *time.Time:
			if t == nil {
				return nil
			}
			return t.UTC().Format(time.RFC3339)
		}
		return nil
	},
})
