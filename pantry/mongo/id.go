// pantry/mongo/id.go
package mongo

import (
	"strings"

	apperr "github.com/dalemusser/gigboard/pantry/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID parses a hex ObjectID received from a caller. Anything that is not
// a 24-digit hex id yields a validation error naming field.
func ParseID(field, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("malformed id").
			WithDetail("field", field).
			WithDetail("value", raw).
			Wrap(err)
	}
	return id, nil
}
