// pantry/mongo/errors.go
package mongo

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

const duplicateKeyCode = 11000

// IsDup reports whether err is a Mongo duplicate-key error (E11000).
// It handles WriteException, BulkWriteException and CommandError, and
// falls back to the server message text.
func IsDup(err error) bool {
	if err == nil {
		return false
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, we := range bwe.WriteErrors {
			if we.Code == duplicateKeyCode {
				return true
			}
		}
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == duplicateKeyCode {
				return true
			}
		}
		if we.WriteConcernError != nil && we.WriteConcernError.Code == duplicateKeyCode {
			return true
		}
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == duplicateKeyCode {
		return true
	}

	s := strings.ToLower(err.Error())
	return strings.Contains(s, "e11000") || strings.Contains(s, "duplicate key")
}

// IsNotFound reports whether err means a single-document lookup matched
// nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
