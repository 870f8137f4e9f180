package mongo

import (
	"errors"
	"fmt"
	"testing"

	apperr "github.com/dalemusser/gigboard/pantry/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsDup(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"write exception", mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}, true},
		{"other write code", mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 121}}}, false},
		{"wrapped", fmt.Errorf("insert user: %w", mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}), true},
		{"bulk", mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{{WriteError: mongo.WriteError{Code: 11000}}}}, true},
		{"command", mongo.CommandError{Code: 11000}, true},
		{"message only", errors.New("E11000 duplicate key error collection: gigboard.users"), true},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDup(tt.err); got != tt.want {
				t.Errorf("IsDup(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("find user: %w", mongo.ErrNoDocuments)) {
		t.Error("IsNotFound should see through wrapping")
	}
	if IsNotFound(errors.New("timeout")) {
		t.Error("IsNotFound matched an unrelated error")
	}
}

func TestValidateURI(t *testing.T) {
	tests := []struct {
		uri     string
		db      string
		wantErr bool
	}{
		{"mongodb://localhost:27017", "gigboard", false},
		{"mongodb+srv://cluster0.example.net", "gigboard", false},
		{"mongodb://u:p@localhost/gigboard?authSource=admin", "gigboard", false},
		{"mongodb://localhost/", "gigboard", false},
		{"mongodb://localhost/gigboard_old", "gigboard", true},
		{"", "gigboard", true},
		{"postgres://localhost", "gigboard", true},
		{"mongodb://", "gigboard", true},
		{"mongodb://ho\r\nst", "gigboard", true},
	}

	for _, tt := range tests {
		err := ValidateURI(tt.uri, tt.db)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURI(%q, %q) error = %v, wantErr %v", tt.uri, tt.db, err, tt.wantErr)
		}
	}
}

func TestParseID(t *testing.T) {
	if _, err := ParseID("projectId", " 65f0c0ffee65f0c0ffee65f0 "); err != nil {
		t.Errorf("ParseID(valid) = %v", err)
	}
	_, err := ParseID("projectId", "not-an-id")
	if !apperr.HasCode(err, apperr.CodeValidationFailed) {
		t.Errorf("ParseID(bad) = %v, want validation_failed", err)
	}
}
