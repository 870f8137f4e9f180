package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFrom(t *testing.T) {
	nf := NotFound("topic does not exist").WithDetail("slug", "go")
	wrapped := fmt.Errorf("projects by topic: %w", nf)

	if got := From(wrapped); got != nf {
		t.Errorf("From(wrapped) = %v, want the wrapped *Error", got)
	}

	plain := From(fmt.Errorf("boom"))
	if plain.Code != CodeInternalError || plain.HTTPStatus() != http.StatusInternalServerError {
		t.Errorf("From(plain) = %+v, want internal error", plain)
	}

	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("insert: %w", AlreadyExists("email taken"))
	if !HasCode(err, CodeAlreadyExists) {
		t.Error("HasCode should see through wrapping")
	}
	if HasCode(err, CodeNotFound) {
		t.Error("HasCode matched the wrong code")
	}
}

func TestExtensions(t *testing.T) {
	e := AuthenticationFailed("sign_in_not_activated", "account not activated").
		WithDetail("user_id", "65f0c0ffee")

	ext := e.Extensions()
	if ext["code"] != "sign_in_not_activated" {
		t.Errorf("code = %v, want sign_in_not_activated", ext["code"])
	}
	if ext["user_id"] != "65f0c0ffee" {
		t.Errorf("user_id = %v, want 65f0c0ffee", ext["user_id"])
	}
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", Validation("bad boundary"), http.StatusBadRequest, CodeValidationFailed},
		{"conflict", AlreadyExists("dup"), http.StatusConflict, CodeAlreadyExists},
		{"plain", fmt.Errorf("db down"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Write(rec, tt.err)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var resp struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if resp.Error.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Error.Code, tt.code)
			}
		})
	}
}
