// errors/http.go
package errors

import (
	"encoding/json"
	"net/http"
)

// Response is the JSON structure returned for errors.
type Response struct {
	Error *Error `json:"error"`
}

// Write writes an error as JSON to the response.
// It sets the appropriate HTTP status code and Content-Type header.
func Write(w http.ResponseWriter, err error) {
	writeError(w, From(err))
}

func writeError(w http.ResponseWriter, e *Error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.HTTPStatus())
	_ = json.NewEncoder(w).Encode(Response{Error: e})
}
