// middleware/sizelimit.go
package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// LimitBodySize caps request bodies at maxBytes. Zero or less disables the cap.
// Decoders see *http.MaxBytesError once the cap is hit.
func LimitBodySize(maxBytes int64) func(next http.Handler) http.Handler {
	if maxBytes <= 0 {
		return identity
	}
	return chimw.RequestSize(maxBytes)
}

// Compress gzips JSON responses when enabled.
func Compress(enabled bool) func(next http.Handler) http.Handler {
	if !enabled {
		return identity
	}
	return chimw.Compress(5, "application/json")
}
