// middleware/cors.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/gigboard/config"
	"github.com/go-chi/cors"
)

// API clients send a bearer token and a JSON body; nothing else is needed
// unless configured.
var (
	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	defaultCORSHeaders = []string{"Authorization", "Content-Type"}
)

// CORS returns go-chi/cors configured from cfg, or an identity middleware
// when CORS is disabled.
func CORS(cfg config.CORSConfig) func(next http.Handler) http.Handler {
	if !cfg.EnableCORS {
		return identity
	}

	methods := cfg.CORSAllowedMethods
	if len(methods) == 0 {
		methods = defaultCORSMethods
	}
	headers := cfg.CORSAllowedHeaders
	if len(headers) == 0 {
		headers = defaultCORSHeaders
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   methods,
		AllowedHeaders:   headers,
		ExposedHeaders:   cfg.CORSExposedHeaders,
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           cfg.CORSMaxAge,
	})
}

func identity(next http.Handler) http.Handler { return next }
