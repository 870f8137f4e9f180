// auth/jwt/middleware.go
package jwt

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const tokenContextKey contextKey = "jwt_token"

// BearerToken stores the Authorization bearer token, when present, in the
// request context. Verification is left to the operation that needs it.
func BearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := extractBearer(r.Header.Get("Authorization")); tok != "" {
			r = r.WithContext(WithToken(r.Context(), tok))
		}
		next.ServeHTTP(w, r)
	})
}

// WithToken returns a context carrying token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFrom returns the bearer token stored by BearerToken, or "".
func TokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(tokenContextKey).(string)
	return tok
}

func extractBearer(header string) string {
	const scheme = "bearer "
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return ""
	}
	return strings.TrimSpace(header[len(scheme):])
}
