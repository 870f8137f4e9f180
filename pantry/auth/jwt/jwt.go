// auth/jwt/jwt.go
package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Claims identify a signed-in user. ExpiresAt is always set by Encode.
type Claims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	gojwt.RegisteredClaims
}

// Common errors.
var (
	ErrInvalidToken  = errors.New("jwt: invalid token")
	ErrTokenExpired  = errors.New("jwt: token expired")
	ErrMissingSecret = errors.New("jwt: missing secret")
	ErrKeyIDMismatch = errors.New("jwt: unknown key id")
)

// Codec mints and verifies HS512 tokens carrying a kid header.
type Codec struct {
	kid string
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewCodec returns a Codec signing with key under the given key id.
// Tokens expire ttl after they are issued.
func NewCodec(kid string, key []byte, ttl time.Duration) (*Codec, error) {
	if len(key) == 0 {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt: ttl must be positive, got %s", ttl)
	}
	return &Codec{kid: kid, key: key, ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of c that reads the time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

// Encode signs a token for the user.
func (c *Codec) Encode(email, username string) (string, error) {
	issued := c.now()
	claims := Claims{
		Email:    email,
		Username: username,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  gojwt.NewNumericDate(issued),
			ExpiresAt: gojwt.NewNumericDate(issued.Add(c.ttl)),
		},
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims)
	token.Header["kid"] = c.kid

	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature, key id and expiry of token and returns
// its claims.
func (c *Codec) Decode(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	_, err := gojwt.ParseWithClaims(token, claims, func(t *gojwt.Token) (interface{}, error) {
		if kid, _ := t.Header["kid"].(string); kid != c.kid {
			return nil, ErrKeyIDMismatch
		}
		return c.key, nil
	},
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS512.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(c.now),
	)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, gojwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}
