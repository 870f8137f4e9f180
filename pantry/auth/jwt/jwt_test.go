package jwt

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec("gigboard", []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestEncodeDecode(t *testing.T) {
	c := newTestCodec(t)

	tok, err := c.Encode("ann@example.com", "ann")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	claims, err := c.Decode(tok)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Email != "ann@example.com" || claims.Username != "ann" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("ExpiresAt not set")
	}
	if d := time.Until(claims.ExpiresAt.Time); d < 59*time.Minute || d > time.Hour {
		t.Errorf("expiry in %s, want about 1h", d)
	}
}

func TestHeader(t *testing.T) {
	c := newTestCodec(t)
	tok, _ := c.Encode("ann@example.com", "ann")

	parsed, _, err := gojwt.NewParser().ParseUnverified(tok, &Claims{})
	if err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if parsed.Header["alg"] != "HS512" {
		t.Errorf("alg = %v, want HS512", parsed.Header["alg"])
	}
	if parsed.Header["kid"] != "gigboard" {
		t.Errorf("kid = %v, want gigboard", parsed.Header["kid"])
	}
}

func TestDecodeRejects(t *testing.T) {
	c := newTestCodec(t)
	good, _ := c.Encode("ann@example.com", "ann")

	past := c.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, _ := past.Encode("ann@example.com", "ann")

	other, _ := NewCodec("other", []byte("test-secret"), time.Hour)
	wrongKid, _ := other.Encode("ann@example.com", "ann")

	parts := strings.Split(good, ".")
	expParts := strings.Split(expired, ".")
	tampered := parts[0] + "." + expParts[1] + "." + parts[2]

	otherKey, _ := NewCodec("gigboard", []byte("another-secret"), time.Hour)
	wrongKey, _ := otherKey.Encode("ann@example.com", "ann")

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrInvalidToken},
		{"garbage", "not.a.token", ErrInvalidToken},
		{"tampered", tampered, ErrInvalidToken},
		{"expired", expired, ErrTokenExpired},
		{"wrong kid", wrongKid, ErrInvalidToken},
		{"wrong key", wrongKey, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.token)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewCodecValidation(t *testing.T) {
	if _, err := NewCodec("k", nil, time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("empty key error = %v, want ErrMissingSecret", err)
	}
	if _, err := NewCodec("k", []byte("s"), 0); err == nil {
		t.Error("zero ttl should be rejected")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer   abc", "abc"},
		{"Basic dXNlcg==", ""},
		{"Bearer ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		var got string
		h := BearerToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = TokenFrom(r.Context())
		}))
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{}"))
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
		if got != tt.want {
			t.Errorf("header %q: token = %q, want %q", tt.header, got, tt.want)
		}
	}
}
