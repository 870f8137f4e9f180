package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestKeyLimiter_BurstThenRefill(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	kl := NewKeyLimiter(1, 2, time.Minute)
	kl.now = func() time.Time { return now }

	if !kl.Allow("a") || !kl.Allow("a") {
		t.Fatal("burst of 2 should pass")
	}
	if kl.Allow("a") {
		t.Fatal("third request should be limited")
	}
	if !kl.Allow("b") {
		t.Fatal("keys are independent")
	}

	now = now.Add(time.Second)
	if !kl.Allow("a") {
		t.Error("one token should refill after a second")
	}
}

func TestKeyLimiter_SweepsIdleKeys(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	kl := NewKeyLimiter(1, 1, time.Minute)
	kl.now = func() time.Time { return now }

	kl.Allow("a")
	kl.Allow("b")
	now = now.Add(2 * time.Minute)
	kl.Allow("c")

	if got := kl.Size(); got != 1 {
		t.Errorf("Size = %d, want 1 after sweep", got)
	}
}

func TestPerMinute(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	t.Run("disabled", func(t *testing.T) {
		h := PerMinute(0, 0, nil)(ok)
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("request %d: status %d", i, rec.Code)
			}
		}
	})

	t.Run("limited", func(t *testing.T) {
		h := PerMinute(60, 1, nil)(ok)
		req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
		req.RemoteAddr = "203.0.113.7:5123"

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("first request: status %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("second request: status %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), CodeRateLimited) {
			t.Errorf("body = %s", rec.Body.String())
		}
		if rec.Header().Get("Retry-After") != "1" {
			t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
		}
	})
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	if got := ClientIP(req); got != "2001:db8::1" {
		t.Errorf("ClientIP = %q", got)
	}
	req.RemoteAddr = "unix"
	if got := ClientIP(req); got != "unix" {
		t.Errorf("ClientIP = %q", got)
	}
}
