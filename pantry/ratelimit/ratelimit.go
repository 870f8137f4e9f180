// ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	apperr "github.com/dalemusser/gigboard/pantry/errors"
	"go.uber.org/zap"
)

// CodeRateLimited is the error code written when a client is limited.
const CodeRateLimited = "rate_limited"

// bucket is a token bucket. Callers hold the owning KeyLimiter's lock.
type bucket struct {
	tokens float64
	last   time.Time
}

func (b *bucket) take(now time.Time, rate float64, burst int) bool {
	b.tokens += now.Sub(b.last).Seconds() * rate
	if b.tokens > float64(burst) {
		b.tokens = float64(burst)
	}
	b.last = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// KeyLimiter keeps one token bucket per key. Buckets idle longer than ttl
// are swept on later calls.
type KeyLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   int
	ttl     time.Duration
	swept   time.Time
	now     func() time.Time
}

// NewKeyLimiter allows rate requests per second per key with bursts up to
// burst.
func NewKeyLimiter(rate float64, burst int, ttl time.Duration) *KeyLimiter {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &KeyLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Allow consumes one token for key and reports whether one was available.
func (kl *KeyLimiter) Allow(key string) bool {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	now := kl.now()
	if now.Sub(kl.swept) > kl.ttl {
		for k, b := range kl.buckets {
			if now.Sub(b.last) > kl.ttl {
				delete(kl.buckets, k)
			}
		}
		kl.swept = now
	}

	b, ok := kl.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(kl.burst), last: now}
		kl.buckets[key] = b
	}
	return b.take(now, kl.rate, kl.burst)
}

// Size returns the number of tracked keys.
func (kl *KeyLimiter) Size() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.buckets)
}

// ClientIP keys requests by the host part of RemoteAddr. Mount it behind
// chi's RealIP so proxies are accounted for.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// PerMinute limits each client IP to perMinute requests a minute with the
// given burst. Limited requests get 429 and the JSON error envelope. A
// perMinute of zero or less disables limiting.
func PerMinute(perMinute, burst int, logger *zap.Logger) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return Middleware(NewKeyLimiter(float64(perMinute)/60, burst, time.Hour), logger)
}

// Middleware applies limiter per client IP.
func Middleware(limiter *KeyLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	retry := strconv.Itoa(max(1, int(1/limiter.rate)))
	limited := apperr.New(CodeRateLimited, "too many requests", http.StatusTooManyRequests)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)
			if !limiter.Allow(key) {
				logger.Debug("rate limited", zap.String("client", key), zap.String("path", r.URL.Path))
				w.Header().Set("Retry-After", retry)
				apperr.Write(w, limited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
