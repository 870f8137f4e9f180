// retry/retry.go
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Config is an exponential backoff schedule. Zero fields take the
// defaults noted on each field.
type Config struct {
	// MaxAttempts counts the first call. Default 3.
	MaxAttempts int
	// InitialDelay precedes the first retry. Default 100ms.
	InitialDelay time.Duration
	// MaxDelay caps any single wait. Default 30s.
	MaxDelay time.Duration
	// Multiplier grows the delay after each retry. Default 2.
	Multiplier float64
	// Jitter spreads each wait by up to this fraction either way.
	Jitter float64

	// OnRetry runs before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 100 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2
	}
	return c
}

// Do calls fn until it succeeds, returns a Permanent error, attempts run
// out or ctx ends. The last error from fn is returned; a Permanent wrapper
// is removed first.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	_, err := DoWithResult(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoWithResult is Do for functions returning a value.
func DoWithResult[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()
	delay := cfg.InitialDelay

	var zero T
	var last error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if last != nil {
				return zero, last
			}
			return zero, err
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		var p *Permanent
		if errors.As(err, &p) {
			return zero, p.Err
		}
		last = err
		if attempt >= cfg.MaxAttempts {
			return zero, last
		}

		wait := jitter(delay, cfg.Jitter)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, last
		case <-t.C:
		}

		delay = min(time.Duration(float64(delay)*cfg.Multiplier), cfg.MaxDelay)
	}
}

func jitter(d time.Duration, frac float64) time.Duration {
	if frac <= 0 {
		return d
	}
	spread := float64(d) * frac
	return time.Duration(float64(d) - spread + rand.Float64()*2*spread)
}

// Permanent stops Do from retrying.
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

// PermanentError marks err as not worth retrying. Nil stays nil.
func PermanentError(err error) error {
	if err == nil {
		return nil
	}
	return &Permanent{Err: err}
}
