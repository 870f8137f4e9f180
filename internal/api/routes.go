// Package api mounts the gigboard HTTP surface on a router built by
// router.New.
package api

import (
	"net/http"
	"time"

	"github.com/dalemusser/gigboard/metrics"
	"github.com/dalemusser/gigboard/pantry/auth/jwt"
	"github.com/dalemusser/gigboard/pantry/health"
	"github.com/dalemusser/gigboard/pantry/pprof"
	"github.com/dalemusser/gigboard/pantry/ratelimit"
	"github.com/dalemusser/gigboard/pantry/version"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes configures Mount.
type Routes struct {
	// GraphQL serves /graphql. Bearer tokens are lifted into the request
	// context before it runs.
	GraphQL http.Handler

	HealthChecks  map[string]health.Check
	HealthTimeout time.Duration

	// RatePerMinute and RateBurst limit /graphql per client IP. Zero
	// disables limiting.
	RatePerMinute int
	RateBurst     int

	// Profiling mounts /debug/pprof. Keep it off in production.
	Profiling bool

	Logger *zap.Logger
}

// Mount registers /graphql, /health, /version, /metrics and optionally
// /debug/pprof on r.
func Mount(r chi.Router, rt Routes) {
	health.Mount(r, rt.HealthChecks, rt.HealthTimeout, rt.Logger)
	r.Method(http.MethodGet, "/version", version.Handler())
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	if rt.Profiling {
		pprof.Mount(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(ratelimit.PerMinute(rt.RatePerMinute, rt.RateBurst, rt.Logger))
		r.Use(jwt.BearerToken)
		r.Handle("/graphql", rt.GraphQL)
	})
}
