// Package graph exposes the board over GraphQL. It builds a graphql-go
// schema whose resolvers call the store, mints and verifies session tokens,
// and serves the schema over HTTP at /graphql.
//
// Resolver errors reach clients as *errors.Error values so every response
// error carries extensions.code. Internal failures are logged here and
// reported without their cause.
package graph

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/gigboard/internal/store"
	"github.com/dalemusser/gigboard/pantry/auth/jwt"
	"github.com/dalemusser/gigboard/pantry/cache"
	"github.com/dalemusser/gigboard/pantry/email"
	apperr "github.com/dalemusser/gigboard/pantry/errors"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

// Config carries the dependencies of the resolvers.
type Config struct {
	Store *store.Store
	Codec *jwt.Codec

	// Mailer sends the activation mail after registration. Nil disables it.
	Mailer email.Mailer

	// SiteURL prefixes the activation link.
	SiteURL string

	// Catalog caches the categories and topics listings. Nil uses a
	// process-local cache.
	Catalog    cache.Cache
	CatalogTTL time.Duration

	Logger *zap.Logger
}

// DefaultCatalogTTL bounds how stale a cached catalog listing can be.
const DefaultCatalogTTL = time.Minute

// Resolver implements every query and mutation.
type Resolver struct {
	store   *store.Store
	codec   *jwt.Codec
	mailer  email.Mailer
	siteURL string
	catalog catalog
	logger  *zap.Logger
	types   *types
}

// NewSchema builds the schema over cfg.
func NewSchema(cfg Config) (graphql.Schema, error) {
	if cfg.Store == nil || cfg.Codec == nil {
		return graphql.Schema{}, errors.New("graph: store and codec are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = cache.NewMemory()
	}
	if cfg.CatalogTTL <= 0 {
		cfg.CatalogTTL = DefaultCatalogTTL
	}
	r := &Resolver{
		store:   cfg.Store,
		codec:   cfg.Codec,
		mailer:  cfg.Mailer,
		siteURL: cfg.SiteURL,
		catalog: catalog{cache: cfg.Catalog, ttl: cfg.CatalogTTL, logger: logger},
		logger:  logger,
	}
	r.types = r.buildTypes()

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    r.queryType(),
		Mutation: r.mutationType(),
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("graph: build schema: %w", err)
	}
	return schema, nil
}

// guard turns resolver errors into client-facing errors.
func (r *Resolver) guard(fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		v, err := fn(p)
		if err != nil {
			return nil, r.fail(p.Info.FieldName, err)
		}
		return v, nil
	}
}

// fail returns the *apperr.Error for err. graphql-go reads extensions only
// from the error value a resolver returns, so the result is never wrapped.
func (r *Resolver) fail(field string, err error) error {
	e := apperr.From(err)
	if e.HTTPStatus() < 500 {
		return e
	}
	r.logger.Error("graphql field failed",
		zap.String("field", field),
		zap.String("code", e.Code),
		zap.Error(err),
	)
	return &apperr.Error{Code: e.Code, Message: e.Message, Status: e.Status, Details: e.Details}
}

// source returns the parent object of a nested field. Single lookups hand
// down pointers and listings hand down values.
func source[T any](p graphql.ResolveParams) (T, error) {
	if v, ok := p.Source.(T); ok {
		return v, nil
	}
	if v, ok := p.Source.(*T); ok && v != nil {
		return *v, nil
	}
	var zero T
	return zero, fmt.Errorf("graph: %s has unexpected parent %T", p.Info.FieldName, p.Source)
}

// claims verifies the token argument, or the bearer token of the request
// when the argument is empty.
func (r *Resolver) claims(p graphql.ResolveParams) (*jwt.Claims, error) {
	token := argString(p.Args, "token")
	if token == "" {
		token = jwt.TokenFrom(p.Context)
	}
	if token == "" {
		return nil, apperr.Unauthorized("a token is required")
	}
	c, err := r.codec.Decode(token)
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperr.Unauthorized("token expired")
	default:
		r.logger.Debug("token rejected", zap.Error(err))
		return nil, apperr.Unauthorized("invalid token")
	}
}
