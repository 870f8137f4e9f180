package graph

import (
	"context"
	"time"

	"github.com/dalemusser/gigboard/internal/store"
	"github.com/dalemusser/gigboard/pantry/cache"
	"go.uber.org/zap"
)

// Cache keys of the catalog listings.
const (
	keyCategories = "catalog:categories"
	keyTopics     = "catalog:topics"
)

// catalog serves the full category and topic listings through a cache.
// Mutations that change either listing drop its key.
type catalog struct {
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func (c catalog) categories(ctx context.Context, s *store.Store) ([]store.Category, error) {
	return cache.GetOrSetJSON(ctx, c.cache, keyCategories, c.ttl, func() ([]store.Category, error) {
		return s.Categories(ctx)
	})
}

func (c catalog) topics(ctx context.Context, s *store.Store) ([]store.Topic, error) {
	return cache.GetOrSetJSON(ctx, c.cache, keyTopics, c.ttl, func() ([]store.Topic, error) {
		return s.Topics(ctx)
	})
}

// forget drops cached listings after a write. A failure leaves the entry
// to expire on its TTL.
func (c catalog) forget(ctx context.Context, keys ...string) {
	if err := c.cache.Delete(ctx, keys...); err != nil {
		c.logger.Warn("catalog cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
