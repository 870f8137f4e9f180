// Command gigboard serves the job board GraphQL API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dalemusser/gigboard/app"
	"github.com/dalemusser/gigboard/config"
	"github.com/dalemusser/gigboard/internal/api"
	"github.com/dalemusser/gigboard/internal/graph"
	"github.com/dalemusser/gigboard/internal/settings"
	"github.com/dalemusser/gigboard/internal/store"
	"github.com/dalemusser/gigboard/pantry/auth/jwt"
	"github.com/dalemusser/gigboard/pantry/cache"
	"github.com/dalemusser/gigboard/pantry/email"
	"github.com/dalemusser/gigboard/pantry/health"
	pmongo "github.com/dalemusser/gigboard/pantry/mongo"
	"github.com/dalemusser/gigboard/pantry/pagination"
	"github.com/dalemusser/gigboard/pantry/retry"
	"github.com/dalemusser/gigboard/router"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// backend is what ConnectDB hands to the later hooks.
type backend struct {
	client *mongo.Client
	db     *mongo.Database
	redis  *redis.Client // nil without redis_url
}

func (b *backend) close(ctx context.Context) error {
	var errs []error
	if b.redis != nil {
		errs = append(errs, b.redis.Close())
	}
	errs = append(errs, b.client.Disconnect(ctx))
	return errors.Join(errs...)
}

func main() {
	hooks := app.Hooks[settings.Settings, *backend]{
		Name:         "gigboard",
		LoadConfig:   loadConfig,
		ConnectDB:    connect,
		EnsureSchema: ensureSchema,
		BuildHandler: buildHandler,
		Close: func(ctx context.Context, b *backend) error {
			return b.close(ctx)
		},
	}
	if err := app.Run(context.Background(), hooks); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(logger *zap.Logger) (*config.CoreConfig, settings.Settings, error) {
	core, values, err := config.Load(logger, pflag.CommandLine, os.Args[1:], settings.Keys())
	if err != nil {
		return nil, settings.Settings{}, err
	}
	s, err := settings.FromValues(values)
	if err != nil {
		return nil, settings.Settings{}, err
	}
	return core, s, nil
}

func connect(ctx context.Context, core *config.CoreConfig, s settings.Settings, logger *zap.Logger) (*backend, error) {
	pool := pmongo.DefaultPoolConfig()
	pool.ConnectTimeout = core.DBConnectTimeout

	backoff := retry.Config{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		Jitter:       0.2,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			logger.Warn("mongo connect failed; retrying",
				zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
		},
	}
	client, err := retry.DoWithResult(ctx, backoff, func(ctx context.Context) (*mongo.Client, error) {
		return pmongo.Connect(ctx, s.MongoURI, pool)
	})
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	logger.Info("connected to mongo", zap.String("database", s.MongoDatabase))
	b := &backend{client: client, db: client.Database(s.MongoDatabase)}

	if s.RedisURL != "" {
		rctx, cancel := context.WithTimeout(ctx, core.DBConnectTimeout)
		defer cancel()
		b.redis, err = cache.Dial(rctx, s.RedisURL)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		logger.Info("connected to redis catalog cache")
	}
	return b, nil
}

func ensureSchema(ctx context.Context, _ *config.CoreConfig, _ settings.Settings, b *backend, logger *zap.Logger) error {
	return store.EnsureIndexes(ctx, b.db, logger)
}

func buildHandler(core *config.CoreConfig, s settings.Settings, b *backend, logger *zap.Logger) (http.Handler, error) {
	codec, err := jwt.NewCodec(s.SiteKID, []byte(s.SiteKey), s.ClaimTTL)
	if err != nil {
		return nil, err
	}

	st := store.New(
		store.MongoSource(b.db),
		pagination.NewEngine(s.PageSize, logger.Named("pagination")),
		store.Options{
			DupWindow:   s.DupWindow,
			FreshWindow: s.FreshWindow,
			Logger:      logger.Named("store"),
		},
	)
	if !s.Mail.Enabled() {
		logger.Warn("smtp_host not set; activation mail disabled")
	}

	checks := map[string]health.Check{"mongo": pmongo.Pinger(b.client)}
	var catalog cache.Cache = cache.NewMemory()
	if b.redis != nil {
		rc := cache.NewRedis(b.redis, "gigboard:")
		catalog = rc
		checks["redis"] = rc.Ping
	}

	schema, err := graph.NewSchema(graph.Config{
		Store:      st,
		Codec:      codec,
		Mailer:     email.NewSender(s.Mail),
		SiteURL:    s.SiteURL,
		Catalog:    catalog,
		CatalogTTL: s.CacheTTL,
		Logger:     logger.Named("graph"),
	})
	if err != nil {
		return nil, fmt.Errorf("graphql schema: %w", err)
	}

	r := router.New(core, logger)
	api.Mount(r, api.Routes{
		GraphQL:       graph.NewHandler(schema, logger.Named("graph")),
		HealthChecks:  checks,
		HealthTimeout: 2 * time.Second,
		RatePerMinute: s.RatePerMinute,
		RateBurst:     s.RateBurst,
		Profiling:     core.Env != "prod",
		Logger:        logger,
	})
	return r, nil
}
