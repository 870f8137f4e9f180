// app/app.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/gigboard/config"
	"github.com/dalemusser/gigboard/logging"
	"github.com/dalemusser/gigboard/metrics"
	"github.com/dalemusser/gigboard/server"
	"go.uber.org/zap"
)

// Hooks are the steps a service plugs into Run. C is the service's own
// configuration and D the bundle of backends it connects to.
type Hooks[C any, D any] struct {
	// Name is used only in log fields.
	Name string

	// LoadConfig returns the core and service configuration.
	LoadConfig func(logger *zap.Logger) (*config.CoreConfig, C, error)

	// ConnectDB opens backends. It should honor core.DBConnectTimeout.
	ConnectDB func(ctx context.Context, core *config.CoreConfig, appCfg C, logger *zap.Logger) (D, error)

	// EnsureSchema runs under core.IndexBootTimeout. Optional.
	EnsureSchema func(ctx context.Context, core *config.CoreConfig, appCfg C, db D, logger *zap.Logger) error

	// BuildHandler returns the root handler with routes and middleware.
	BuildHandler func(core *config.CoreConfig, appCfg C, db D, logger *zap.Logger) (http.Handler, error)

	// Close releases what ConnectDB opened. Optional.
	Close func(ctx context.Context, db D) error
}

// Run boots the service and serves until ctx ends or a shutdown signal
// arrives:
//
//  1. bootstrap logger, then LoadConfig
//  2. final logger from core config, default metrics
//  3. ConnectDB, then EnsureSchema
//  4. BuildHandler, then serve until shutdown
//  5. Close
func Run[C any, D any](ctx context.Context, hooks Hooks[C, D]) error {
	bootstrap := logging.BootstrapLogger()
	defer bootstrap.Sync()

	coreCfg, appCfg, err := hooks.LoadConfig(bootstrap)
	if err != nil {
		bootstrap.Error("config load failed", zap.String("app", hooks.Name), zap.Error(err))
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.MustBuildLogger(coreCfg.LogLevel, coreCfg.Env).With(zap.String("app", hooks.Name))
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("env", coreCfg.Env),
		zap.String("log_level", coreCfg.LogLevel),
	)
	logger.Debug("effective config", zap.String("config", coreCfg.Dump()))

	metrics.RegisterDefault(logger)

	db, err := hooks.ConnectDB(ctx, coreCfg, appCfg, logger)
	if err != nil {
		logger.Error("db connect failed", zap.Error(err))
		return fmt.Errorf("connect: %w", err)
	}
	if hooks.Close != nil {
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := hooks.Close(closeCtx, db); err != nil {
				logger.Warn("close failed", zap.Error(err))
			}
		}()
	}

	if hooks.EnsureSchema != nil {
		schemaCtx, cancel := context.WithTimeout(ctx, coreCfg.IndexBootTimeout)
		err := hooks.EnsureSchema(schemaCtx, coreCfg, appCfg, db, logger)
		cancel()
		if err != nil {
			logger.Error("schema ensure failed", zap.Error(err))
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	ctx, cancel := server.WithShutdownSignals(ctx, logger)
	defer cancel()

	handler, err := hooks.BuildHandler(coreCfg, appCfg, db, logger)
	if err != nil {
		logger.Error("handler build failed", zap.Error(err))
		return fmt.Errorf("build handler: %w", err)
	}

	if err := server.ListenAndServeWithContext(ctx, coreCfg, handler, logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
