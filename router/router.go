// router/router.go
package router

import (
	"github.com/dalemusser/gigboard/config"
	"github.com/dalemusser/gigboard/logging"
	"github.com/dalemusser/gigboard/metrics"
	"github.com/dalemusser/gigboard/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// New returns a chi.Router with the standard stack, outermost first:
// request id, real ip, panic recovery, CORS, security headers, body
// limit, compression, metrics, access log. 404 and 405 answer with the
// JSON error envelope. Routes are mounted by the caller.
func New(coreCfg *config.CoreConfig, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.Recoverer(logger))

	r.Use(middleware.CORS(coreCfg.CORS))
	r.Use(middleware.Secure(middleware.APIHeaders()))
	r.Use(middleware.LimitBodySize(coreCfg.MaxRequestBodyBytes))
	r.Use(middleware.Compress(coreCfg.EnableCompression))

	r.Use(metrics.HTTPMetrics)
	r.Use(logging.RequestLogger(logger))

	r.NotFound(middleware.NotFoundHandler(logger))
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler(logger))

	return r
}
