package middleware

import (
	"net/http"

	apperr "github.com/dalemusser/gigboard/pantry/errors"
	"go.uber.org/zap"
)

// NotFoundHandler logs a 404 and writes the JSON error envelope. Pass it to
// chi.Router.NotFound.
func NotFoundHandler(logger *zap.Logger) http.HandlerFunc {
	return rejected(logger, "not_found", apperr.NotFound("no such route"))
}

// MethodNotAllowedHandler logs a 405 and writes the JSON error envelope. Pass
// it to chi.Router.MethodNotAllowed.
func MethodNotAllowedHandler(logger *zap.Logger) http.HandlerFunc {
	return rejected(logger, "method_not_allowed", apperr.MethodNotAllowed("method not allowed for this route"))
}

func rejected(logger *zap.Logger, event string, e *apperr.Error) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Info(event,
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_ip", r.RemoteAddr),
		)
		apperr.Write(w, e)
	}
}
