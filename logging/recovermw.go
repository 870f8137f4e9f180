// logging/recovermw.go
package logging

import (
	"net/http"
	"runtime/debug"

	apperr "github.com/dalemusser/gigboard/pantry/errors"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Recoverer turns a handler panic into a logged stack trace and, when no
// response has started, a 500 internal_error envelope.
func Recoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, max(r.ProtoMajor, 1))

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic recovered",
					zap.Any("panic_value", rec),
					zap.ByteString("stacktrace", debug.Stack()),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
				if ww.Status() != 0 {
					logger.Warn("panic after headers written; response truncated",
						zap.Int("status_already_sent", ww.Status()))
					return
				}
				apperr.Write(w, apperr.Internal("internal server error"))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
