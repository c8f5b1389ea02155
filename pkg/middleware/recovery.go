package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "rentabook/pkg/errors"
	httputil "rentabook/pkg/http"
	"rentabook/pkg/logger"
)

// Recovery turns a panicking handler into a 500 with the standard error
// envelope. A panic after the handler started writing only gets logged.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("Panic recovered",
					"request_id", RequestIDFromContext(r.Context()),
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				_ = httputil.WriteError(w, apperrors.Internal("handler panicked", fmt.Errorf("%v", rec)))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
