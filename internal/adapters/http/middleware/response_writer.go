// Package middleware provides HTTP middleware for the inbound request pipeline.
//
// The middleware chain processes requests in this order:
//
//	Recovery → RequestID → CorrelationID → OpenTelemetry → Logging → CORS → Timeout → Authenticate → Handler
//
// Each middleware is a func(http.Handler) http.Handler installed by the
// router with chi's Use, except Authenticate, which guards only /api.
package middleware

import (
	"io"
	"net/http"

	"github.com/felixge/httpsnoop"
)

// responseRecorder captures the status code and body size of a response. It
// is used by recovery, otel, and logging middleware.
type responseRecorder struct {
	statusCode    int
	headerWritten bool
	written       int64
}

// wrapResponseWriter returns a writer that reports into the returned
// recorder. httpsnoop keeps whichever optional interfaces (http.Flusher,
// http.Hijacker, io.ReaderFrom) the original writer implements.
func wrapResponseWriter(w http.ResponseWriter) (http.ResponseWriter, *responseRecorder) {
	rec := &responseRecorder{statusCode: http.StatusOK}

	wrapped := httpsnoop.Wrap(w, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				// Only the first call takes effect.
				if rec.headerWritten {
					return
				}
				rec.statusCode = code
				rec.headerWritten = true
				next(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				rec.headerWritten = true
				n, err := next(b)
				rec.written += int64(n)
				return n, err
			}
		},
		ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				rec.headerWritten = true
				n, err := next(src)
				rec.written += n
				return n, err
			}
		},
	})

	return wrapped, rec
}
