package middleware

import (
	"net/http"
	"time"

	"github.com/alice-platform/gateway-engine/pkg/logging"
)

// statusResponseWriter captures the status code for the access log.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Logging creates middleware that logs HTTP requests with timing information.
// It uses the request ID from context if available.
func Logging(logger logging.Logger, getRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapper, r)

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", wrapper.statusCode),
				logging.Duration("duration", time.Since(start)),
			}
			if getRequestID != nil {
				if requestID := getRequestID(r); requestID != "" {
					fields = append(fields, logging.String("request_id", requestID))
				}
			}
			logger.Info("http request", fields...)
		})
	}
}
