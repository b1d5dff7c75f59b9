package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/pipelinekit/logger"
)

// RequestObserver receives every completed request, e.g. to record metrics.
type RequestObserver func(r *http.Request, status int, duration time.Duration)

// RequestLogger returns middleware that logs every request with method,
// path, status, response size and duration. Health-check paths are not
// logged but are still passed to observers.
func RequestLogger(log *logger.Logger, observers ...RequestObserver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			for _, observe := range observers {
				observe(r, rec.status, duration)
			}
			if isHealthEndpoint(r.URL.Path) {
				return
			}

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				logger.FieldStatus, rec.status,
				logger.FieldDuration, duration.Milliseconds(),
				"bytes", rec.written,
			)
			if id := r.Header.Get(HeaderRequestID); id != "" {
				fields[logger.FieldRequestID] = id
			}
			logByStatus(log, fields, rec.status)
		})
	}
}

func isHealthEndpoint(path string) bool {
	switch path {
	case "/health", "/info":
		return true
	}
	return false
}

// logByStatus logs request fields at the level matching the status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
