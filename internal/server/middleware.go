package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/kinreport/pkg/observability/prom"
)

// requestLogger logs every request once it is answered and feeds request
// metrics when m is set. Health checks log at debug level.
func requestLogger(logger *log.Logger, m *prom.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			d := time.Since(start)
			route := routePattern(r)
			if m != nil {
				m.ObserveRequest(route, r.Method, status, d)
			}

			keyvals := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", d.Round(time.Microsecond),
				"request_id", chimw.GetReqID(r.Context()),
			}
			switch {
			case status >= 500:
				logger.Error("request", keyvals...)
			case status >= 400:
				logger.Warn("request", keyvals...)
			case route == "/healthz" || route == "/metrics":
				logger.Debug("request", keyvals...)
			default:
				logger.Info("request", keyvals...)
			}
		})
	}
}

// routePattern returns the matched chi pattern, keeping DNIs out of metric
// labels.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
