package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/quantonganh/newsletter"
	"github.com/quantonganh/newsletter/pkg/metrics"
)

// metricsMiddleware records request duration by route template
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		route := "unknown"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		metrics.HTTPRequestDuration.WithLabelValues(
			r.Method,
			route,
			strconv.Itoa(wrapped.statusCode),
		).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap returns the underlying ResponseWriter
func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// basicAuth only lets through applications whose secret matches a known credential
func basicAuth(credentials newsletter.CredentialStore) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			applicationID, secret, ok := r.BasicAuth()
			if ok {
				if c, ok := credentials.Authenticate(applicationID, secret); ok {
					hlog.FromRequest(r).UpdateContext(func(ctx zerolog.Context) zerolog.Context {
						return ctx.Str("application_id", c.ApplicationID)
					})
					next.ServeHTTP(w, r)
					return
				}
			}

			hlog.FromRequest(r).Warn().Str("application_id", applicationID).Msg("authentication failed")
			w.Header().Set("WWW-Authenticate", `Basic realm="subscriptions", charset="UTF-8"`)
			writeEnvelope(w, newsletter.Envelope{
				Code:    http.StatusUnauthorized,
				Message: messageUnauthorized,
			})
		})
	}
}
