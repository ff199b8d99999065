package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/akinalp/chronora/pkg"
	"github.com/akinalp/chronora/pkg/telemetry"
)

// RequestLogger, her istek için:
//   - request_id alanlı bir zerolog logger'ı context'e koyar (log.Ctx ile erişilir)
//   - debug hata bayrağını context'e ekler (pkg.Error 500 detayını buna göre yazar)
//   - istek bitince method, route, status, byte ve süreyi loglar ve metriklere yazar
//
// chi RequestID middleware'ından SONRA çalışmalıdır.
func RequestLogger(metrics *telemetry.Metrics, debugErrors bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			logger := log.Logger.With().
				Str("request_id", chimw.GetReqID(r.Context())).
				Logger()

			ctx := logger.WithContext(r.Context())
			ctx = pkg.WithDebugErrors(ctx, debugErrors)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			route := routePattern(r)

			metrics.ObserveHTTP(r.Method, route, status, elapsed)

			var ev *zerolog.Event
			switch {
			case status >= 500:
				ev = logger.Error()
			case status >= 400:
				ev = logger.Info()
			default:
				ev = logger.Debug()
			}
			ev.Str("component", "http").
				Str("method", r.Method).
				Str("route", route).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", elapsed).
				Msg("request completed")
		})
	}
}

// routePattern, eşleşen chi route pattern'ini döner; eşleşme yoksa "unmatched".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
