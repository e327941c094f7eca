// Package httptransport assembles the HTTP surface: shared middleware, probes,
// metrics and the per-module route handlers.
package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accesshandler "proofwall/internal/access/handler"
	contenthandler "proofwall/internal/content/handler"
	"proofwall/internal/platform/health"
	"proofwall/pkg/platform/middleware/request"
)

const maxBodyBytes = 1 << 20

// Config tunes the shared middleware.
type Config struct {
	TrustedProxies []netip.Prefix
	// RequestTimeout bounds every route except /upload, which is bounded by the proof timeout.
	RequestTimeout time.Duration
	Metrics        *request.Metrics
}

// Routes are the handlers mounted on the router.
type Routes struct {
	Health  *health.Handler
	Content *contenthandler.Handler
	Access  *accesshandler.Handler
	// Gate fronts the pay routes. Nil disables settlement.
	Gate accesshandler.PaymentGate
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(cfg Config, routes Routes, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.ClientMetadata(cfg.TrustedProxies))
	r.Use(request.RequestTime)
	r.Use(request.Logger(logger))
	r.Use(request.LatencyMiddleware(cfg.Metrics))
	r.Use(request.BodyLimit(maxBodyBytes))
	r.Use(request.ContentTypeJSON)

	r.Handle("/metrics", promhttp.Handler())
	routes.Health.Register(r)

	// /upload holds the connection while the prover runs.
	routes.Content.Register(r)

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(request.Timeout(cfg.RequestTimeout))
		}
		routes.Access.Register(r, routes.Gate)
	})

	return r
}
