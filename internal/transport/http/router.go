// Package httptransport assembles the public HTTP surface: middleware
// stack, health probes, metrics, and the authenticated credential routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	issuancehandler "pipvc/internal/issuance/handler"
	"pipvc/internal/platform/health"
	"pipvc/internal/platform/middleware"
	registryhandler "pipvc/internal/registry/handler"
	"pipvc/pkg/platform/middleware/auth"
)

// Deps carries everything the router mounts.
type Deps struct {
	Issuance *issuancehandler.Handler
	Registry *registryhandler.Handler
	Health   *health.Handler
	Verifier auth.TokenVerifier

	RequestTimeout time.Duration
}

// NewRouter wires all endpoints with the middleware stack. Credential
// routes sit behind the bearer-token middleware; health and metrics do not.
func NewRouter(deps Deps, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))

	timeout := deps.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	r.Use(middleware.Timeout(timeout))

	deps.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(auth.RequireSubject(deps.Verifier, logger))

		deps.Issuance.Register(r)
		deps.Registry.Register(r)
	})

	return r
}
