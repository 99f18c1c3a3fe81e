// Package httpapi assembles the root router: shared middleware, health and
// metrics endpoints, and the form routes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	formhandler "github.com/werterpires/salt-in-forms-back-sub000/internal/form/handler"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/platform/metrics"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/httputil"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/middleware/admin"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/middleware/metadata"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/middleware/request"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/middleware/requesttime"
)

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps are the collaborators the router mounts.
type Deps struct {
	Forms    *formhandler.Handler
	Tokens   admin.TokenValidator
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Health   map[string]HealthCheck
	// PublicLimit, when set, guards the candidate-facing routes.
	PublicLimit func(http.Handler) http.Handler
}

// NewRouter wires all public and admin endpoints.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Latency)
	}

	r.Get("/health", health(d.Health))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(pr chi.Router) {
		if d.PublicLimit != nil {
			pr.Use(d.PublicLimit)
		}
		d.Forms.RegisterPublic(pr)
	})
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(admin.RequireAdmin(d.Tokens, d.Logger))
		d.Forms.RegisterAdmin(ar)
	})
	return r
}

func health(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{}
		code := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status[name] = "down"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "up"
		}
		httputil.WriteJSON(w, code, map[string]any{"status": http.StatusText(code), "checks": status})
	}
}
