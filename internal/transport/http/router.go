package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	compliancehandler "marksman/internal/compliance/handler"
	"marksman/internal/platform/middleware"
	qualificationhandler "marksman/internal/qualification/handler"
	routinghandler "marksman/internal/routing/handler"
	"marksman/pkg/platform/httputil"
)

// HealthCheck probes one dependency. Checks run per /healthz request with a
// short timeout each.
type HealthCheck func(ctx context.Context) error

// Deps collects everything the router mounts.
type Deps struct {
	Logger        *slog.Logger
	JWTSigningKey string

	Qualification *qualificationhandler.Handler
	Compliance    *compliancehandler.Handler
	Routing       *routinghandler.Handler

	HealthChecks map[string]HealthCheck
}

// NewRouter wires all endpoints. Evaluation and routing endpoints sit behind
// bearer auth; health and metrics stay open for probes and scrapers.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestMeta)

	r.Get("/healthz", healthHandler(deps.HealthChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.JWTSigningKey, deps.Logger))
		deps.Qualification.Register(r)
		deps.Compliance.Register(r)
		deps.Routing.Register(r)
	})
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		result := make(map[string]string, len(checks)+1)
		result["status"] = "ok"
		for name, check := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			err := check(ctx)
			cancel()
			if err != nil {
				result[name] = err.Error()
				result["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			result[name] = "ok"
		}
		httputil.WriteJSON(w, status, result)
	}
}
