// Package httpapi assembles the server's router: the shared middleware chain,
// the metrics endpoint and every feature handler.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"deales/internal/platform/metrics"
	"deales/internal/platform/middleware"
	dErrors "deales/pkg/domain-errors"
	"deales/pkg/platform/httputil"
)

// Registrar mounts a feature's routes.
type Registrar interface {
	Register(r chi.Router)
}

type Config struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	// MetricsHandler is served at GET /metrics when set.
	MetricsHandler http.Handler
}

// NewRouter wires the middleware chain in front of every registrar. Request
// IDs come first so recovery and request logs can carry them.
func NewRouter(cfg Config, registrars ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(cfg.Logger, cfg.Metrics))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}
	for _, reg := range registrars {
		reg.Register(r)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{
			Error: "method not allowed",
			Code:  string(dErrors.CodeBadRequest),
		})
	})
	return r
}
