// Package handler exposes the account service over HTTP under /api.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"deales/internal/account/models"
	"deales/internal/platform/middleware"
	"deales/pkg/domain"
	dErrors "deales/pkg/domain-errors"
	"deales/pkg/platform/httputil"
	"deales/pkg/requestcontext"
)

// Service is the account API the handler drives.
type Service interface {
	Register(ctx context.Context, req *models.Credentials) error
	Login(ctx context.Context, req *models.Credentials) (*models.TokenResponse, error)
	Authenticate(ctx context.Context, token string) (middleware.Principal, error)
	Me(ctx context.Context) models.MeResponse
	Logout(ctx context.Context) error
	CreateDealership(ctx context.Context, req *models.CreateDealershipRequest) (domain.DealershipID, error)
	UpsertSalespersonProfile(ctx context.Context, req *models.SalespersonProfileRequest) error
	GetSalespersonProfile(ctx context.Context) (*models.SalespersonProfile, error)
	ListMemberships(ctx context.Context) ([]models.Membership, error)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	service Service
	logger  *slog.Logger
	checks  map[string]HealthCheck
}

type Option func(*Handler)

// WithHealthCheck adds a named dependency to GET /api/healthz.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(h *Handler) {
		h.checks[name] = check
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger, checks: make(map[string]HealthCheck)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the account routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(api chi.Router) {
		api.Get("/healthz", h.handleHealth)
		api.Post("/auth/register", h.handleRegister)
		api.Post("/auth/login", h.handleLogin)

		api.Group(func(authed chi.Router) {
			authed.Use(middleware.RequireAuth(h.service, h.logger))
			authed.Get("/auth/me", h.handleMe)
			authed.Post("/auth/logout", h.handleLogout)
			authed.Post("/dealership/create", h.handleCreateDealership)
			authed.Post("/salesperson/profile", h.handleUpsertProfile)
			authed.Get("/salesperson/profile", h.handleGetProfile)
			authed.Get("/salesperson/memberships", h.handleListMemberships)
		})
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "invalid register request", err)
		return
	}
	if err := h.service.Register(r.Context(), &req); err != nil {
		h.fail(w, r, "register failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.MessageResponse{Message: "User created"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "invalid login request", err)
		return
	}
	res, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.fail(w, r, "login failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Me(r.Context()))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		h.fail(w, r, "logout failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateDealership(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDealershipRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "invalid dealership request", err)
		return
	}
	id, err := h.service.CreateDealership(r.Context(), &req)
	if err != nil {
		h.fail(w, r, "create dealership failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.CreateDealershipResponse{
		Message:      "Dealership created",
		DealershipID: id.String(),
	})
}

func (h *Handler) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req models.SalespersonProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "invalid profile request", err)
		return
	}
	if err := h.service.UpsertSalespersonProfile(r.Context(), &req); err != nil {
		h.fail(w, r, "save profile failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "Profile saved"})
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetSalespersonProfile(r.Context())
	if err != nil {
		h.fail(w, r, "load profile failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToProfileResponse(p))
}

func (h *Handler) handleListMemberships(w http.ResponseWriter, r *http.Request) {
	ms, err := h.service.ListMemberships(r.Context())
	if err != nil {
		h.fail(w, r, "list memberships failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToMembershipsResponse(ms))
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	res := healthResponse{Status: "ok"}
	status := http.StatusOK
	if len(h.checks) > 0 {
		res.Checks = make(map[string]string, len(h.checks))
	}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed",
				"dependency", name,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			res.Checks[name] = "unavailable"
			res.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		res.Checks[name] = "ok"
	}
	httputil.WriteJSON(w, status, res)
}

// fail logs at warn for client errors and error for everything else, then
// writes the error envelope.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	level := slog.LevelWarn
	if de, ok := dErrors.As(err); !ok || de.Code == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, err)
}
