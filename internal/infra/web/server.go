package web

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"applecare-activation/internal/infra/redis"
	"applecare-activation/internal/usecase"
)

// Server wires the REST API: the public intake surface, the admin console
// endpoints and the email approval links.
type Server struct {
	authUC     usecase.AuthUseCase
	planUC     usecase.PlanUseCase
	requestUC  usecase.RequestUseCase
	settingsUC usecase.SettingsUseCase
	statsUC    usecase.StatsUseCase

	auth        *AuthManager
	limiter     *redis.RateLimiter
	submitLimit int
	uploadDir   string
	log         *zerolog.Logger
}

func NewServer(
	authUC usecase.AuthUseCase,
	planUC usecase.PlanUseCase,
	requestUC usecase.RequestUseCase,
	settingsUC usecase.SettingsUseCase,
	statsUC usecase.StatsUseCase,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	submitLimit int,
	uploadDir string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		authUC:      authUC,
		planUC:      planUC,
		requestUC:   requestUC,
		settingsUC:  settingsUC,
		statsUC:     statsUC,
		auth:        auth,
		limiter:     limiter,
		submitLimit: submitLimit,
		uploadDir:   uploadDir,
		log:         logger,
	}
}

// RegisterRoutes attaches every endpoint to the router. Middleware ordering
// matters: trace id first so the request log carries it.
func (s *Server) RegisterRoutes(r *chi.Mux) {
	r.Use(
		TraceID(),
		Recover(s.log),
		RequestLog(s.log),
		Timeout(30*time.Second),
	)

	r.Get("/health", s.handleHealth)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		// Intake form surface: no session required.
		r.Get("/plans", s.handlePlansList)
		r.Post("/activation-requests", s.handleRequestCreate)
		r.Get("/activation-requests/{id}/approve-link", s.handleApprovalLink(usecase.ActionApprove))
		r.Get("/activation-requests/{id}/decline-link", s.handleApprovalLink(usecase.ActionDecline))

		r.Group(func(r chi.Router) {
			r.Use(s.auth.RequireAuth)

			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/change-password", s.handleChangePassword)

			r.Post("/plans", s.handlePlanCreate)
			r.Put("/plans/{id}", s.handlePlanUpdate)
			r.Delete("/plans/{id}", s.handlePlanDelete)
			r.Post("/plans/upload", s.handlePlanUpload)
			r.Get("/plans/sample", s.handlePlanSample)

			r.Get("/activation-requests", s.handleRequestList)
			r.Get("/activation-requests/{id}", s.handleRequestGet)
			r.Put("/activation-requests/{id}/status", s.handleRequestStatus)
			r.Post("/activation-requests/{id}/approve", s.handleRequestApprove)
			r.Post("/activation-requests/{id}/decline", s.handleRequestDecline)
			r.Post("/activation-requests/{id}/resend-email", s.handleRequestResend)
			r.Get("/activation-requests/{id}/invoice", s.handleRequestInvoice)
			r.Post("/activation-requests/{id}/invoice", s.handleInvoiceUpload)

			r.Get("/settings", s.handleSettingsGet)
			r.Put("/settings", s.handleSettingsUpdate)

			r.Get("/stats", s.handleStats)
		})
	})
}
