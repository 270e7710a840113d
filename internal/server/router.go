package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/userapi/userapi/internal/config"
	"github.com/userapi/userapi/internal/handler"
	"github.com/userapi/userapi/internal/metrics"
	"github.com/userapi/userapi/internal/middleware"
)

// RouterParams carries everything the router mounts.
type RouterParams struct {
	Config  *config.Config
	Logger  *slog.Logger
	Users   *handler.UserHandler
	Health  *handler.HealthHandler
	Metrics metrics.Recorder
	// MetricsHandler serves /metrics. Nil leaves the endpoint unmounted.
	MetricsHandler http.Handler
	// RateLimiter is the shared limiter; nil falls back to in-process limiting.
	RateLimiter middleware.RateLimiter
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(p RouterParams) *chi.Mux {
	cfg := p.Config
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := handler.New()

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, cfg.IsDevelopment() || cfg.IsTesting()))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: !cfg.IsProduction()}))
	r.Use(middleware.CORS(cfg.GetCORSAllowedOrigins()))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	r.Use(middleware.Metrics(p.Metrics))

	// Probes
	r.Get("/healthz", p.Health.Healthz)
	r.Get("/readyz", p.Health.Readyz)
	if p.MetricsHandler != nil {
		r.Handle("/metrics", p.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Logger:  logger,
			Enabled: cfg.RateLimitEnabled,
			RPS:     cfg.RateLimitRPS,
			Burst:   cfg.RateLimitBurst,
			Limiter: p.RateLimiter,
		}))

		r.Get("/health", p.Health.Health)
		r.Route("/users", p.Users.Routes)
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
