package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gravadormedico/voicepen-backend/api/controllers"
	admincontrollers "github.com/gravadormedico/voicepen-backend/api/controllers/admin"
	webhookcontrollers "github.com/gravadormedico/voicepen-backend/api/controllers/webhooks"
	"github.com/gravadormedico/voicepen-backend/api/middleware"
	"github.com/gravadormedico/voicepen-backend/internal/analytics"
	"github.com/gravadormedico/voicepen-backend/internal/auth"
	"github.com/gravadormedico/voicepen-backend/internal/checkout"
	"github.com/gravadormedico/voicepen-backend/internal/checkoutattempts"
	"github.com/gravadormedico/voicepen-backend/internal/sales"
	"github.com/gravadormedico/voicepen-backend/internal/webhooklogs"
	"github.com/gravadormedico/voicepen-backend/pkg/config"
	"github.com/gravadormedico/voicepen-backend/pkg/enums"
	"github.com/gravadormedico/voicepen-backend/pkg/logger"
	"github.com/gravadormedico/voicepen-backend/pkg/redis"
)

// AppmaxWebhookPath is where the gateway delivers order notifications.
const AppmaxWebhookPath = "/api/v1/webhooks/appmax"

// Deps carries everything the router mounts. Redis and Gatherer are optional.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        controllers.Pinger
	Redis     *redis.Client
	Gatherer  prometheus.Gatherer
	Appmax    webhookcontrollers.AppmaxDeps
	Auth      auth.Service
	Checkout  checkout.Service
	Analytics analytics.Service
	Logs      *webhooklogs.Repository
	Sales     *sales.Repository
	Attempts  *checkoutattempts.Repository
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	// typed nil interfaces would defeat the middleware nil checks
	var cache controllers.Pinger
	var loginLimiter func(http.Handler) http.Handler
	var checkoutIdempotency func(http.Handler) http.Handler
	if d.Redis != nil {
		cache = d.Redis
		loginLimiter = middleware.LoginRateLimit(cfg.RateLimit, d.Redis, logg)
		checkoutIdempotency = middleware.Idempotency(d.Redis, cfg.Checkout.IdempotencyTTL, logg)
	} else {
		loginLimiter = middleware.LoginRateLimit(cfg.RateLimit, nil, logg)
		checkoutIdempotency = middleware.Idempotency(nil, 0, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, cache, logg))
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Post(AppmaxWebhookPath, webhookcontrollers.AppmaxWebhook(d.Appmax))

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.With(checkoutIdempotency).Post("/attempts", controllers.BeginCheckout(d.Checkout, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.With(loginLimiter).Post("/auth/login", admincontrollers.Login(d.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireRole(enums.AdminRoleAdmin, logg))
			r.Get("/webhooks/logs", admincontrollers.WebhookLogs(d.Logs, logg))
			r.Get("/sales", admincontrollers.Sales(d.Sales, logg))
			r.Get("/recovery/attempts", admincontrollers.RecoveryAttempts(d.Attempts, logg))
			r.Get("/analytics/summary", admincontrollers.AnalyticsSummary(d.Analytics, logg))
		})
	})

	return r
}
