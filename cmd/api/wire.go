package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	webhookcontrollers "github.com/gravadormedico/voicepen-backend/api/controllers/webhooks"
	"github.com/gravadormedico/voicepen-backend/api/routes"
	"github.com/gravadormedico/voicepen-backend/internal/abandonedcarts"
	"github.com/gravadormedico/voicepen-backend/internal/admins"
	"github.com/gravadormedico/voicepen-backend/internal/analytics"
	"github.com/gravadormedico/voicepen-backend/internal/auth"
	"github.com/gravadormedico/voicepen-backend/internal/checkout"
	"github.com/gravadormedico/voicepen-backend/internal/checkoutattempts"
	"github.com/gravadormedico/voicepen-backend/internal/conversions"
	"github.com/gravadormedico/voicepen-backend/internal/customers"
	"github.com/gravadormedico/voicepen-backend/internal/sales"
	"github.com/gravadormedico/voicepen-backend/internal/webhooklogs"
	"github.com/gravadormedico/voicepen-backend/internal/webhooks/appmax"
	"github.com/gravadormedico/voicepen-backend/pkg/config"
	"github.com/gravadormedico/voicepen-backend/pkg/db"
	"github.com/gravadormedico/voicepen-backend/pkg/logger"
	"github.com/gravadormedico/voicepen-backend/pkg/metrics"
	"github.com/gravadormedico/voicepen-backend/pkg/redis"
)

type application struct {
	deps     routes.Deps
	notifier *conversions.AsyncNotifier
}

// wire builds repositories and services and bootstraps the configured admin.
func wire(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*application, error) {
	conn := dbClient.DB()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	customerRepo := customers.NewRepository(conn)
	salesRepo := sales.NewRepository(conn)
	attemptsRepo := checkoutattempts.NewRepository(conn)
	cartsRepo := abandonedcarts.NewRepository(conn)
	logsRepo := webhooklogs.NewRepository(conn)
	adminRepo := admins.NewRepository(conn)

	var sender conversions.Sender
	if client, err := conversions.NewClient(cfg.Conversions); err == nil {
		sender = client
	} else {
		logg.Info(ctx, "meta conversions disabled: pixel or token not configured")
	}
	notifier := conversions.NewAsyncNotifier(sender, cfg.Conversions.Timeout, logg)

	reconciler, err := appmax.NewService(appmax.ServiceParams{
		Customers:      customerRepo,
		Sales:          salesRepo,
		Attempts:       attemptsRepo,
		Carts:          cartsRepo,
		Notifier:       notifier,
		Logger:         logg,
		RecoveryWindow: cfg.Checkout.RecoveryWindow,
		Currency:       cfg.Conversions.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("appmax service: %w", err)
	}

	verifier := appmax.Verifier{
		Secret:        cfg.Appmax.WebhookSecret,
		AllowUnsigned: cfg.UnsignedAllowed(),
		Tolerance:     cfg.Appmax.Tolerance,
	}
	if verifier.Skipped() {
		logg.Warn(ctx, "APPMAX_WEBHOOK_SECRET not set; accepting unsigned deliveries")
	}

	appmaxDeps := webhookcontrollers.AppmaxDeps{
		Service:  reconciler,
		Verifier: verifier,
		Recorder: webhooklogs.NewRecorder(ctx, logsRepo, logg),
		Metrics:  metrics.NewWebhookMetrics(registry),
		Logger:   logg,
	}
	if redisClient != nil {
		guard, err := appmax.NewDeliveryGuard(redisClient, cfg.Appmax.IdempotencyTTL, "appmax")
		if err != nil {
			return nil, fmt.Errorf("appmax delivery guard: %w", err)
		}
		appmaxDeps.Guard = guard
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Admins:         adminRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	created, err := auth.EnsureAdmin(ctx, adminRepo, cfg.Admin, cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		logg.Info(logg.WithField(ctx, "email", cfg.Admin.BootstrapEmail), "bootstrap admin created")
	}

	checkoutService, err := checkout.NewService(attemptsRepo, logg)
	if err != nil {
		return nil, fmt.Errorf("checkout service: %w", err)
	}
	analyticsService, err := analytics.NewService(analytics.ServiceParams{
		Sales:    salesRepo,
		Attempts: attemptsRepo,
		Logs:     logsRepo,
	})
	if err != nil {
		return nil, fmt.Errorf("analytics service: %w", err)
	}

	return &application{
		deps: routes.Deps{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Redis:     redisClient,
			Gatherer:  registry,
			Appmax:    appmaxDeps,
			Auth:      authService,
			Checkout:  checkoutService,
			Analytics: analyticsService,
			Logs:      logsRepo,
			Sales:     salesRepo,
			Attempts:  attemptsRepo,
		},
		notifier: notifier,
	}, nil
}
