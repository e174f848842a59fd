package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gravadormedico/voicepen-backend/api/responses"
	"github.com/gravadormedico/voicepen-backend/pkg/config"
	pkgerrors "github.com/gravadormedico/voicepen-backend/pkg/errors"
	"github.com/gravadormedico/voicepen-backend/pkg/logger"
)

const readyTimeout = 2 * time.Second

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Gravador-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, redis. Nil
// dependencies are reported as skipped.
func HealthReady(cfg *config.Config, db Pinger, cache Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Gravador-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]string{"database": check(ctx, db), "redis": check(ctx, cache)}
		for name, state := range checks {
			if state != "ok" && state != "skipped" {
				err := pkgerrors.New(pkgerrors.CodeDependency, name+" unavailable").WithDetails(checks)
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

func check(ctx context.Context, p Pinger) string {
	if p == nil {
		return "skipped"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "ok"
}
