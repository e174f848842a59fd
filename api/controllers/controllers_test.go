package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gravadormedico/voicepen-backend/internal/checkout"
	"github.com/gravadormedico/voicepen-backend/internal/checkoutattempts"
	"github.com/gravadormedico/voicepen-backend/pkg/config"
	"github.com/gravadormedico/voicepen-backend/pkg/db/dbtest"
	"github.com/gravadormedico/voicepen-backend/pkg/logger"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, pinger{}, nil, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redis":"skipped"`) {
		t.Fatalf("expected redis skipped, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	HealthReady(cfg, pinger{err: errors.New("down")}, pinger{}, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code < 500 {
		t.Fatalf("expected dependency failure status, got %d", rec.Code)
	}
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive(&config.Config{App: config.AppConfig{Env: "prod"}}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Gravador-Env") != "prod" {
		t.Fatalf("unexpected live response %d %v", rec.Code, rec.Header())
	}
}

func TestBeginCheckout(t *testing.T) {
	svc, err := checkout.NewService(checkoutattempts.NewRepository(dbtest.Open(t)), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler := BeginCheckout(svc, logger.Nop())

	body := `{"session_id":"sess-1","email":"buyer@example.com","payment_method":"pix",
		"items":[{"sku":"voicepen","name":"VoicePen","quantity":1,"unit_price":"197.00"}]}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/checkout/attempts", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"attempt_id"`) {
		t.Fatalf("expected attempt id in body, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/checkout/attempts", strings.NewReader(`{"session_id":"s","email":"buyer@example.com","items":[]}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", rec.Code)
	}
}
