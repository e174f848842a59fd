package webhooks

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gravadormedico/voicepen-backend/api/responses"
	"github.com/gravadormedico/voicepen-backend/internal/webhooklogs"
	"github.com/gravadormedico/voicepen-backend/internal/webhooks/appmax"
	"github.com/gravadormedico/voicepen-backend/pkg/logger"
	"github.com/gravadormedico/voicepen-backend/pkg/metrics"
)

const (
	gatewayAppmax  = "appmax"
	maxPayloadSize = 1 << 20

	msgInvalidJSON      = "JSON inválido"
	msgSignatureMissing = "Assinatura ausente"
	msgSignatureInvalid = "Assinatura inválida"
	msgTimestampStale   = "Timestamp expirado"
	msgIgnored          = "Evento ignorado"
	msgInsufficient     = "Dados insuficientes"
	msgInternal         = "Erro interno"

	resultIgnored      = "ignored"
	resultInsufficient = "insufficient"
)

type AppmaxReconciler interface {
	Reconcile(ctx context.Context, outcome appmax.Outcome, fields appmax.Fields) (appmax.Result, error)
}

type appmaxGuard interface {
	Claim(ctx context.Context, digest string) (string, error)
	Complete(ctx context.Context, digest, result string) error
	Release(ctx context.Context, digest string) error
}

type auditRecorder interface {
	Record(ctx context.Context, entry webhooklogs.Entry)
}

// AppmaxDeps groups what the gateway callback needs. Guard, Recorder and
// Metrics are optional.
type AppmaxDeps struct {
	Service  AppmaxReconciler
	Verifier appmax.Verifier
	Guard    appmaxGuard
	Recorder auditRecorder
	Metrics  *metrics.WebhookMetrics
	Logger   *logger.Logger
}

type webhookAck struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

type webhookFailure struct {
	Error string `json:"error"`
}

// AppmaxWebhook handles payment gateway order events. Only malformed or
// untrusted deliveries get a 4xx: anything the gateway could retry without
// changing the outcome is acknowledged with 200.
func AppmaxWebhook(deps AppmaxDeps) http.HandlerFunc {
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	if deps.Verifier.Skipped() {
		logg.Warn(context.Background(), "appmax webhook secret not configured; signatures will not be verified")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		d := &delivery{deps: deps, logg: logg, w: w, endpoint: r.URL.Path, start: start}
		ctx := r.Context()

		if deps.Service == nil {
			d.fail(ctx, http.StatusInternalServerError, msgInternal, metrics.OutcomeBadPayload, errors.New("webhook service unavailable"))
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize))
		d.body = body
		if err != nil {
			d.fail(ctx, http.StatusBadRequest, msgInvalidJSON, metrics.OutcomeBadPayload, err)
			return
		}

		if err := deps.Verifier.Verify(body, r.Header.Get(appmax.HeaderSignature), r.Header.Get(appmax.HeaderTimestamp)); err != nil {
			d.fail(ctx, http.StatusUnauthorized, signatureMessage(err), metrics.OutcomeUnauthorized, err)
			return
		}

		parsed, err := appmax.ParseDelivery(body)
		if err != nil {
			d.fail(ctx, http.StatusBadRequest, msgInvalidJSON, metrics.OutcomeBadPayload, err)
			return
		}
		ctx = logg.WithFields(ctx, map[string]any{
			"order_id": parsed.Fields.OrderID,
			"event":    parsed.Event,
		})

		digest := appmax.Digest(body)
		if deps.Guard != nil {
			prior, err := deps.Guard.Claim(ctx, digest)
			if err != nil {
				logg.WarnErr(ctx, "delivery guard unavailable", err)
			} else if prior != "" {
				d.replay(ctx, prior)
				return
			}
		}

		outcome, ok := appmax.Normalize(parsed.Event, parsed.Status)
		if !ok {
			d.complete(ctx, digest, resultIgnored)
			d.ack(logg.WithField(ctx, "status", parsed.Status), webhookAck{Success: true, Message: msgIgnored}, metrics.OutcomeIgnored, "")
			return
		}
		ctx = logg.WithField(ctx, "status", outcome.Status.String())

		result, err := deps.Service.Reconcile(ctx, outcome, parsed.Fields)
		if err != nil {
			if deps.Guard != nil {
				if relErr := deps.Guard.Release(ctx, digest); relErr != nil {
					logg.WarnErr(ctx, "release delivery guard", relErr)
				}
			}
			d.fail(ctx, http.StatusInternalServerError, msgInternal, metrics.OutcomeBadPayload, err)
			return
		}
		if result.Insufficient {
			d.complete(ctx, digest, resultInsufficient)
			d.ack(ctx, webhookAck{Success: true, Message: msgInsufficient}, metrics.OutcomeInsufficient, "")
			return
		}

		var warning string
		if result.Warnings != nil {
			warning = result.Warnings.Error()
			deps.Metrics.AddWarnings(gatewayAppmax, result.WarningCount())
		}
		d.complete(ctx, digest, result.Status.String())
		d.ack(logg.WithField(ctx, "match", string(result.Match)), webhookAck{Success: true, Status: result.Status.String()}, metrics.OutcomeReconciled, warning)
	}
}

// delivery carries the per-request bookkeeping every exit path shares.
type delivery struct {
	deps     AppmaxDeps
	logg     *logger.Logger
	w        http.ResponseWriter
	endpoint string
	body     []byte
	start    time.Time
}

func (d *delivery) ack(ctx context.Context, body webhookAck, outcome, warning string) {
	responses.WriteJSON(d.w, http.StatusOK, body)
	d.finish(ctx, http.StatusOK, outcome, warning, true)
}

func (d *delivery) fail(ctx context.Context, status int, message, outcome string, err error) {
	responses.WriteJSON(d.w, status, webhookFailure{Error: message})
	d.finish(ctx, status, outcome, err.Error(), false)
}

func (d *delivery) replay(ctx context.Context, prior string) {
	body := webhookAck{Success: true}
	switch prior {
	case resultIgnored:
		body.Message = msgIgnored
	case resultInsufficient:
		body.Message = msgInsufficient
	default:
		body.Status = prior
	}
	responses.WriteJSON(d.w, http.StatusOK, body)
	d.finish(ctx, http.StatusOK, metrics.OutcomeDuplicate, "", true)
}

func (d *delivery) complete(ctx context.Context, digest, result string) {
	if d.deps.Guard == nil {
		return
	}
	if err := d.deps.Guard.Complete(ctx, digest, result); err != nil {
		d.logg.WarnErr(ctx, "store delivery result", err)
	}
}

func (d *delivery) finish(ctx context.Context, status int, outcome, errText string, success bool) {
	latency := time.Since(d.start)
	if d.deps.Recorder != nil {
		d.deps.Recorder.Record(ctx, webhooklogs.Entry{
			Endpoint:       d.endpoint,
			Payload:        d.body,
			ResponseStatus: status,
			Latency:        latency,
			Err:            errText,
			Success:        success,
		})
	}
	d.deps.Metrics.Observe(gatewayAppmax, outcome, latency)

	ctx = d.logg.WithFields(ctx, map[string]any{
		"outcome":         outcome,
		"response_status": status,
		"latency_ms":      latency.Milliseconds(),
	})
	switch {
	case !success:
		d.logg.Warn(d.logg.WithField(ctx, "error", errText), "appmax webhook rejected")
	case errText != "":
		d.logg.Warn(d.logg.WithField(ctx, "warnings", errText), "appmax webhook reconciled with warnings")
	default:
		d.logg.Info(ctx, "appmax webhook handled")
	}
}

func signatureMessage(err error) string {
	switch {
	case errors.Is(err, appmax.ErrSignatureMissing):
		return msgSignatureMissing
	case errors.Is(err, appmax.ErrTimestampStale):
		return msgTimestampStale
	default:
		return msgSignatureInvalid
	}
}
