package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/gravadormedico/voicepen-backend/pkg/db/models"
	"github.com/gravadormedico/voicepen-backend/pkg/logger"
)

const (
	defaultAbandonAfter = time.Hour
	abandonBatchSize    = 500
)

type abandonMarker interface {
	MarkAbandoned(ctx context.Context, cutoff, now time.Time, limit int) ([]models.CheckoutAttempt, error)
}

type cartTracker interface {
	Track(ctx context.Context, cart *models.AbandonedCart) error
}

// AbandonedCheckoutJobParams wires the abandoned checkout sweep.
type AbandonedCheckoutJobParams struct {
	Logger       *logger.Logger
	Attempts     abandonMarker
	Carts        cartTracker
	AbandonAfter time.Duration
	Now          func() time.Time
}

// NewAbandonedCheckoutJob flags pending attempts older than AbandonAfter and
// opens an abandoned cart per buyer email.
func NewAbandonedCheckoutJob(params AbandonedCheckoutJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Attempts == nil {
		return nil, fmt.Errorf("checkout attempts repository required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("abandoned carts repository required")
	}
	after := params.AbandonAfter
	if after <= 0 {
		after = defaultAbandonAfter
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &abandonedCheckoutJob{
		logg:     params.Logger,
		attempts: params.Attempts,
		carts:    params.Carts,
		after:    after,
		now:      now,
	}, nil
}

type abandonedCheckoutJob struct {
	logg     *logger.Logger
	attempts abandonMarker
	carts    cartTracker
	after    time.Duration
	now      func() time.Time
}

func (j *abandonedCheckoutJob) Name() string { return "abandoned-checkouts" }

func (j *abandonedCheckoutJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.Add(-j.after)
	rows, err := j.attempts.MarkAbandoned(ctx, cutoff, now, abandonBatchSize)
	if err != nil {
		return fmt.Errorf("mark abandoned: %w", err)
	}

	// one cart per email, carrying the latest attempt's contact and total
	latest := map[string]models.CheckoutAttempt{}
	for _, row := range rows {
		if prev, ok := latest[row.CustomerEmail]; !ok || row.CreatedAt.After(prev.CreatedAt) {
			latest[row.CustomerEmail] = row
		}
	}

	var errs error
	for email, attempt := range latest {
		cart := &models.AbandonedCart{
			CustomerEmail: email,
			CustomerName:  attempt.CustomerName,
			CustomerPhone: attempt.CustomerPhone,
			CartTotal:     attempt.CartTotal,
		}
		if err := j.carts.Track(ctx, cart); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("track cart %s: %w", email, err))
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":          cutoff,
		"attempts_marked": len(rows),
		"carts_tracked":   len(latest) - len(multierr.Errors(errs)),
	})
	j.logg.Info(logCtx, "cron.abandoned_checkouts_swept")
	return errs
}
