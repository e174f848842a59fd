package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/gravadormedico/voicepen-backend/pkg/logger"
)

type webhookLogPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// WebhookLogRetentionJobParams wires the webhook log retention job.
type WebhookLogRetentionJobParams struct {
	Logger     *logger.Logger
	Repository webhookLogPruner
	Retention  time.Duration
	Now        func() time.Time
}

// NewWebhookLogRetentionJob deletes webhook logs older than Retention. A zero
// retention returns a nil job so nothing is registered.
func NewWebhookLogRetentionJob(params WebhookLogRetentionJobParams) (Job, error) {
	if params.Retention <= 0 {
		return nil, nil
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("webhook log repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &webhookLogRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: params.Retention,
		now:       now,
	}, nil
}

type webhookLogRetentionJob struct {
	logg      *logger.Logger
	repo      webhookLogPruner
	retention time.Duration
	now       func() time.Time
}

func (j *webhookLogRetentionJob) Name() string { return "webhook-log-retention" }

func (j *webhookLogRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("webhook log retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "cron.webhook_logs_pruned")
	return nil
}
