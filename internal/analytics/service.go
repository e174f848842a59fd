package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gravadormedico/voicepen-backend/internal/checkoutattempts"
	"github.com/gravadormedico/voicepen-backend/internal/sales"
	"github.com/gravadormedico/voicepen-backend/pkg/enums"
	pkgerrors "github.com/gravadormedico/voicepen-backend/pkg/errors"
)

const (
	DefaultDays = 30
	MaxDays     = 365
)

// Service builds the admin dashboard summary.
type Service interface {
	Summary(ctx context.Context, days int) (*Summary, error)
}

type salesTotals interface {
	TotalsSince(ctx context.Context, since time.Time) ([]sales.StatusTotal, error)
}

type recoveryTotals interface {
	RecoveryTotalsSince(ctx context.Context, since time.Time) ([]checkoutattempts.RecoveryTotal, error)
}

type deliveryCounter interface {
	CountSince(ctx context.Context, since time.Time) (ok int64, failed int64, err error)
}

// Summary aggregates sales, recovery and webhook delivery numbers for a window.
type Summary struct {
	Since            time.Time                        `json:"since"`
	Days             int                              `json:"days"`
	SalesByStatus    []sales.StatusTotal              `json:"sales_by_status"`
	ApprovedRevenue  decimal.Decimal                  `json:"approved_revenue"`
	ApprovedCount    int64                            `json:"approved_count"`
	AttemptsByStatus []checkoutattempts.RecoveryTotal `json:"attempts_by_recovery_status"`
	RecoveryRate     float64                          `json:"recovery_rate"`
	Deliveries       DeliveryTotals                   `json:"webhook_deliveries"`
}

// DeliveryTotals counts logged webhook deliveries by outcome.
type DeliveryTotals struct {
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

type service struct {
	sales    salesTotals
	attempts recoveryTotals
	logs     deliveryCounter
	now      func() time.Time
}

// ServiceParams bundles the repositories read by the summary.
type ServiceParams struct {
	Sales    salesTotals
	Attempts recoveryTotals
	Logs     deliveryCounter
	Now      func() time.Time
}

// NewService wires a summary service.
func NewService(params ServiceParams) (Service, error) {
	if params.Sales == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if params.Attempts == nil {
		return nil, fmt.Errorf("checkout attempts repository required")
	}
	if params.Logs == nil {
		return nil, fmt.Errorf("webhook log repository required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{sales: params.Sales, attempts: params.Attempts, logs: params.Logs, now: now}, nil
}

func (s *service) Summary(ctx context.Context, days int) (*Summary, error) {
	if days == 0 {
		days = DefaultDays
	}
	if days < 1 || days > MaxDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("days must be between 1 and %d", MaxDays))
	}
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)

	byStatus, err := s.sales.TotalsSince(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sales totals")
	}
	byRecovery, err := s.attempts.RecoveryTotalsSince(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recovery totals")
	}
	ok, failed, err := s.logs.CountSince(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook delivery counts")
	}

	summary := &Summary{
		Since:            since,
		Days:             days,
		SalesByStatus:    nonNil(byStatus),
		ApprovedRevenue:  decimal.Zero,
		AttemptsByStatus: nonNil(byRecovery),
		Deliveries:       DeliveryTotals{Succeeded: ok, Failed: failed},
	}
	for _, row := range byStatus {
		if row.Status.IsSuccess() {
			summary.ApprovedRevenue = summary.ApprovedRevenue.Add(row.Amount)
			summary.ApprovedCount += row.Count
		}
	}
	summary.RecoveryRate = RecoveryRate(byRecovery)
	return summary, nil
}

// RecoveryRate is recovered / (recovered + abandoned), rounded to four
// decimal places. Pending attempts are still in play and do not count.
func RecoveryRate(rows []checkoutattempts.RecoveryTotal) float64 {
	var recovered, abandoned int64
	for _, row := range rows {
		switch row.RecoveryStatus {
		case enums.RecoveryStatusRecovered:
			recovered += row.Count
		case enums.RecoveryStatusAbandoned:
			abandoned += row.Count
		}
	}
	closed := recovered + abandoned
	if closed == 0 {
		return 0
	}
	rate, _ := decimal.NewFromInt(recovered).DivRound(decimal.NewFromInt(closed), 4).Float64()
	return rate
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
