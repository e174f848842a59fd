package appmax

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/gravadormedico/voicepen-backend/internal/checkoutattempts"
	"github.com/gravadormedico/voicepen-backend/internal/conversions"
	"github.com/gravadormedico/voicepen-backend/internal/customers"
	"github.com/gravadormedico/voicepen-backend/pkg/db/models"
	"github.com/gravadormedico/voicepen-backend/pkg/enums"
	pkgerrors "github.com/gravadormedico/voicepen-backend/pkg/errors"
	"github.com/gravadormedico/voicepen-backend/pkg/logger"
)

const defaultRecoveryWindow = 24 * time.Hour

type customerRepository interface {
	Upsert(ctx context.Context, contact customers.Contact) (*models.Customer, error)
}

type saleRepository interface {
	Upsert(ctx context.Context, sale *models.Sale, amountKnown bool) error
}

type attemptRepository interface {
	ApplyOutcome(ctx context.Context, outcome checkoutattempts.Outcome, since time.Time) (checkoutattempts.Match, error)
}

type cartRepository interface {
	Reopen(ctx context.Context, email string, now time.Time) (int64, error)
	MarkRecovered(ctx context.Context, email string, now time.Time) (int64, error)
}

// Notifier receives converted orders. Implementations must not block.
type Notifier interface {
	NotifyPurchase(ctx context.Context, p conversions.Purchase)
}

type ServiceParams struct {
	Customers      customerRepository
	Sales          saleRepository
	Attempts       attemptRepository
	Carts          cartRepository
	Notifier       Notifier
	Logger         *logger.Logger
	RecoveryWindow time.Duration
	Currency       string
	Now            func() time.Time
}

// Service applies normalized gateway outcomes to customers, sales, checkout
// attempts and abandoned carts.
type Service struct {
	customers customerRepository
	sales     saleRepository
	attempts  attemptRepository
	carts     cartRepository
	notifier  Notifier
	logg      *logger.Logger
	window    time.Duration
	currency  string
	now       func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Customers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customer repo required")
	}
	if params.Sales == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sale repo required")
	}
	if params.Attempts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout attempt repo required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "abandoned cart repo required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	window := params.RecoveryWindow
	if window <= 0 {
		window = defaultRecoveryWindow
	}
	currency := params.Currency
	if currency == "" {
		currency = "BRL"
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		customers: params.Customers,
		sales:     params.Sales,
		attempts:  params.Attempts,
		carts:     params.Carts,
		notifier:  params.Notifier,
		logg:      logg,
		window:    window,
		currency:  currency,
		now:       now,
	}, nil
}

// Result describes what Reconcile did with a delivery.
type Result struct {
	Status         enums.SaleStatus
	RecoveryStatus enums.RecoveryStatus
	// Insufficient is set when the order id or email was missing and nothing
	// was written.
	Insufficient bool
	Match        checkoutattempts.Match
	// Warnings holds every step that failed. They never fail the delivery.
	Warnings error
}

// WarningCount is the number of failed steps.
func (r Result) WarningCount() int {
	return len(multierr.Errors(r.Warnings))
}

// Reconcile writes the outcome everywhere it belongs. Each step runs even
// when an earlier one failed. The returned error is reserved for outcomes
// that could never be applied.
func (s *Service) Reconcile(ctx context.Context, outcome Outcome, fields Fields) (Result, error) {
	if !outcome.Status.IsValid() {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown sale status").
			WithDetails(map[string]any{"status": outcome.Status})
	}
	result := Result{
		Status:         outcome.Status,
		RecoveryStatus: outcome.Status.RecoveryStatus(),
	}
	if !fields.HasKeys() {
		result.Insufficient = true
		return result, nil
	}

	email := customers.NormalizeEmail(fields.Email)
	ctx = s.logg.WithFields(ctx, map[string]any{"order_id": fields.OrderID, "status": outcome.Status.String()})
	now := s.now()

	var warnings error
	warn := func(step string, err error) {
		s.logg.WarnErr(s.logg.WithField(ctx, "step", step), "reconcile step failed", err)
		warnings = multierr.Append(warnings, pkgerrors.Wrap(pkgerrors.CodeDependency, err, step))
	}

	customer, err := s.customers.Upsert(ctx, customers.Contact{
		Email: email,
		Name:  fields.Name,
		Phone: fields.Phone,
		CPF:   fields.CPF,
	})
	if err != nil {
		warn("upsert customer", err)
	}

	sale := &models.Sale{
		AppmaxOrderID: fields.OrderID,
		CustomerEmail: email,
		CustomerName:  fields.Name,
		CustomerPhone: fields.Phone,
		CustomerCPF:   fields.CPF,
		Status:        outcome.Status,
		PaymentMethod: fields.PaymentMethod,
	}
	if customer != nil {
		sale.CustomerID = &customer.ID
	}
	if fields.Amount != nil {
		sale.TotalAmount = *fields.Amount
	}
	if outcome.FailureReason != "" {
		reason := outcome.FailureReason
		sale.FailureReason = &reason
	}
	if outcome.Status.IsSuccess() {
		sale.PaidAt = &now
	}
	if outcome.Status == enums.SaleStatusRefunded {
		sale.RefundedAt = &now
	}
	if err := s.sales.Upsert(ctx, sale, fields.Amount != nil); err != nil {
		warn("upsert sale", err)
	}

	match, err := s.attempts.ApplyOutcome(ctx, checkoutattempts.Outcome{
		OrderID:        fields.OrderID,
		Email:          email,
		Name:           fields.Name,
		Phone:          fields.Phone,
		CPF:            fields.CPF,
		Amount:         fields.Amount,
		PaymentMethod:  fields.PaymentMethod,
		Status:         outcome.Status,
		RecoveryStatus: result.RecoveryStatus,
		FailureReason:  outcome.FailureReason,
		At:             now,
	}, now.Add(-s.window))
	if err != nil {
		warn("apply checkout attempt", err)
	}
	result.Match = match

	switch {
	case outcome.Status.IsFailure():
		if _, err := s.carts.Reopen(ctx, email, now); err != nil {
			warn("reopen abandoned cart", err)
		}
	case outcome.Status.IsSuccess():
		if _, err := s.carts.MarkRecovered(ctx, email, now); err != nil {
			warn("recover abandoned cart", err)
		}
		if s.notifier != nil {
			s.notifier.NotifyPurchase(ctx, purchaseFrom(fields, email, s.currency, now))
		}
	}

	result.Warnings = warnings
	return result, nil
}

func purchaseFrom(fields Fields, email, currency string, at time.Time) conversions.Purchase {
	p := conversions.Purchase{
		OrderID:  fields.OrderID,
		Email:    email,
		Amount:   decimal.Zero,
		Currency: currency,
		At:       at,
	}
	if fields.Amount != nil {
		p.Amount = *fields.Amount
	}
	if fields.Name != nil {
		p.Name = *fields.Name
	}
	if fields.Phone != nil {
		p.Phone = *fields.Phone
	}
	if fields.PaymentMethod != nil {
		p.PaymentMethod = *fields.PaymentMethod
	}
	return p
}
