package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/gravadormedico/voicepen-backend/internal/customers"
	"github.com/gravadormedico/voicepen-backend/pkg/db/models"
	"github.com/gravadormedico/voicepen-backend/pkg/enums"
	pkgerrors "github.com/gravadormedico/voicepen-backend/pkg/errors"
	"github.com/gravadormedico/voicepen-backend/pkg/logger"
)

// Service opens checkout attempts for storefront sessions.
type Service interface {
	Begin(ctx context.Context, req BeginRequest) (*BeginResponse, error)
}

type attemptCreator interface {
	Create(ctx context.Context, attempt *models.CheckoutAttempt) error
}

type service struct {
	attempts attemptCreator
	logg     *logger.Logger
}

// NewService builds the begin-checkout service.
func NewService(attempts attemptCreator, logg *logger.Logger) (Service, error) {
	if attempts == nil {
		return nil, fmt.Errorf("checkout attempts repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{attempts: attempts, logg: logg}, nil
}

func (s *service) Begin(ctx context.Context, req BeginRequest) (*BeginResponse, error) {
	total, err := CartTotal(req.Items)
	if err != nil {
		return nil, err
	}
	items, err := json.Marshal(req.Items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart items")
	}
	metadata, err := json.Marshal(map[string]any{"source": "checkout", "utm": utmOrEmpty(req.UTM)})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode metadata")
	}

	attempt := &models.CheckoutAttempt{
		SessionID:      strings.TrimSpace(req.SessionID),
		CustomerEmail:  customers.NormalizeEmail(req.Email),
		CustomerName:   trimmed(req.Name),
		CustomerPhone:  trimmed(req.Phone),
		CustomerCPF:    trimmed(req.CPF),
		CartItems:      datatypes.JSON(items),
		CartTotal:      total,
		TotalAmount:    total,
		PaymentMethod:  paymentMethod(req.PaymentMethod),
		Status:         enums.AttemptStatusPending,
		RecoveryStatus: enums.RecoveryStatusPending,
		Metadata:       datatypes.JSON(metadata),
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout attempt")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"attempt_id": attempt.ID.String(),
		"session_id": attempt.SessionID,
	})
	s.logg.Info(ctx, "checkout.attempt_opened")

	return &BeginResponse{
		AttemptID:      attempt.ID,
		Status:         attempt.Status,
		RecoveryStatus: attempt.RecoveryStatus,
		CartTotal:      attempt.CartTotal,
		CreatedAt:      attempt.CreatedAt,
	}, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

func paymentMethod(value *string) *string {
	if value == nil {
		return nil
	}
	method, err := enums.ParsePaymentMethod(*value)
	if err != nil {
		return trimmed(value)
	}
	v := method.String()
	return &v
}

func utmOrEmpty(utm map[string]string) map[string]string {
	if utm == nil {
		return map[string]string{}
	}
	return utm
}
