package checkoutattempts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gravadormedico/voicepen-backend/pkg/db/models"
	"github.com/gravadormedico/voicepen-backend/pkg/enums"
	"github.com/gravadormedico/voicepen-backend/pkg/pagination"
)

// Match names how a gateway outcome was tied to an attempt.
type Match string

const (
	MatchOrderID  Match = "order_id"
	MatchEmail    Match = "email"
	MatchInserted Match = "inserted"
)

// Outcome is what the gateway reported for an order, ready to be applied to
// the attempt that produced it.
type Outcome struct {
	OrderID        string
	Email          string
	Name           *string
	Phone          *string
	CPF            *string
	Amount         *decimal.Decimal
	PaymentMethod  *string
	Status         enums.SaleStatus
	RecoveryStatus enums.RecoveryStatus
	FailureReason  string
	At             time.Time
}

// Repository persists checkout attempts.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new attempt.
func (r *Repository) Create(ctx context.Context, attempt *models.CheckoutAttempt) error {
	if attempt == nil {
		return fmt.Errorf("attempt is required")
	}
	if len(attempt.CartItems) == 0 {
		attempt.CartItems = datatypes.JSON("[]")
	}
	if len(attempt.Metadata) == 0 {
		attempt.Metadata = datatypes.JSON("{}")
	}
	return r.db.WithContext(ctx).Create(attempt).Error
}

// ApplyOutcome updates every attempt already carrying the order id. When none
// does, it falls back to the most recent pending or abandoned attempt for the
// email created at or after since. When that also misses, a webhook-originated
// attempt with an empty cart is inserted.
func (r *Repository) ApplyOutcome(ctx context.Context, outcome Outcome, since time.Time) (Match, error) {
	if strings.TrimSpace(outcome.OrderID) == "" || strings.TrimSpace(outcome.Email) == "" {
		return "", fmt.Errorf("order id and email are required")
	}

	var match Match
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var byOrder []models.CheckoutAttempt
		if err := tx.Where("appmax_order_id = ?", outcome.OrderID).Find(&byOrder).Error; err != nil {
			return err
		}
		if len(byOrder) > 0 {
			match = MatchOrderID
			for i := range byOrder {
				if err := applyTo(tx, &byOrder[i], outcome); err != nil {
					return err
				}
			}
			return nil
		}

		var latest models.CheckoutAttempt
		err := tx.Where("customer_email = ? AND status IN ? AND created_at >= ?",
			outcome.Email,
			[]enums.AttemptStatus{enums.AttemptStatusPending, enums.AttemptStatusAbandoned},
			since,
		).
			Order("created_at DESC").
			First(&latest).Error
		switch {
		case err == nil:
			match = MatchEmail
			return applyTo(tx, &latest, outcome)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		match = MatchInserted
		return tx.Create(newFromOutcome(outcome)).Error
	})
	if err != nil {
		return "", err
	}
	return match, nil
}

func applyTo(tx *gorm.DB, attempt *models.CheckoutAttempt, outcome Outcome) error {
	metadata, err := mergeMetadata(attempt.Metadata, outcome.FailureReason)
	if err != nil {
		return err
	}

	updates := map[string]any{
		"appmax_order_id": outcome.OrderID,
		"status":          enums.AttemptStatusFor(outcome.Status),
		"recovery_status": outcome.RecoveryStatus,
		"metadata":        metadata,
		"updated_at":      outcome.At,
	}
	if outcome.PaymentMethod != nil {
		updates["payment_method"] = *outcome.PaymentMethod
	}
	if outcome.Amount != nil {
		updates["total_amount"] = *outcome.Amount
	}
	if outcome.Name != nil {
		updates["customer_name"] = *outcome.Name
	}
	if outcome.Phone != nil {
		updates["customer_phone"] = *outcome.Phone
	}
	if outcome.CPF != nil {
		updates["customer_cpf"] = *outcome.CPF
	}
	switch outcome.RecoveryStatus {
	case enums.RecoveryStatusRecovered:
		updates["converted_at"] = outcome.At
	case enums.RecoveryStatusAbandoned:
		updates["abandoned_at"] = outcome.At
	}

	return tx.Model(&models.CheckoutAttempt{}).
		Where("id = ?", attempt.ID).
		Updates(updates).Error
}

func newFromOutcome(outcome Outcome) *models.CheckoutAttempt {
	metadata, _ := mergeMetadata(datatypes.JSON(`{"source":"webhook"}`), outcome.FailureReason)
	attempt := &models.CheckoutAttempt{
		SessionID:      "webhook-" + outcome.OrderID,
		CustomerEmail:  outcome.Email,
		CustomerName:   outcome.Name,
		CustomerPhone:  outcome.Phone,
		CustomerCPF:    outcome.CPF,
		CartItems:      datatypes.JSON("[]"),
		AppmaxOrderID:  &outcome.OrderID,
		PaymentMethod:  outcome.PaymentMethod,
		Status:         enums.AttemptStatusFor(outcome.Status),
		RecoveryStatus: outcome.RecoveryStatus,
		Metadata:       metadata,
	}
	if outcome.Amount != nil {
		attempt.CartTotal = *outcome.Amount
		attempt.TotalAmount = *outcome.Amount
	}
	at := outcome.At
	switch outcome.RecoveryStatus {
	case enums.RecoveryStatusRecovered:
		attempt.ConvertedAt = &at
	case enums.RecoveryStatusAbandoned:
		attempt.AbandonedAt = &at
	}
	return attempt
}

// mergeMetadata records the failure reason on top of whatever the storefront
// stored at checkout time. A success clears a stale reason.
func mergeMetadata(raw datatypes.JSON, failureReason string) (datatypes.JSON, error) {
	fields := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fields); err != nil {
			fields = map[string]any{}
		}
	}
	if failureReason != "" {
		fields["failure_reason"] = failureReason
	} else {
		delete(fields, "failure_reason")
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(out), nil
}

// FindByID returns one attempt.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CheckoutAttempt, error) {
	var attempt models.CheckoutAttempt
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// MarkAbandoned flips pending attempts created before cutoff to abandoned and
// returns the rows it changed.
func (r *Repository) MarkAbandoned(ctx context.Context, cutoff, now time.Time, limit int) ([]models.CheckoutAttempt, error) {
	var rows []models.CheckoutAttempt
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("status = ? AND created_at < ?", enums.AttemptStatusPending, cutoff).
			Order("created_at")
		if limit > 0 {
			query = query.Limit(limit)
		}
		if err := query.Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(rows))
		for i := range rows {
			ids = append(ids, rows[i].ID)
			rows[i].Status = enums.AttemptStatusAbandoned
			rows[i].RecoveryStatus = enums.RecoveryStatusAbandoned
			rows[i].AbandonedAt = &now
		}
		return tx.Model(&models.CheckoutAttempt{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":          enums.AttemptStatusAbandoned,
				"recovery_status": enums.RecoveryStatusAbandoned,
				"abandoned_at":    now,
				"updated_at":      now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListFilter narrows the recovery listing.
type ListFilter struct {
	RecoveryStatus *enums.RecoveryStatus
	Email          string
}

// List returns attempts newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[models.CheckoutAttempt], error) {
	query := r.db.WithContext(ctx).Model(&models.CheckoutAttempt{})
	if filter.RecoveryStatus != nil {
		query = query.Where("recovery_status = ?", *filter.RecoveryStatus)
	}
	if email := strings.ToLower(strings.TrimSpace(filter.Email)); email != "" {
		query = query.Where("customer_email = ?", email)
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[models.CheckoutAttempt]{}, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.CheckoutAttempt
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return pagination.Page[models.CheckoutAttempt]{}, err
	}
	return pagination.Paginate(rows, params.Limit, func(a models.CheckoutAttempt) pagination.Cursor {
		return pagination.Cursor{CreatedAt: a.CreatedAt, ID: a.ID}
	}), nil
}

// RecoveryTotal counts attempts sharing a recovery status.
type RecoveryTotal struct {
	RecoveryStatus enums.RecoveryStatus `json:"recovery_status"`
	Count          int64                `json:"count"`
}

// RecoveryTotalsSince groups attempts created at or after since by recovery status.
func (r *Repository) RecoveryTotalsSince(ctx context.Context, since time.Time) ([]RecoveryTotal, error) {
	var rows []RecoveryTotal
	err := r.db.WithContext(ctx).
		Model(&models.CheckoutAttempt{}).
		Select("recovery_status, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("recovery_status").
		Order("recovery_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
