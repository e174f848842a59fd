package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadormedico/voicepen-backend/pkg/db/models"
	"github.com/gravadormedico/voicepen-backend/pkg/enums"
	"github.com/gravadormedico/voicepen-backend/pkg/pagination"
)

// Repository persists sales keyed by gateway order id.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes the current state of an order. On conflict only the columns
// the caller actually knows are overwritten: optional contact fields, amount,
// and lifecycle timestamps are skipped when nil or unset.
func (r *Repository) Upsert(ctx context.Context, sale *models.Sale, amountKnown bool) error {
	if sale == nil || strings.TrimSpace(sale.AppmaxOrderID) == "" {
		return fmt.Errorf("sale order id is required")
	}
	if !sale.Status.IsValid() {
		return fmt.Errorf("invalid sale status %q", sale.Status)
	}

	updates := []string{"customer_email", "status", "failure_reason", "updated_at"}
	optional := map[string]bool{
		"customer_id":    sale.CustomerID != nil,
		"customer_name":  sale.CustomerName != nil,
		"customer_phone": sale.CustomerPhone != nil,
		"customer_cpf":   sale.CustomerCPF != nil,
		"payment_method": sale.PaymentMethod != nil,
		"paid_at":        sale.PaidAt != nil,
		"refunded_at":    sale.RefundedAt != nil,
		"total_amount":   amountKnown,
	}
	for _, col := range []string{"customer_id", "customer_name", "customer_phone", "customer_cpf", "payment_method", "paid_at", "refunded_at", "total_amount"} {
		if optional[col] {
			updates = append(updates, col)
		}
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "appmax_order_id"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).
		Create(sale).Error
}

// FindByOrderID returns the sale for the gateway order id.
func (r *Repository) FindByOrderID(ctx context.Context, orderID string) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Where("appmax_order_id = ?", orderID).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListFilter narrows the admin sales listing.
type ListFilter struct {
	Status *enums.SaleStatus
	Email  string
}

// List returns sales newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[models.Sale], error) {
	query := r.db.WithContext(ctx).Model(&models.Sale{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if email := strings.ToLower(strings.TrimSpace(filter.Email)); email != "" {
		query = query.Where("customer_email = ?", email)
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[models.Sale]{}, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Sale
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return pagination.Page[models.Sale]{}, err
	}
	return pagination.Paginate(rows, params.Limit, func(s models.Sale) pagination.Cursor {
		return pagination.Cursor{CreatedAt: s.CreatedAt, ID: s.ID}
	}), nil
}

// StatusTotal aggregates sales sharing a status.
type StatusTotal struct {
	Status enums.SaleStatus `json:"status"`
	Count  int64            `json:"count"`
	Amount decimal.Decimal  `json:"amount"`
}

// TotalsSince groups sales created at or after since by status.
func (r *Repository) TotalsSince(ctx context.Context, since time.Time) ([]StatusTotal, error) {
	var rows []StatusTotal
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
		Where("created_at >= ?", since).
		Group("status").
		Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
