package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gravadormedico/voicepen-backend/pkg/enums"
)

// Sale is the current state of one gateway order. Only the latest status is kept.
type Sale struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AppmaxOrderID string           `gorm:"column:appmax_order_id;not null;uniqueIndex:ux_sales_appmax_order_id" json:"appmax_order_id"`
	CustomerID    *uuid.UUID       `gorm:"column:customer_id;type:uuid" json:"customer_id,omitempty"`
	CustomerEmail string           `gorm:"column:customer_email;not null" json:"customer_email"`
	CustomerName  *string          `gorm:"column:customer_name" json:"customer_name,omitempty"`
	CustomerPhone *string          `gorm:"column:customer_phone" json:"customer_phone,omitempty"`
	CustomerCPF   *string          `gorm:"column:customer_cpf" json:"customer_cpf,omitempty"`
	TotalAmount   decimal.Decimal  `gorm:"column:total_amount;type:numeric(12,2);not null;default:0" json:"total_amount"`
	Status        enums.SaleStatus `gorm:"column:status;not null" json:"status"`
	PaymentMethod *string          `gorm:"column:payment_method" json:"payment_method,omitempty"`
	FailureReason *string          `gorm:"column:failure_reason" json:"failure_reason,omitempty"`
	PaidAt        *time.Time       `gorm:"column:paid_at" json:"paid_at,omitempty"`
	RefundedAt    *time.Time       `gorm:"column:refunded_at" json:"refunded_at,omitempty"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Sale) TableName() string { return "sales" }
