package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/gravadormedico/voicepen-backend/pkg/enums"
)

// CheckoutAttempt is one checkout session, opened by the storefront and
// closed by whatever the gateway reports for it.
type CheckoutAttempt struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SessionID      string               `gorm:"column:session_id;not null" json:"session_id"`
	CustomerEmail  string               `gorm:"column:customer_email;not null;index:idx_checkout_attempts_email_created,priority:1" json:"customer_email"`
	CustomerName   *string              `gorm:"column:customer_name" json:"customer_name,omitempty"`
	CustomerPhone  *string              `gorm:"column:customer_phone" json:"customer_phone,omitempty"`
	CustomerCPF    *string              `gorm:"column:customer_cpf" json:"customer_cpf,omitempty"`
	CartItems      datatypes.JSON       `gorm:"column:cart_items;type:jsonb" json:"cart_items"`
	CartTotal      decimal.Decimal      `gorm:"column:cart_total;type:numeric(12,2);not null;default:0" json:"cart_total"`
	TotalAmount    decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null;default:0" json:"total_amount"`
	AppmaxOrderID  *string              `gorm:"column:appmax_order_id;index:idx_checkout_attempts_appmax_order_id" json:"appmax_order_id,omitempty"`
	PaymentMethod  *string              `gorm:"column:payment_method" json:"payment_method,omitempty"`
	Status         enums.AttemptStatus  `gorm:"column:status;not null" json:"status"`
	RecoveryStatus enums.RecoveryStatus `gorm:"column:recovery_status;not null;default:'pending'" json:"recovery_status"`
	ConvertedAt    *time.Time           `gorm:"column:converted_at" json:"converted_at,omitempty"`
	AbandonedAt    *time.Time           `gorm:"column:abandoned_at" json:"abandoned_at,omitempty"`
	Metadata       datatypes.JSON       `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime;index:idx_checkout_attempts_email_created,priority:2" json:"created_at"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CheckoutAttempt) TableName() string { return "checkout_attempts" }
