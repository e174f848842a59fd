package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gravadormedico/voicepen-backend/pkg/enums"
)

// AbandonedCart feeds the recovery campaigns; one open row per email.
type AbandonedCart struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerEmail string                    `gorm:"column:customer_email;not null;uniqueIndex:ux_abandoned_carts_email" json:"customer_email"`
	CustomerName  *string                   `gorm:"column:customer_name" json:"customer_name,omitempty"`
	CustomerPhone *string                   `gorm:"column:customer_phone" json:"customer_phone,omitempty"`
	CartTotal     decimal.Decimal           `gorm:"column:cart_total;type:numeric(12,2);not null;default:0" json:"cart_total"`
	Status        enums.AbandonedCartStatus `gorm:"column:status;not null" json:"status"`
	RecoveredAt   *time.Time                `gorm:"column:recovered_at" json:"recovered_at,omitempty"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AbandonedCart) TableName() string { return "abandoned_carts" }
