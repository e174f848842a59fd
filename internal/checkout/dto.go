package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gravadormedico/voicepen-backend/pkg/enums"
)

// BeginRequest is what the storefront sends when the buyer reaches payment.
type BeginRequest struct {
	SessionID     string            `json:"session_id" validate:"required,max=128"`
	Email         string            `json:"email" validate:"required,email,max=254"`
	Name          *string           `json:"name,omitempty" validate:"omitempty,max=160"`
	Phone         *string           `json:"phone,omitempty" validate:"omitempty,min=8,max=20"`
	CPF           *string           `json:"cpf,omitempty" validate:"omitempty,numeric,len=11"`
	PaymentMethod *string           `json:"payment_method,omitempty" validate:"omitempty,oneof=credit_card pix boleto"`
	Items         []CartItem        `json:"items" validate:"required,min=1,max=50,dive"`
	UTM           map[string]string `json:"utm,omitempty" validate:"omitempty,max=10"`
}

// CartItem is one line of the cart snapshot.
type CartItem struct {
	SKU       string          `json:"sku" validate:"required,max=64"`
	Name      string          `json:"name" validate:"required,max=160"`
	Quantity  int             `json:"quantity" validate:"min=1,max=100"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// BeginResponse identifies the attempt opened for the session.
type BeginResponse struct {
	AttemptID      uuid.UUID            `json:"attempt_id"`
	Status         enums.AttemptStatus  `json:"status"`
	RecoveryStatus enums.RecoveryStatus `json:"recovery_status"`
	CartTotal      decimal.Decimal      `json:"cart_total"`
	CreatedAt      time.Time            `json:"created_at"`
}
