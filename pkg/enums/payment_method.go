package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod describes how the buyer paid at the gateway.
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodPix        PaymentMethod = "pix"
	PaymentMethodBoleto     PaymentMethod = "boleto"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCreditCard,
	PaymentMethodPix,
	PaymentMethodBoleto,
}

var paymentMethodAliases = map[string]PaymentMethod{
	"credit_card": PaymentMethodCreditCard,
	"creditcard":  PaymentMethodCreditCard,
	"credit-card": PaymentMethodCreditCard,
	"card":        PaymentMethodCreditCard,
	"cartao":      PaymentMethodCreditCard,
	"cartão":      PaymentMethodCreditCard,
	"pix":         PaymentMethodPix,
	"boleto":      PaymentMethodBoleto,
	"billet":      PaymentMethodBoleto,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod, accepting the
// gateway's aliases.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	if method, ok := paymentMethodAliases[strings.ToLower(strings.TrimSpace(value))]; ok {
		return method, nil
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
