package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/gravadormedico/voicepen-backend/pkg/errors"
)

// PriceViolation describes a cart line whose price cannot be charged.
type PriceViolation struct {
	SKU       string `json:"sku"`
	UnitPrice string `json:"unit_price"`
}

// CartTotal sums quantity times unit price over every line, rounded to cents.
// Negative prices are rejected with one violation per offending line.
func CartTotal(items []CartItem) (decimal.Decimal, error) {
	total := decimal.Zero
	var violations []PriceViolation
	for _, item := range items {
		if item.UnitPrice.IsNegative() {
			violations = append(violations, PriceViolation{SKU: item.SKU, UnitPrice: item.UnitPrice.String()})
			continue
		}
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if len(violations) > 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid unit price for %d item(s)", len(violations))).WithDetails(map[string]any{
			"violations": violations,
		})
	}
	return total.Round(2), nil
}
