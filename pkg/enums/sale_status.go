package enums

import (
	"fmt"
	"strings"
)

// SaleStatus is the internal payment taxonomy every gateway event collapses into.
type SaleStatus string

const (
	SaleStatusApproved   SaleStatus = "approved"
	SaleStatusPaid       SaleStatus = "paid"
	SaleStatusPending    SaleStatus = "pending"
	SaleStatusRefused    SaleStatus = "refused"
	SaleStatusCancelled  SaleStatus = "cancelled"
	SaleStatusRefunded   SaleStatus = "refunded"
	SaleStatusExpired    SaleStatus = "expired"
	SaleStatusChargeback SaleStatus = "chargeback"
)

var validSaleStatuses = []SaleStatus{
	SaleStatusApproved,
	SaleStatusPaid,
	SaleStatusPending,
	SaleStatusRefused,
	SaleStatusCancelled,
	SaleStatusRefunded,
	SaleStatusExpired,
	SaleStatusChargeback,
}

// successStatuses and failureStatuses are raw vocabularies, wider than the
// enum: gateways still send "completed", "rejected" or "failed".
var successStatuses = map[string]struct{}{
	"approved":  {},
	"paid":      {},
	"completed": {},
}

var failureStatuses = map[string]struct{}{
	"refused":    {},
	"rejected":   {},
	"cancelled":  {},
	"expired":    {},
	"failed":     {},
	"chargeback": {},
}

// String implements fmt.Stringer.
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleStatus.
func (s SaleStatus) IsValid() bool {
	for _, candidate := range validSaleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsSuccess reports whether the sale converted.
func (s SaleStatus) IsSuccess() bool {
	return IsSuccessStatus(string(s))
}

// IsFailure reports whether the sale ended without payment.
func (s SaleStatus) IsFailure() bool {
	return IsFailureStatus(string(s))
}

// RecoveryStatus derives the checkout attempt classification for the sale.
func (s SaleStatus) RecoveryStatus() RecoveryStatus {
	switch {
	case s.IsSuccess():
		return RecoveryStatusRecovered
	case s.IsFailure():
		return RecoveryStatusAbandoned
	default:
		return RecoveryStatusPending
	}
}

// IsSuccessStatus classifies a raw status string.
func IsSuccessStatus(value string) bool {
	_, ok := successStatuses[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// IsFailureStatus classifies a raw status string.
func IsFailureStatus(value string) bool {
	_, ok := failureStatuses[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// ParseSaleStatus converts raw input into a SaleStatus.
func ParseSaleStatus(value string) (SaleStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validSaleStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale status %q", value)
}
