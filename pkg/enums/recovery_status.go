package enums

import "fmt"

// RecoveryStatus classifies a checkout attempt for the recovery dashboard.
type RecoveryStatus string

const (
	RecoveryStatusPending   RecoveryStatus = "pending"
	RecoveryStatusRecovered RecoveryStatus = "recovered"
	RecoveryStatusAbandoned RecoveryStatus = "abandoned"
)

var validRecoveryStatuses = []RecoveryStatus{
	RecoveryStatusPending,
	RecoveryStatusRecovered,
	RecoveryStatusAbandoned,
}

// String implements fmt.Stringer.
func (r RecoveryStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RecoveryStatus.
func (r RecoveryStatus) IsValid() bool {
	for _, candidate := range validRecoveryStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRecoveryStatus converts raw input into a RecoveryStatus.
func ParseRecoveryStatus(value string) (RecoveryStatus, error) {
	for _, candidate := range validRecoveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recovery status %q", value)
}
