package enums

// AttemptStatus is a checkout attempt's lifecycle state: every sale status it
// can adopt from the gateway, plus abandoned for sessions nobody paid.
type AttemptStatus string

const (
	AttemptStatusPending   AttemptStatus = "pending"
	AttemptStatusAbandoned AttemptStatus = "abandoned"
)

// AttemptStatusFor mirrors a sale status onto the attempt.
func AttemptStatusFor(s SaleStatus) AttemptStatus {
	return AttemptStatus(s)
}

// IsOpen reports whether a late gateway outcome may still claim the attempt.
func (a AttemptStatus) IsOpen() bool {
	return a == AttemptStatusPending || a == AttemptStatusAbandoned
}

// String implements fmt.Stringer.
func (a AttemptStatus) String() string {
	return string(a)
}
