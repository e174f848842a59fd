package enums

// AbandonedCartStatus tracks the recovery funnel for carts left behind.
type AbandonedCartStatus string

const (
	AbandonedCartStatusAbandoned AbandonedCartStatus = "abandoned"
	AbandonedCartStatusRecovered AbandonedCartStatus = "recovered"
)

// String implements fmt.Stringer.
func (a AbandonedCartStatus) String() string {
	return string(a)
}
