package enums

import "fmt"

// OrderStatus tracks an order through the payment lifecycle. Orders only
// move forward: pending -> paid -> transfers_issued -> settled, with failed
// as a terminal branch from any post-pending state.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusPaid            OrderStatus = "paid"
	OrderStatusTransfersIssued OrderStatus = "transfers_issued"
	OrderStatusSettled         OrderStatus = "settled"
	OrderStatusFailed          OrderStatus = "failed"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusTransfersIssued,
	OrderStatusSettled,
	OrderStatusFailed,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
