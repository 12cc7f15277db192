package enums

import "fmt"

// PaymentTrackingStatus labels how much of an order's total has been paid,
// independently of the fulfillment stage.
type PaymentTrackingStatus string

const (
	PaymentTrackingAwaiting      PaymentTrackingStatus = "Awaiting payment"
	PaymentTrackingPartiallyPaid PaymentTrackingStatus = "Partially Paid"
	PaymentTrackingFullyPaid     PaymentTrackingStatus = "Fully Paid"
	PaymentTrackingRefunded      PaymentTrackingStatus = "Refunded"
)

var validPaymentTrackingStatuses = []PaymentTrackingStatus{
	PaymentTrackingAwaiting,
	PaymentTrackingPartiallyPaid,
	PaymentTrackingFullyPaid,
	PaymentTrackingRefunded,
}

// String implements fmt.Stringer.
func (p PaymentTrackingStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentTrackingStatus.
func (p PaymentTrackingStatus) IsValid() bool {
	for _, candidate := range validPaymentTrackingStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentTrackingStatus converts raw input into a PaymentTrackingStatus.
func ParsePaymentTrackingStatus(value string) (PaymentTrackingStatus, error) {
	for _, candidate := range validPaymentTrackingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment tracking status %q", value)
}
