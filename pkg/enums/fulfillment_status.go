package enums

import "fmt"

// FulfillmentStatus tracks the physical processing stage of an order.
type FulfillmentStatus string

const (
	FulfillmentStatusNewOrder  FulfillmentStatus = "new_order"
	FulfillmentStatusPacking   FulfillmentStatus = "packing"
	FulfillmentStatusShipped   FulfillmentStatus = "shipped"
	FulfillmentStatusDelivered FulfillmentStatus = "delivered"
)

// HistoryEntryNote is the sentinel status recorded for free-text history rows
// that are not tied to a fulfillment transition.
const HistoryEntryNote = "note"

var validFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentStatusNewOrder,
	FulfillmentStatusPacking,
	FulfillmentStatusShipped,
	FulfillmentStatusDelivered,
}

// String implements fmt.Stringer.
func (f FulfillmentStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentStatus.
func (f FulfillmentStatus) IsValid() bool {
	for _, candidate := range validFulfillmentStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFulfillmentStatus converts raw input into a FulfillmentStatus.
func ParseFulfillmentStatus(value string) (FulfillmentStatus, error) {
	for _, candidate := range validFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment status %q", value)
}
