package enums

import "fmt"

// NotificationEvent selects which templated message the dispatcher renders.
type NotificationEvent string

const (
	EventOrderCreated    NotificationEvent = "order_created"
	EventSalesAlert      NotificationEvent = "sales_alert"
	EventStatusPacking   NotificationEvent = "status_packing"
	EventStatusShipped   NotificationEvent = "status_shipped"
	EventStatusDelivered NotificationEvent = "status_delivered"
	EventPaymentPartial  NotificationEvent = "payment_partial"
	EventPaymentFull     NotificationEvent = "payment_full"
	EventPaymentRefunded NotificationEvent = "payment_refunded"
	EventPaymentReminder NotificationEvent = "payment_reminder"
	EventOrderNote       NotificationEvent = "order_note"
)

var validNotificationEvents = []NotificationEvent{
	EventOrderCreated,
	EventSalesAlert,
	EventStatusPacking,
	EventStatusShipped,
	EventStatusDelivered,
	EventPaymentPartial,
	EventPaymentFull,
	EventPaymentRefunded,
	EventPaymentReminder,
	EventOrderNote,
}

// String implements fmt.Stringer.
func (n NotificationEvent) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationEvent.
func (n NotificationEvent) IsValid() bool {
	for _, candidate := range validNotificationEvents {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationEvent converts raw input into a NotificationEvent.
func ParseNotificationEvent(value string) (NotificationEvent, error) {
	for _, candidate := range validNotificationEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification event %q", value)
}
