package enums

import "fmt"

// EventType identifies the saga events carried through the outbox.
// The values are part of the wire contract consumed by the workflow view.
type EventType string

const (
	EventOrderCreated      EventType = "OrderCreated"
	EventPaymentAuthorized EventType = "PaymentAuthorized"
	EventTicketIssued      EventType = "TicketIssued"
	EventPaymentFailed     EventType = "PaymentFailed"
	EventRefundInitiated   EventType = "RefundInitiated"
)

var validEventTypes = []EventType{
	EventOrderCreated,
	EventPaymentAuthorized,
	EventTicketIssued,
	EventPaymentFailed,
	EventRefundInitiated,
}

// IsValid reports whether the value matches a known saga event type.
func (e EventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEventType converts raw input into EventType.
func ParseEventType(value string) (EventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
