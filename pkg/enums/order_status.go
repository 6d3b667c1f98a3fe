package enums

import "fmt"

// OrderStatus maps to the order lifecycle states written by the saga services.
type OrderStatus string

const (
	OrderCreated           OrderStatus = "CREATED"
	OrderPaymentAuthorized OrderStatus = "PAYMENT_AUTHORIZED"
	OrderTicketIssued      OrderStatus = "TICKET_ISSUED"
	OrderCancelled         OrderStatus = "CANCELLED"
	OrderRefundPending     OrderStatus = "REFUND_PENDING"
)

var validOrderStatuses = []OrderStatus{
	OrderCreated,
	OrderPaymentAuthorized,
	OrderTicketIssued,
	OrderCancelled,
	OrderRefundPending,
}

// IsValid reports whether the value matches a known order status.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
