package enums

// Consumer names recorded in inbox rows. These strings are part of the wire
// contract: the workflow view matches inbox evidence by (consumer, event type).
const (
	ConsumerPaymentService = "payment-service"
	ConsumerTicketService  = "ticket-service"
	ConsumerOrderService   = "order-service"
)

// PaymentStatus values written by the payment service.
type PaymentStatus string

const (
	PaymentAuthorized PaymentStatus = "AUTHORIZED"
	PaymentFailedStat PaymentStatus = "FAILED"
)

// TicketStatus values written by the ticket service.
type TicketStatus string

const (
	TicketIssued TicketStatus = "ISSUED"
)
