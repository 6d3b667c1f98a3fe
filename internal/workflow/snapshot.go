package workflow

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/skybooklabs/skybook-backend/internal/orders"
	"github.com/skybooklabs/skybook-backend/pkg/db/models"
	"github.com/skybooklabs/skybook-backend/pkg/enums"
)

// Snapshot is the read model the derivation engine consumes: one order plus
// every saga artifact correlated with it, captured in a single read. It is
// treated as an immutable value; a fresh poll produces a fresh Snapshot,
// never a merge of two.
type Snapshot struct {
	Order   *orders.OrderDTO `json:"order"`
	Outbox  []OutboxEvent    `json:"outbox"`
	Inbox   []InboxEvent     `json:"inbox"`
	Payment *Payment         `json:"payment,omitempty"`
	Ticket  *Ticket          `json:"ticket,omitempty"`
}

// OutboxEvent is the wire shape of one outbox row.
type OutboxEvent struct {
	ID            string          `json:"id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	Status        string          `json:"status"`
	CorrelationID string          `json:"correlation_id"`
	CausationID   *string         `json:"causation_id,omitempty"`
	Producer      string          `json:"producer"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InboxEvent is the wire shape of one consumer dedup row.
type InboxEvent struct {
	Consumer      string    `json:"consumer"`
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	CorrelationID string    `json:"correlation_id"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// Payment is the wire shape of the payment row, present once the payment
// service has run its local step.
type Payment struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ticket is the wire shape of the ticket row. Route fields may be empty, in
// which case the view falls back to the order's route.
type Ticket struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	FromCity   string    `json:"from_city"`
	ToCity     string    `json:"to_city"`
	TravelDate string    `json:"travel_date"`
	TravelTime string    `json:"travel_time"`
	Airline    string    `json:"airline"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FindOutbox returns the first outbox event of the given type, or nil.
func (s *Snapshot) FindOutbox(eventType enums.EventType) *OutboxEvent {
	if s == nil {
		return nil
	}
	for i := range s.Outbox {
		if s.Outbox[i].EventType == string(eventType) {
			return &s.Outbox[i]
		}
	}
	return nil
}

// FindInbox returns the first inbox row for the given consumer and event
// type, or nil.
func (s *Snapshot) FindInbox(consumer string, eventType enums.EventType) *InboxEvent {
	if s == nil {
		return nil
	}
	for i := range s.Inbox {
		if s.Inbox[i].Consumer == consumer && s.Inbox[i].EventType == string(eventType) {
			return &s.Inbox[i]
		}
	}
	return nil
}

func uuidPtrToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	v := id.String()
	return &v
}

// NewOutboxEvent maps a stored outbox row onto the wire shape.
func NewOutboxEvent(row models.OutboxEvent) OutboxEvent {
	return OutboxEvent{
		ID:            row.ID.String(),
		EventType:     string(row.EventType),
		Payload:       row.Payload,
		Status:        string(row.Status),
		CorrelationID: row.CorrelationID.String(),
		CausationID:   uuidPtrToString(row.CausationID),
		Producer:      row.Producer,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

// NewInboxEvent maps a stored inbox row onto the wire shape.
func NewInboxEvent(row models.InboxEvent) InboxEvent {
	return InboxEvent{
		Consumer:      row.Consumer,
		EventID:       row.EventID.String(),
		EventType:     string(row.EventType),
		CorrelationID: row.CorrelationID.String(),
		ProcessedAt:   row.ProcessedAt,
	}
}

// NewPayment maps a stored payment row onto the wire shape.
func NewPayment(row *models.Payment) *Payment {
	if row == nil {
		return nil
	}
	return &Payment{
		ID:        row.ID.String(),
		OrderID:   row.OrderID.String(),
		Status:    string(row.Status),
		Amount:    row.Amount.InexactFloat64(),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// NewTicket maps a stored ticket row onto the wire shape.
func NewTicket(row *models.Ticket) *Ticket {
	if row == nil {
		return nil
	}
	return &Ticket{
		ID:         row.ID.String(),
		OrderID:    row.OrderID.String(),
		FromCity:   row.FromCity,
		ToCity:     row.ToCity,
		TravelDate: row.TravelDate,
		TravelTime: row.TravelTime,
		Airline:    row.Airline,
		Status:     string(row.Status),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
