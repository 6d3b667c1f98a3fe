package workflow

import (
	"fmt"
	"time"

	"github.com/skybooklabs/skybook-backend/pkg/enums"
)

// Topic the relay publishes to; shown in the step-2 detail.
const ordersTopic = "orders-events"

// DeriveSteps maps one snapshot onto the fixed seven-step workflow view. It
// is pure: no I/O, no state, identical output for identical input, safe to
// call concurrently on the same snapshot.
//
// Each step is evaluated against its own evidence, independently of the
// others. A step whose evidence is present is done even when an earlier
// step's evidence is missing from the snapshot; the view is an honest
// projection of whatever the read model reports, not a linear state machine.
func DeriveSteps(snap *Snapshot) []Step {
	if snap == nil || snap.Order == nil {
		return nil
	}

	outOrderCreated := snap.FindOutbox(enums.EventOrderCreated)
	inPaymentOrderCreated := snap.FindInbox(enums.ConsumerPaymentService, enums.EventOrderCreated)
	outPaymentAuthorized := snap.FindOutbox(enums.EventPaymentAuthorized)
	inTicketPaymentAuthorized := snap.FindInbox(enums.ConsumerTicketService, enums.EventPaymentAuthorized)
	outTicketIssued := snap.FindOutbox(enums.EventTicketIssued)
	inOrderTicketIssued := snap.FindInbox(enums.ConsumerOrderService, enums.EventTicketIssued)

	order := snap.Order

	steps := make([]Step, 0, StepCount)
	add := func(done, active bool, ts time.Time, detail Detail) {
		i := len(steps)
		steps = append(steps, Step{
			Index:     i,
			Title:     titleWithTime(i, ts),
			Status:    statusOf(done, active),
			Badges:    stepBadges[i],
			Rationale: stepRationales[i],
			Detail:    detail,
		})
	}

	// 1. API wrote the order and its OrderCreated event in one transaction.
	add(outOrderCreated != nil, false,
		outboxCreatedAt(outOrderCreated),
		orderCreatedDetail(snap, outOrderCreated))

	// 2. Relay published OrderCreated.
	add(isPublished(outOrderCreated), outOrderCreated != nil,
		outboxUpdatedAt(outOrderCreated),
		relayDetail(outOrderCreated))

	// 3. Payment service consumed OrderCreated.
	add(inPaymentOrderCreated != nil, isPublished(outOrderCreated),
		inboxProcessedAt(inPaymentOrderCreated),
		paymentConsumeDetail(snap, inPaymentOrderCreated))

	// 4. Payment service wrote PaymentAuthorized.
	add(outPaymentAuthorized != nil, inPaymentOrderCreated != nil,
		outboxCreatedAt(outPaymentAuthorized),
		outboxEventDetail(outPaymentAuthorized))

	// 5. Ticket service consumed PaymentAuthorized and issued the ticket.
	add(inTicketPaymentAuthorized != nil, isPublished(outPaymentAuthorized),
		inboxProcessedAt(inTicketPaymentAuthorized),
		ticketDetail(snap))

	// 6. Ticket service wrote TicketIssued.
	add(outTicketIssued != nil, inTicketPaymentAuthorized != nil,
		outboxCreatedAt(outTicketIssued),
		outboxEventDetail(outTicketIssued))

	// 7. Order service finalized the order. Completion checks the order's own
	// status rather than the inbox row: the terminal status is the externally
	// visible contract.
	add(order.Status == string(enums.OrderTicketIssued), outTicketIssued != nil,
		inboxProcessedAt(inOrderTicketIssued),
		finalStatusDetail(order.Status))

	return steps
}

func statusOf(done, active bool) Status {
	switch {
	case done:
		return StatusDone
	case active:
		return StatusActive
	default:
		return StatusPending
	}
}

func titleWithTime(index int, ts time.Time) string {
	title := stepTitles[index]
	if ts.IsZero() {
		return title
	}
	return fmt.Sprintf("%s • %s", title, ts.Format("15:04:05"))
}

func isPublished(e *OutboxEvent) bool {
	return e != nil && e.Status == string(enums.OutboxProcessed)
}

func outboxCreatedAt(e *OutboxEvent) time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.CreatedAt
}

func outboxUpdatedAt(e *OutboxEvent) time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.UpdatedAt
}

func inboxProcessedAt(e *InboxEvent) time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.ProcessedAt
}

func orderCreatedDetail(snap *Snapshot, out *OutboxEvent) Detail {
	if out == nil {
		return Detail{Waiting: "Waiting for the OrderCreated outbox row."}
	}
	order := snap.Order
	correlation := out.CorrelationID
	if correlation == "" {
		correlation = order.ID
	}
	return Detail{Sections: []Section{
		{
			Title: "orders row",
			Fields: []Field{
				{Key: "id", Value: orValue(order.ID)},
				{Key: "user_id", Value: orValue(order.UserID)},
				{Key: "status", Value: orValue(order.Status)},
				{Key: "total_amount", Value: fmt.Sprintf("%.2f", order.TotalAmount)},
				{Key: "from_city", Value: orValue(order.FromCity)},
				{Key: "to_city", Value: orValue(order.ToCity)},
				{Key: "travel_date", Value: orValue(order.TravelDate)},
				{Key: "travel_time", Value: orValue(order.TravelTime)},
				{Key: "airline", Value: orValue(order.Airline)},
				{Key: "created_at", Value: order.CreatedAt.Format(time.RFC3339)},
			},
		},
		{
			Title: "outbox row (same transaction)",
			Fields: []Field{
				{Key: "id", Value: orValue(out.ID)},
				{Key: "event_type", Value: orValue(out.EventType)},
				{Key: "correlation_id", Value: orValue(correlation)},
				{Key: "producer", Value: orValue(out.Producer)},
				{Key: "status", Value: orValue(out.Status)},
			},
			Note: "The outbox payload carries the order JSON; the fields above come from the orders row.",
		},
	}}
}

func relayDetail(out *OutboxEvent) Detail {
	if out == nil {
		return Detail{}
	}
	key := out.CorrelationID
	if key == "" {
		key = out.ID
	}
	return Detail{Sections: []Section{
		{
			Fields: []Field{
				{Key: "outbox.status", Value: orValue(out.Status)},
				{Key: "broker.topic", Value: ordersTopic},
				{Key: "broker.key", Value: orValue(key)},
				{Key: "message", Value: "envelope: {id, type, correlation_id, producer, occurred_at, payload}"},
			},
			Note: "The relay claims a batch with FOR UPDATE SKIP LOCKED, marks it processing, publishes, then marks it processed.",
		},
	}}
}

func paymentConsumeDetail(snap *Snapshot, in *InboxEvent) Detail {
	if in == nil {
		return Detail{Waiting: "Waiting for payment-service to process OrderCreated."}
	}
	sections := []Section{
		{
			Title: "inbox_events row",
			Fields: []Field{
				{Key: "consumer", Value: orValue(in.Consumer)},
				{Key: "event_id", Value: orValue(in.EventID)},
				{Key: "event_type", Value: orValue(in.EventType)},
				{Key: "correlation_id", Value: orValue(in.CorrelationID)},
				{Key: "processed_at", Value: in.ProcessedAt.Format(time.RFC3339)},
			},
		},
	}
	if p := snap.Payment; p != nil {
		sections = append(sections, Section{
			Title: "payments row",
			Fields: []Field{
				{Key: "id", Value: orValue(p.ID)},
				{Key: "order_id", Value: orValue(p.OrderID)},
				{Key: "status", Value: orValue(p.Status)},
				{Key: "amount", Value: fmt.Sprintf("%.2f", p.Amount)},
			},
		})
	} else {
		sections = append(sections, Section{
			Title: "payments row",
			Note:  "Waiting for the payments row.",
		})
	}
	return Detail{Sections: sections}
}

func outboxEventDetail(out *OutboxEvent) Detail {
	if out == nil {
		return Detail{}
	}
	causation := missingValue
	if out.CausationID != nil {
		causation = *out.CausationID
	}
	return Detail{Sections: []Section{
		{
			Fields: []Field{
				{Key: "event_type", Value: orValue(out.EventType)},
				{Key: "correlation_id", Value: orValue(out.CorrelationID)},
				{Key: "causation_id", Value: causation},
				{Key: "producer", Value: orValue(out.Producer)},
				{Key: "status", Value: orValue(out.Status)},
			},
		},
	}}
}

// ticketDetail prefers the ticket's route fields and falls back to the
// order's when the ticket row omits them.
func ticketDetail(snap *Snapshot) Detail {
	t := snap.Ticket
	if t == nil {
		return Detail{Waiting: "Waiting for the ticket issue and the tickets row."}
	}
	order := snap.Order
	pick := func(primary, fallback string) string {
		if primary != "" {
			return primary
		}
		return orValue(fallback)
	}
	return Detail{Sections: []Section{
		{
			Title: "tickets row",
			Fields: []Field{
				{Key: "id", Value: orValue(t.ID)},
				{Key: "order_id", Value: orValue(t.OrderID)},
				{Key: "from_city", Value: pick(t.FromCity, order.FromCity)},
				{Key: "to_city", Value: pick(t.ToCity, order.ToCity)},
				{Key: "travel_date", Value: pick(t.TravelDate, order.TravelDate)},
				{Key: "travel_time", Value: pick(t.TravelTime, order.TravelTime)},
				{Key: "airline", Value: pick(t.Airline, order.Airline)},
				{Key: "status", Value: orValue(t.Status)},
			},
		},
	}}
}

func finalStatusDetail(status string) Detail {
	return Detail{Sections: []Section{
		{
			Fields: []Field{
				{Key: "order.status", Value: orValue(status)},
			},
		},
	}}
}
