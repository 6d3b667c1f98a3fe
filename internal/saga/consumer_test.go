package saga

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skybooklabs/skybook-backend/pkg/db/models"
	"github.com/skybooklabs/skybook-backend/pkg/enums"
	"github.com/skybooklabs/skybook-backend/pkg/logger"
	"github.com/skybooklabs/skybook-backend/pkg/outbox"
)

type stubHandler struct {
	consumer string
	accepts  []enums.EventType
	applied  []Envelope
	err      error
}

func (s *stubHandler) Consumer() string { return s.consumer }

func (s *stubHandler) Accepts(eventType enums.EventType) bool {
	for _, t := range s.accepts {
		if t == eventType {
			return true
		}
	}
	return false
}

func (s *stubHandler) Apply(ctx context.Context, tx *gorm.DB, env Envelope) error {
	if s.err != nil {
		return s.err
	}
	s.applied = append(s.applied, env)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubInbox struct {
	seen map[string]bool
	err  error
}

func newStubInbox() *stubInbox {
	return &stubInbox{seen: map[string]bool{}}
}

func (s *stubInbox) SaveIfNotExists(ctx context.Context, tx *gorm.DB, row models.InboxEvent) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	key := fmt.Sprintf("%s|%s", row.Consumer, row.EventID)
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func newTestConsumer(handler Handler, inbox inboxRepository) *Consumer {
	return &Consumer{
		handler: handler,
		tx:      stubTxRunner{},
		inbox:   inbox,
		logg:    logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard}),
		latency: func() {},
	}
}

func buildMessage(t *testing.T, msg outbox.Message) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return &pubsub.Message{Data: data}
}

func TestConsumerAppliesNewEvent(t *testing.T) {
	handler := &stubHandler{consumer: "payment-service", accepts: []enums.EventType{enums.EventOrderCreated}}
	c := newTestConsumer(handler, newStubInbox())

	correlationID := uuid.New()
	msg := buildMessage(t, outbox.Message{
		ID:            uuid.NewString(),
		Type:          "OrderCreated",
		CorrelationID: correlationID.String(),
		Producer:      "order-service",
		OccurredAt:    time.Now().UTC(),
		Payload:       json.RawMessage(`{"id":"x"}`),
	})

	result := c.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(handler.applied) != 1 {
		t.Fatalf("handler applied %d times, want 1", len(handler.applied))
	}
	if handler.applied[0].CorrelationID != correlationID {
		t.Fatalf("correlation id mismatch")
	}
}

func TestConsumerSkipsDuplicateDelivery(t *testing.T) {
	handler := &stubHandler{consumer: "payment-service", accepts: []enums.EventType{enums.EventOrderCreated}}
	c := newTestConsumer(handler, newStubInbox())

	msg := buildMessage(t, outbox.Message{
		ID:            uuid.NewString(),
		Type:          "OrderCreated",
		CorrelationID: uuid.NewString(),
		Producer:      "order-service",
		Payload:       json.RawMessage(`{}`),
	})

	first := c.process(context.Background(), msg)
	second := c.process(context.Background(), msg)

	if !first.ack || !second.ack {
		t.Fatalf("expected both deliveries acked")
	}
	if len(handler.applied) != 1 {
		t.Fatalf("handler applied %d times, want exactly 1", len(handler.applied))
	}
}

func TestConsumerIgnoresOtherEventTypes(t *testing.T) {
	handler := &stubHandler{consumer: "ticket-service", accepts: []enums.EventType{enums.EventPaymentAuthorized}}
	inbox := newStubInbox()
	c := newTestConsumer(handler, inbox)

	msg := buildMessage(t, outbox.Message{
		ID:            uuid.NewString(),
		Type:          "OrderCreated",
		CorrelationID: uuid.NewString(),
		Payload:       json.RawMessage(`{}`),
	})

	result := c.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("expected ack for ignored event type")
	}
	if len(handler.applied) != 0 {
		t.Fatalf("handler should not run")
	}
	if len(inbox.seen) != 0 {
		t.Fatalf("no inbox row should be written for ignored events")
	}
}

func TestConsumerAcksPoisonMessages(t *testing.T) {
	handler := &stubHandler{consumer: "payment-service", accepts: []enums.EventType{enums.EventOrderCreated}}
	c := newTestConsumer(handler, newStubInbox())

	for _, data := range [][]byte{
		[]byte(`not json`),
		[]byte(`{"id":"not-a-uuid","type":"OrderCreated","correlation_id":"also-bad"}`),
	} {
		result := c.process(context.Background(), &pubsub.Message{Data: data})
		if !result.ack || result.nack {
			t.Fatalf("poison message should be acked, got %+v", result)
		}
	}
	if len(handler.applied) != 0 {
		t.Fatalf("handler should not run on poison messages")
	}
}

func TestConsumerNacksOnHandlerFailure(t *testing.T) {
	handler := &stubHandler{
		consumer: "payment-service",
		accepts:  []enums.EventType{enums.EventOrderCreated},
		err:      errors.New("db down"),
	}
	c := newTestConsumer(handler, newStubInbox())

	msg := buildMessage(t, outbox.Message{
		ID:            uuid.NewString(),
		Type:          "OrderCreated",
		CorrelationID: uuid.NewString(),
		Payload:       json.RawMessage(`{}`),
	})

	result := c.process(context.Background(), msg)
	if !result.nack {
		t.Fatalf("expected nack on handler failure, got %+v", result)
	}
}

func TestDecodeEnvelopeCausation(t *testing.T) {
	causation := uuid.NewString()
	data, _ := json.Marshal(outbox.Message{
		ID:            uuid.NewString(),
		Type:          "PaymentAuthorized",
		CorrelationID: uuid.NewString(),
		CausationID:   causation,
		Producer:      "payment-service",
		Payload:       json.RawMessage(`{}`),
	})

	env, err := decodeEnvelope(data)
	if err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}
	if env.CausationID == nil || env.CausationID.String() != causation {
		t.Fatalf("causation id not parsed")
	}
}
