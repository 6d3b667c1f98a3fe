package saga

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skybooklabs/skybook-backend/internal/inbox"
	"github.com/skybooklabs/skybook-backend/pkg/db/models"
	"github.com/skybooklabs/skybook-backend/pkg/enums"
	"github.com/skybooklabs/skybook-backend/pkg/logger"
	"github.com/skybooklabs/skybook-backend/pkg/metrics"
	"github.com/skybooklabs/skybook-backend/pkg/outbox"
)

// Envelope is the decoded broker message a handler reacts to.
type Envelope struct {
	EventID       uuid.UUID
	Type          enums.EventType
	CorrelationID uuid.UUID
	CausationID   *uuid.UUID
	Producer      string
	OccurredAt    time.Time
	Payload       json.RawMessage
}

// Handler applies one saga participant's local effect for an event. Apply
// runs inside the same transaction as the inbox dedup row.
type Handler interface {
	Consumer() string
	Accepts(eventType enums.EventType) bool
	Apply(ctx context.Context, tx *gorm.DB, env Envelope) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type inboxRepository interface {
	SaveIfNotExists(ctx context.Context, tx *gorm.DB, row models.InboxEvent) (bool, error)
}

// ConsumerParams carries the dependencies for NewConsumer.
type ConsumerParams struct {
	Handler      Handler
	Tx           txRunner
	Inbox        inboxRepository
	Subscription *pubsub.Subscriber
	Logger       *logger.Logger
	Metrics      *metrics.SagaMetrics

	// Latency is called once per newly applied event. When nil the consumer
	// sleeps 2-3s to make the saga's cascade visible in the workflow view.
	Latency func()
}

// Consumer pulls events off a subscription and drives a Handler with
// inbox-based exactly-once local effects.
type Consumer struct {
	handler Handler
	tx      txRunner
	inbox   inboxRepository
	sub     *pubsub.Subscriber
	logg    *logger.Logger
	metrics *metrics.SagaMetrics
	latency func()
}

func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Handler == nil {
		return nil, errors.New("handler is required")
	}
	if params.Tx == nil {
		return nil, errors.New("transaction runner is required")
	}
	if params.Inbox == nil {
		return nil, errors.New("inbox repository is required")
	}
	if params.Subscription == nil {
		return nil, errors.New("subscription is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	latency := params.Latency
	if latency == nil {
		latency = simulatedLatency
	}
	return &Consumer{
		handler: params.Handler,
		tx:      params.Tx,
		inbox:   params.Inbox,
		sub:     params.Subscription,
		logg:    params.Logger,
		metrics: params.Metrics,
		latency: latency,
	}, nil
}

// Run processes messages until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	env, err := decodeEnvelope(msg.Data)
	if err != nil {
		// Poison message; retrying will never help.
		c.logg.Error(ctx, "failed to decode event envelope", err)
		return processResult{ack: true}
	}

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"consumer":       c.handler.Consumer(),
		"event_id":       env.EventID.String(),
		"event_type":     env.Type,
		"correlation_id": env.CorrelationID.String(),
	})

	if !c.handler.Accepts(env.Type) {
		return processResult{ack: true}
	}

	duplicate := false
	err = c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		saved, err := c.inbox.SaveIfNotExists(ctx, tx, inbox.NewRow(c.handler.Consumer(), env.EventID, env.Type, env.CorrelationID))
		if err != nil {
			return err
		}
		if !saved {
			duplicate = true
			return nil
		}
		c.latency()
		return c.handler.Apply(ctx, tx, env)
	})
	if err != nil {
		c.logg.Error(logCtx, "event processing failed", err)
		return processResult{nack: true}
	}

	if duplicate {
		c.metrics.IncDuplicate(c.handler.Consumer(), string(env.Type))
		c.logg.Info(logCtx, "duplicate delivery skipped")
		return processResult{ack: true}
	}

	c.metrics.IncConsumed(c.handler.Consumer(), string(env.Type))
	c.logg.Info(logCtx, "event processed")
	return processResult{ack: true}
}

func decodeEnvelope(data []byte) (Envelope, error) {
	var msg outbox.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Envelope{}, err
	}

	eventID, err := uuid.Parse(msg.ID)
	if err != nil {
		return Envelope{}, err
	}
	correlationID, err := uuid.Parse(msg.CorrelationID)
	if err != nil {
		return Envelope{}, err
	}

	env := Envelope{
		EventID:       eventID,
		Type:          enums.EventType(msg.Type),
		CorrelationID: correlationID,
		Producer:      msg.Producer,
		OccurredAt:    msg.OccurredAt,
		Payload:       msg.Payload,
	}
	if msg.CausationID != "" {
		if causationID, err := uuid.Parse(msg.CausationID); err == nil {
			env.CausationID = &causationID
		}
	}
	return env, nil
}

// The saga is intentionally slow so each hop stays observable in the
// workflow view's polling window.
func simulatedLatency() {
	time.Sleep(2*time.Second + time.Duration(rand.Intn(1000))*time.Millisecond)
}
