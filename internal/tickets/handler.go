package tickets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skybooklabs/skybook-backend/internal/saga"
	"github.com/skybooklabs/skybook-backend/pkg/db/models"
	"github.com/skybooklabs/skybook-backend/pkg/enums"
	"github.com/skybooklabs/skybook-backend/pkg/outbox"
)

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// authorizedPayload mirrors the PaymentAuthorized payload emitted by the
// payment service.
type authorizedPayload struct {
	OrderID    string `json:"order_id"`
	FromCity   string `json:"from_city"`
	ToCity     string `json:"to_city"`
	TravelDate string `json:"travel_date"`
	TravelTime string `json:"travel_time"`
	Airline    string `json:"airline"`
}

// IssuedEvent is the TicketIssued outbox payload.
type IssuedEvent struct {
	OrderID  string `json:"order_id"`
	TicketID string `json:"ticket_id"`
}

// Handler issues a ticket once payment is authorized.
type Handler struct {
	repo   *Repository
	outbox outboxPublisher
}

func NewHandler(repo *Repository, publisher outboxPublisher) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("tickets repository is required")
	}
	if publisher == nil {
		return nil, errors.New("outbox publisher is required")
	}
	return &Handler{repo: repo, outbox: publisher}, nil
}

func (h *Handler) Consumer() string {
	return enums.ConsumerTicketService
}

func (h *Handler) Accepts(eventType enums.EventType) bool {
	return eventType == enums.EventPaymentAuthorized
}

func (h *Handler) Apply(ctx context.Context, tx *gorm.DB, env saga.Envelope) error {
	var payment authorizedPayload
	if err := json.Unmarshal(env.Payload, &payment); err != nil {
		return fmt.Errorf("unmarshal payment payload: %w", err)
	}

	ticket := &models.Ticket{
		ID:         uuid.New(),
		OrderID:    env.CorrelationID,
		FromCity:   payment.FromCity,
		ToCity:     payment.ToCity,
		TravelDate: payment.TravelDate,
		TravelTime: payment.TravelTime,
		Airline:    payment.Airline,
		Status:     enums.TicketIssued,
	}
	if err := h.repo.Create(ctx, tx, ticket); err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}

	eventID := env.EventID
	return h.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventTicketIssued,
		CorrelationID: env.CorrelationID,
		CausationID:   &eventID,
		Producer:      enums.ConsumerTicketService,
		Data: IssuedEvent{
			OrderID:  env.CorrelationID.String(),
			TicketID: ticket.ID.String(),
		},
	})
}
