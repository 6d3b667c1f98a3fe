package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skybooklabs/skybook-backend/internal/saga"
	"github.com/skybooklabs/skybook-backend/pkg/db/models"
	"github.com/skybooklabs/skybook-backend/pkg/enums"
	"github.com/skybooklabs/skybook-backend/pkg/outbox"
)

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// orderCreatedPayload is the slice of the OrderCreated payload the payment
// service needs.
type orderCreatedPayload struct {
	ID          string  `json:"id"`
	TotalAmount float64 `json:"total_amount"`
	FromCity    string  `json:"from_city"`
	ToCity      string  `json:"to_city"`
	TravelDate  string  `json:"travel_date"`
	TravelTime  string  `json:"travel_time"`
	Airline     string  `json:"airline"`
}

// AuthorizedEvent is the PaymentAuthorized outbox payload. It carries the
// route so the ticket service can issue without reading back the order.
type AuthorizedEvent struct {
	OrderID    string  `json:"order_id"`
	PaymentID  string  `json:"payment_id"`
	Amount     float64 `json:"amount"`
	FromCity   string  `json:"from_city"`
	ToCity     string  `json:"to_city"`
	TravelDate string  `json:"travel_date"`
	TravelTime string  `json:"travel_time"`
	Airline    string  `json:"airline"`
}

// Handler authorizes payment for newly created orders.
type Handler struct {
	repo   *Repository
	outbox outboxPublisher
}

func NewHandler(repo *Repository, publisher outboxPublisher) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("payments repository is required")
	}
	if publisher == nil {
		return nil, errors.New("outbox publisher is required")
	}
	return &Handler{repo: repo, outbox: publisher}, nil
}

func (h *Handler) Consumer() string {
	return enums.ConsumerPaymentService
}

func (h *Handler) Accepts(eventType enums.EventType) bool {
	return eventType == enums.EventOrderCreated
}

func (h *Handler) Apply(ctx context.Context, tx *gorm.DB, env saga.Envelope) error {
	var order orderCreatedPayload
	if err := json.Unmarshal(env.Payload, &order); err != nil {
		return fmt.Errorf("unmarshal order payload: %w", err)
	}

	payment := &models.Payment{
		ID:      uuid.New(),
		OrderID: env.CorrelationID,
		Status:  enums.PaymentAuthorized,
		Amount:  decimal.NewFromFloat(order.TotalAmount),
	}
	if err := h.repo.Create(ctx, tx, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	eventID := env.EventID
	return h.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPaymentAuthorized,
		CorrelationID: env.CorrelationID,
		CausationID:   &eventID,
		Producer:      enums.ConsumerPaymentService,
		Data: AuthorizedEvent{
			OrderID:    env.CorrelationID.String(),
			PaymentID:  payment.ID.String(),
			Amount:     order.TotalAmount,
			FromCity:   order.FromCity,
			ToCity:     order.ToCity,
			TravelDate: order.TravelDate,
			TravelTime: order.TravelTime,
			Airline:    order.Airline,
		},
	})
}
