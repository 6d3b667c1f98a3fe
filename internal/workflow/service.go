package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skybooklabs/skybook-backend/internal/inbox"
	"github.com/skybooklabs/skybook-backend/internal/orders"
	pkgerrors "github.com/skybooklabs/skybook-backend/pkg/errors"
	"github.com/skybooklabs/skybook-backend/pkg/logger"
	"github.com/skybooklabs/skybook-backend/pkg/outbox"
)

// Service assembles workflow snapshots for the read endpoint.
type Service interface {
	Snapshot(ctx context.Context, orderID uuid.UUID) (*Snapshot, error)
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	Orders orders.Repository
	Outbox *outbox.Repository
	Inbox  *inbox.Repository
	Logger *logger.Logger
}

type service struct {
	orders orders.Repository
	outbox *outbox.Repository
	inbox  *inbox.Repository
	logg   *logger.Logger
}

// NewService builds the workflow read service.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	if params.Inbox == nil {
		return nil, fmt.Errorf("inbox repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		orders: params.Orders,
		outbox: params.Outbox,
		inbox:  params.Inbox,
		logg:   params.Logger,
	}, nil
}

// Snapshot reads the order plus every correlated saga artifact. Missing
// payment and ticket rows are not errors; the saga simply has not reached
// those steps yet.
func (s *service) Snapshot(ctx context.Context, orderID uuid.UUID) (*Snapshot, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	outboxRows, err := s.outbox.ListByCorrelationID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load outbox events")
	}

	inboxRows, err := s.inbox.ListByCorrelationID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load inbox events")
	}

	snap := &Snapshot{
		Order:  orders.NewOrderDTO(order),
		Outbox: make([]OutboxEvent, 0, len(outboxRows)),
		Inbox:  make([]InboxEvent, 0, len(inboxRows)),
	}
	for _, row := range outboxRows {
		snap.Outbox = append(snap.Outbox, NewOutboxEvent(row))
	}
	for _, row := range inboxRows {
		snap.Inbox = append(snap.Inbox, NewInboxEvent(row))
	}

	payment, err := s.orders.FindPaymentByOrderID(ctx, orderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment")
	}
	snap.Payment = NewPayment(payment)

	ticket, err := s.orders.FindTicketByOrderID(ctx, orderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load ticket")
	}
	snap.Ticket = NewTicket(ticket)

	return snap, nil
}
