package orders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/skybooklabs/skybook-backend/internal/saga"
	"github.com/skybooklabs/skybook-backend/pkg/enums"
)

// StatusHandler advances the order's status as downstream saga events arrive.
// TicketIssued is the terminal success transition the workflow view keys on.
// The broker redelivers without ordering, so each transition only fires from
// its allowed predecessors; a late redelivery never walks the status back.
type StatusHandler struct {
	repo Repository
}

func NewStatusHandler(repo Repository) (*StatusHandler, error) {
	if repo == nil {
		return nil, errors.New("orders repository is required")
	}
	return &StatusHandler{repo: repo}, nil
}

func (h *StatusHandler) Consumer() string {
	return enums.ConsumerOrderService
}

func (h *StatusHandler) Accepts(eventType enums.EventType) bool {
	switch eventType {
	case enums.EventPaymentAuthorized, enums.EventTicketIssued, enums.EventPaymentFailed:
		return true
	}
	return false
}

func (h *StatusHandler) Apply(ctx context.Context, tx *gorm.DB, env saga.Envelope) error {
	var next enums.OrderStatus
	var from []enums.OrderStatus
	switch env.Type {
	case enums.EventPaymentAuthorized:
		next = enums.OrderPaymentAuthorized
		from = []enums.OrderStatus{enums.OrderCreated}
	case enums.EventTicketIssued:
		next = enums.OrderTicketIssued
		from = []enums.OrderStatus{enums.OrderCreated, enums.OrderPaymentAuthorized}
	case enums.EventPaymentFailed:
		next = enums.OrderCancelled
		from = []enums.OrderStatus{enums.OrderCreated, enums.OrderPaymentAuthorized}
	default:
		return fmt.Errorf("unexpected event type %q", env.Type)
	}

	repo := h.repo.WithTx(tx)
	rows, err := repo.AdvanceStatus(ctx, env.CorrelationID, next, from...)
	if err != nil {
		return fmt.Errorf("advance order status: %w", err)
	}
	if rows == 0 {
		if _, err := repo.FindByID(ctx, env.CorrelationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// The order row may not be visible yet; retry via nack.
				return fmt.Errorf("order %s not found", env.CorrelationID)
			}
			return fmt.Errorf("load order: %w", err)
		}
		// The order already moved past this transition; the event is a late
		// redelivery and applying it would downgrade the status.
		return nil
	}
	return nil
}
