package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skybooklabs/skybook-backend/pkg/db/models"
	"github.com/skybooklabs/skybook-backend/pkg/enums"
	pkgerrors "github.com/skybooklabs/skybook-backend/pkg/errors"
	"github.com/skybooklabs/skybook-backend/pkg/logger"
	"github.com/skybooklabs/skybook-backend/pkg/outbox"
	pkgredis "github.com/skybooklabs/skybook-backend/pkg/redis"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type orderCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	OrderCacheKey(orderID string) string
}

// Service exposes the order-side saga operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	Refund(ctx context.Context, id uuid.UUID, input RefundOrderInput) error
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Outbox   outboxPublisher
	Cache    orderCache
	CacheTTL time.Duration
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	cache    orderCache
	cacheTTL time.Duration
	logg     *logger.Logger
}

// NewService builds the order service. Cache is optional; everything else is
// required.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = time.Second
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		outbox:   params.Outbox,
		cache:    params.Cache,
		cacheTTL: ttl,
		logg:     params.Logger,
	}, nil
}

// Create writes the order and its OrderCreated outbox row in one transaction,
// so the event exists if and only if the order does.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	order := &models.Order{
		ID:          uuid.New(),
		UserID:      input.UserID,
		Status:      enums.OrderCreated,
		TotalAmount: decimal.NewFromFloat(input.Amount),
		FromCity:    input.From,
		ToCity:      input.To,
		TravelDate:  input.Date,
		TravelTime:  input.Time,
		Airline:     input.Airline,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			CorrelationID: order.ID,
			Producer:      enums.ConsumerOrderService,
			Data:          NewOrderDTO(order),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "order created")
	}
	return NewOrderDTO(order), nil
}

// Get serves the order through a short-lived cache. The TTL is deliberately
// tiny so saga status changes surface within a second.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cache.OrderCacheKey(id.String())
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil && raw != "" {
			var dto OrderDTO
			if err := json.Unmarshal([]byte(raw), &dto); err == nil {
				return &dto, nil
			}
		}
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	dto := NewOrderDTO(row)
	if s.cache != nil {
		if payload, err := json.Marshal(dto); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(payload), s.cacheTTL); err != nil && s.logg != nil {
				s.logg.Warn(s.logg.WithOrderID(ctx, id.String()), "order cache write failed")
			}
		}
	}
	return dto, nil
}

// Refund moves the order to REFUND_PENDING and emits RefundInitiated in the
// same transaction.
func (s *service) Refund(ctx context.Context, id uuid.UUID, input RefundOrderInput) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).UpdateStatus(ctx, id, enums.OrderRefundPending)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRefundInitiated,
			CorrelationID: id,
			Producer:      enums.ConsumerOrderService,
			Data: RefundEvent{
				OrderID:   id.String(),
				Reason:    input.Reason,
				Timestamp: time.Now().UTC(),
			},
		})
	})
	if err != nil {
		return err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, id.String()), "refund initiated")
	}
	return nil
}

var _ orderCache = (*pkgredis.Client)(nil)
