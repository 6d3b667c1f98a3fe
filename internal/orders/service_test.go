package orders

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skybooklabs/skybook-backend/pkg/db/models"
	"github.com/skybooklabs/skybook-backend/pkg/enums"
	pkgerrors "github.com/skybooklabs/skybook-backend/pkg/errors"
	"github.com/skybooklabs/skybook-backend/pkg/outbox"
)

type stubRepo struct {
	createFn        func(ctx context.Context, order *models.Order) (*models.Order, error)
	findFn          func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	updateStatusFn  func(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (int64, error)
	advanceStatusFn func(ctx context.Context, id uuid.UUID, status enums.OrderStatus, from []enums.OrderStatus) (int64, error)
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createFn != nil {
		return s.createFn(ctx, order)
	}
	return order, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (int64, error) {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, id, status)
	}
	return 1, nil
}

func (s *stubRepo) AdvanceStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, from ...enums.OrderStatus) (int64, error) {
	if s.advanceStatusFn != nil {
		return s.advanceStatusFn(ctx, id, status, from)
	}
	return 1, nil
}

func (s *stubRepo) FindPaymentByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindTicketByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Ticket, error) {
	return nil, gorm.ErrRecordNotFound
}

type stubTx struct {
	err error
}

func (s *stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.err != nil {
		return s.err
	}
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type stubCache struct {
	data map[string]string
	sets int
}

func newStubCache() *stubCache {
	return &stubCache{data: map[string]string{}}
}

func (s *stubCache) Get(_ context.Context, key string) (string, error) {
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return "", errors.New("miss")
}

func (s *stubCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	str, _ := value.(string)
	s.data[key] = str
	s.sets++
	return nil
}

func (s *stubCache) OrderCacheKey(orderID string) string {
	return "test:order:" + orderID
}

func newTestService(t *testing.T, repo Repository, ob *stubOutbox, cache orderCache) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Tx:     &stubTx{},
		Outbox: ob,
		Cache:  cache,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestNewServiceValidation(t *testing.T) {
	if _, err := NewService(ServiceParams{Tx: &stubTx{}, Outbox: &stubOutbox{}}); err == nil {
		t.Fatal("expected error without repository")
	}
	if _, err := NewService(ServiceParams{Repo: &stubRepo{}, Outbox: &stubOutbox{}}); err == nil {
		t.Fatal("expected error without tx runner")
	}
	if _, err := NewService(ServiceParams{Repo: &stubRepo{}, Tx: &stubTx{}}); err == nil {
		t.Fatal("expected error without outbox")
	}
}

func TestCreateEmitsOrderCreated(t *testing.T) {
	ob := &stubOutbox{}
	svc := newTestService(t, &stubRepo{}, ob, nil)

	dto, err := svc.Create(context.Background(), CreateOrderInput{
		UserID:  "u-1",
		Amount:  120.50,
		From:    "Lisbon",
		To:      "Berlin",
		Date:    "2026-09-12",
		Time:    "08:30",
		Airline: "TAP",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if dto.Status != string(enums.OrderCreated) {
		t.Fatalf("status = %s, want CREATED", dto.Status)
	}
	if len(ob.events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(ob.events))
	}
	ev := ob.events[0]
	if ev.EventType != enums.EventOrderCreated {
		t.Fatalf("event type = %s", ev.EventType)
	}
	if ev.CorrelationID.String() != dto.ID {
		t.Fatalf("correlation id %s != order id %s", ev.CorrelationID, dto.ID)
	}
	if ev.Producer != enums.ConsumerOrderService {
		t.Fatalf("producer = %s", ev.Producer)
	}
}

func TestCreateRollsBackOnOutboxFailure(t *testing.T) {
	ob := &stubOutbox{err: errors.New("insert failed")}
	svc := newTestService(t, &stubRepo{}, ob, nil)

	if _, err := svc.Create(context.Background(), CreateOrderInput{
		UserID: "u-1", Amount: 10, From: "A", To: "B", Date: "2026-01-01", Time: "10:00", Airline: "XX",
	}); err == nil {
		t.Fatal("expected error when outbox insert fails")
	}
}

func TestGetUsesCache(t *testing.T) {
	id := uuid.New()
	var repoCalls int
	repo := &stubRepo{
		findFn: func(ctx context.Context, gotID uuid.UUID) (*models.Order, error) {
			repoCalls++
			return &models.Order{
				ID:          gotID,
				UserID:      "u-1",
				Status:      enums.OrderCreated,
				TotalAmount: decimal.NewFromFloat(99.90),
			}, nil
		},
	}
	cache := newStubCache()
	svc := newTestService(t, repo, &stubOutbox{}, cache)

	first, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get (cached): %v", err)
	}

	if repoCalls != 1 {
		t.Fatalf("repo hit %d times, want 1", repoCalls)
	}
	if cache.sets != 1 {
		t.Fatalf("cache set %d times, want 1", cache.sets)
	}
	if first.ID != second.ID || first.TotalAmount != second.TotalAmount {
		t.Fatalf("cached DTO differs: %+v vs %+v", first, second)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubOutbox{}, nil)

	_, err := svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestRefundEmitsRefundInitiated(t *testing.T) {
	id := uuid.New()
	ob := &stubOutbox{}
	var gotStatus enums.OrderStatus
	repo := &stubRepo{
		updateStatusFn: func(ctx context.Context, gotID uuid.UUID, status enums.OrderStatus) (int64, error) {
			gotStatus = status
			return 1, nil
		},
	}
	svc := newTestService(t, repo, ob, nil)

	if err := svc.Refund(context.Background(), id, RefundOrderInput{Reason: "change of plans"}); err != nil {
		t.Fatalf("Refund: %v", err)
	}

	if gotStatus != enums.OrderRefundPending {
		t.Fatalf("status = %s, want REFUND_PENDING", gotStatus)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventRefundInitiated {
		t.Fatalf("expected RefundInitiated event, got %+v", ob.events)
	}

	payload, err := json.Marshal(ob.events[0].Data)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	var refund RefundEvent
	if err := json.Unmarshal(payload, &refund); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if refund.OrderID != id.String() || refund.Reason != "change of plans" {
		t.Fatalf("unexpected refund payload: %+v", refund)
	}
}

func TestRefundUnknownOrder(t *testing.T) {
	repo := &stubRepo{
		updateStatusFn: func(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (int64, error) {
			return 0, nil
		},
	}
	svc := newTestService(t, repo, &stubOutbox{}, nil)

	err := svc.Refund(context.Background(), uuid.New(), RefundOrderInput{Reason: "nope"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
