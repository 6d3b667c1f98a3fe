package orders

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skybooklabs/skybook-backend/internal/saga"
	"github.com/skybooklabs/skybook-backend/pkg/db/models"
	"github.com/skybooklabs/skybook-backend/pkg/enums"
)

func TestStatusHandlerTransitions(t *testing.T) {
	tests := []struct {
		event    enums.EventType
		want     enums.OrderStatus
		wantFrom []enums.OrderStatus
	}{
		{enums.EventPaymentAuthorized, enums.OrderPaymentAuthorized, []enums.OrderStatus{enums.OrderCreated}},
		{enums.EventTicketIssued, enums.OrderTicketIssued, []enums.OrderStatus{enums.OrderCreated, enums.OrderPaymentAuthorized}},
		{enums.EventPaymentFailed, enums.OrderCancelled, []enums.OrderStatus{enums.OrderCreated, enums.OrderPaymentAuthorized}},
	}

	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			var gotStatus enums.OrderStatus
			var gotFrom []enums.OrderStatus
			repo := &stubRepo{
				advanceStatusFn: func(ctx context.Context, id uuid.UUID, status enums.OrderStatus, from []enums.OrderStatus) (int64, error) {
					gotStatus = status
					gotFrom = from
					return 1, nil
				},
			}
			handler, err := NewStatusHandler(repo)
			if err != nil {
				t.Fatalf("NewStatusHandler: %v", err)
			}

			env := saga.Envelope{EventID: uuid.New(), Type: tt.event, CorrelationID: uuid.New()}
			if err := handler.Apply(context.Background(), &gorm.DB{}, env); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if gotStatus != tt.want {
				t.Fatalf("status = %s, want %s", gotStatus, tt.want)
			}
			if !reflect.DeepEqual(gotFrom, tt.wantFrom) {
				t.Fatalf("predecessors = %v, want %v", gotFrom, tt.wantFrom)
			}
		})
	}
}

func TestStatusHandlerRefusesDowngrade(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := &models.Order{ID: uuid.New(), UserID: "u-1", Status: enums.OrderCreated, TotalAmount: decimal.NewFromInt(10)}
	if _, err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create: %v", err)
	}

	handler, err := NewStatusHandler(repo)
	if err != nil {
		t.Fatalf("NewStatusHandler: %v", err)
	}

	// TicketIssued lands first; the PaymentAuthorized it causally follows is
	// redelivered afterwards.
	issued := saga.Envelope{EventID: uuid.New(), Type: enums.EventTicketIssued, CorrelationID: order.ID}
	if err := handler.Apply(ctx, db, issued); err != nil {
		t.Fatalf("Apply TicketIssued: %v", err)
	}
	late := saga.Envelope{EventID: uuid.New(), Type: enums.EventPaymentAuthorized, CorrelationID: order.ID}
	if err := handler.Apply(ctx, db, late); err != nil {
		t.Fatalf("Apply late PaymentAuthorized: %v", err)
	}

	got, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != enums.OrderTicketIssued {
		t.Fatalf("order regressed to %s, want %s", got.Status, enums.OrderTicketIssued)
	}
}

func TestStatusHandlerAccepts(t *testing.T) {
	handler, err := NewStatusHandler(&stubRepo{})
	if err != nil {
		t.Fatalf("NewStatusHandler: %v", err)
	}

	if handler.Accepts(enums.EventOrderCreated) {
		t.Fatal("order service must not react to its own OrderCreated")
	}
	if handler.Accepts(enums.EventRefundInitiated) {
		t.Fatal("RefundInitiated has no order-side reaction")
	}
	if !handler.Accepts(enums.EventTicketIssued) {
		t.Fatal("TicketIssued must be accepted")
	}
	if handler.Consumer() != enums.ConsumerOrderService {
		t.Fatalf("consumer = %s", handler.Consumer())
	}
}

func TestStatusHandlerUnknownOrder(t *testing.T) {
	repo := &stubRepo{
		advanceStatusFn: func(ctx context.Context, id uuid.UUID, status enums.OrderStatus, from []enums.OrderStatus) (int64, error) {
			return 0, nil
		},
	}
	handler, err := NewStatusHandler(repo)
	if err != nil {
		t.Fatalf("NewStatusHandler: %v", err)
	}

	env := saga.Envelope{EventID: uuid.New(), Type: enums.EventPaymentAuthorized, CorrelationID: uuid.New()}
	if err := handler.Apply(context.Background(), &gorm.DB{}, env); err == nil {
		t.Fatal("expected error for unknown order")
	}
}
