package payments

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/skybooklabs/skybook-backend/internal/saga"
	"github.com/skybooklabs/skybook-backend/pkg/db/models"
	"github.com/skybooklabs/skybook-backend/pkg/enums"
	"github.com/skybooklabs/skybook-backend/pkg/outbox"
)

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  status TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func TestHandlerAuthorizesPayment(t *testing.T) {
	db := setupPaymentsTestDB(t)
	ob := &stubOutbox{}
	handler, err := NewHandler(NewRepository(db), ob)
	require.NoError(t, err)

	orderID := uuid.New()
	eventID := uuid.New()
	payload, err := json.Marshal(orderCreatedPayload{
		ID:          orderID.String(),
		TotalAmount: 240.75,
		FromCity:    "Lisbon",
		ToCity:      "Berlin",
		TravelDate:  "2026-09-12",
		TravelTime:  "08:30",
		Airline:     "TAP",
	})
	require.NoError(t, err)

	env := saga.Envelope{
		EventID:       eventID,
		Type:          enums.EventOrderCreated,
		CorrelationID: orderID,
		Producer:      enums.ConsumerOrderService,
		Payload:       payload,
	}

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return handler.Apply(context.Background(), tx, env)
	}))

	var payment models.Payment
	require.NoError(t, db.First(&payment, "order_id = ?", orderID).Error)
	assert.Equal(t, enums.PaymentAuthorized, payment.Status)
	assert.Equal(t, "240.75", payment.Amount.StringFixed(2))

	require.Len(t, ob.events, 1)
	ev := ob.events[0]
	assert.Equal(t, enums.EventPaymentAuthorized, ev.EventType)
	assert.Equal(t, orderID, ev.CorrelationID)
	require.NotNil(t, ev.CausationID)
	assert.Equal(t, eventID, *ev.CausationID)
	assert.Equal(t, enums.ConsumerPaymentService, ev.Producer)

	data, ok := ev.Data.(AuthorizedEvent)
	require.True(t, ok)
	assert.Equal(t, payment.ID.String(), data.PaymentID)
	assert.Equal(t, "Lisbon", data.FromCity)
	assert.Equal(t, "TAP", data.Airline)
}

func TestHandlerAccepts(t *testing.T) {
	handler, err := NewHandler(NewRepository(setupPaymentsTestDB(t)), &stubOutbox{})
	require.NoError(t, err)

	assert.True(t, handler.Accepts(enums.EventOrderCreated))
	assert.False(t, handler.Accepts(enums.EventPaymentAuthorized))
	assert.False(t, handler.Accepts(enums.EventTicketIssued))
	assert.Equal(t, enums.ConsumerPaymentService, handler.Consumer())
}

func TestHandlerRejectsMalformedPayload(t *testing.T) {
	db := setupPaymentsTestDB(t)
	handler, err := NewHandler(NewRepository(db), &stubOutbox{})
	require.NoError(t, err)

	env := saga.Envelope{
		EventID:       uuid.New(),
		Type:          enums.EventOrderCreated,
		CorrelationID: uuid.New(),
		Payload:       json.RawMessage(`"not an object"`),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return handler.Apply(context.Background(), tx, env)
	})
	require.Error(t, err)
}
