package tickets

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

func setupTicketsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS tickets (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  from_city TEXT,
  to_city TEXT,
  travel_date TEXT,
  travel_time TEXT,
  airline TEXT,
  status TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func TestHandlerIssuesTicket(t *testing.T) {
	db := setupTicketsTestDB(t)
	ob := &stubOutbox{}
	handler, err := NewHandler(NewRepository(db), ob)
	require.NoError(t, err)

	orderID := uuid.New()
	eventID := uuid.New()
	payload, err := json.Marshal(authorizedPayload{
		OrderID:    orderID.String(),
		FromCity:   "Lisbon",
		ToCity:     "Berlin",
		TravelDate: "2026-09-12",
		TravelTime: "08:30",
		Airline:    "TAP",
	})
	require.NoError(t, err)

	env := saga.Envelope{
		EventID:       eventID,
		Type:          enums.EventPaymentAuthorized,
		CorrelationID: orderID,
		Producer:      enums.ConsumerPaymentService,
		Payload:       payload,
	}

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return handler.Apply(context.Background(), tx, env)
	}))

	var ticket models.Ticket
	require.NoError(t, db.First(&ticket, "order_id = ?", orderID).Error)
	assert.Equal(t, enums.TicketIssued, ticket.Status)
	assert.Equal(t, "Lisbon", ticket.FromCity)
	assert.Equal(t, "Berlin", ticket.ToCity)
	assert.Equal(t, "TAP", ticket.Airline)

	require.Len(t, ob.events, 1)
	ev := ob.events[0]
	assert.Equal(t, enums.EventTicketIssued, ev.EventType)
	assert.Equal(t, orderID, ev.CorrelationID)
	require.NotNil(t, ev.CausationID)
	assert.Equal(t, eventID, *ev.CausationID)

	data, ok := ev.Data.(IssuedEvent)
	require.True(t, ok)
	assert.Equal(t, ticket.ID.String(), data.TicketID)
	assert.Equal(t, orderID.String(), data.OrderID)
}

func TestHandlerAccepts(t *testing.T) {
	handler, err := NewHandler(NewRepository(setupTicketsTestDB(t)), &stubOutbox{})
	require.NoError(t, err)

	assert.True(t, handler.Accepts(enums.EventPaymentAuthorized))
	assert.False(t, handler.Accepts(enums.EventOrderCreated))
	assert.False(t, handler.Accepts(enums.EventTicketIssued))
	assert.Equal(t, enums.ConsumerTicketService, handler.Consumer())
}
