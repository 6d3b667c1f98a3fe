package outbox

import (
	"encoding/json"
	"time"

	"github.com/skybooklabs/skybook-backend/pkg/db/models"
)

// Message is the envelope published to the broker.
// Payload is kept as raw JSON produced by the originating service.
type Message struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	CorrelationID string          `json:"correlation_id"`
	CausationID   string          `json:"causation_id,omitempty"`
	Producer      string          `json:"producer"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NewMessage builds the broker envelope from a claimed outbox row.
func NewMessage(row models.OutboxEvent) Message {
	msg := Message{
		ID:            row.ID.String(),
		Type:          string(row.EventType),
		CorrelationID: row.CorrelationID.String(),
		Producer:      row.Producer,
		OccurredAt:    time.Now().UTC(),
		Payload:       row.Payload,
	}
	if row.CausationID != nil {
		msg.CausationID = row.CausationID.String()
	}
	return msg
}
