package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/skybooklabs/skybook-backend/pkg/enums"
)

// OutboxEvent is an append-only event emitted via the outbox pattern.
// CorrelationID groups every event of one saga instance (it equals the order
// ID); CausationID references the consumed event that triggered this one.
type OutboxEvent struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventType     enums.EventType    `gorm:"column:event_type;not null"`
	Payload       json.RawMessage    `gorm:"column:payload;type:jsonb;not null"`
	Status        enums.OutboxStatus `gorm:"column:status;not null;default:new"`
	CorrelationID uuid.UUID          `gorm:"column:correlation_id;type:uuid;not null"`
	CausationID   *uuid.UUID         `gorm:"column:causation_id;type:uuid"`
	Producer      string             `gorm:"column:producer;not null"`
	AttemptCount  int                `gorm:"column:attempt_count;not null;default:0"`
	LastError     *string            `gorm:"column:last_error"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
