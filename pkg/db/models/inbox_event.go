package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/skybooklabs/skybook-backend/pkg/enums"
)

// InboxEvent is a consumer-side dedup record (inbox pattern). One row per
// (consumer, event); its presence means the consumer's local reaction has
// committed exactly once.
type InboxEvent struct {
	Consumer      string          `gorm:"column:consumer;primaryKey"`
	EventID       uuid.UUID       `gorm:"column:event_id;type:uuid;primaryKey"`
	EventType     enums.EventType `gorm:"column:event_type;not null"`
	CorrelationID uuid.UUID       `gorm:"column:correlation_id;type:uuid;not null"`
	ProcessedAt   time.Time       `gorm:"column:processed_at;autoCreateTime"`
}
