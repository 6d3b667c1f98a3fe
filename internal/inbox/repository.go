package inbox

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skybooklabs/skybook-backend/pkg/db/models"
	"github.com/skybooklabs/skybook-backend/pkg/enums"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveIfNotExists records the (consumer, event) pair inside the caller's
// transaction. It returns false when a row already exists, which tells the
// consumer this delivery is a duplicate and its effect must be skipped.
func (r *Repository) SaveIfNotExists(ctx context.Context, tx *gorm.DB, row models.InboxEvent) (bool, error) {
	if tx == nil {
		return false, errors.New("transaction required")
	}
	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) ListByCorrelationID(ctx context.Context, correlationID uuid.UUID) ([]models.InboxEvent, error) {
	var rows []models.InboxEvent
	err := r.db.WithContext(ctx).
		Where("correlation_id = ?", correlationID).
		Order("processed_at ASC").
		Find(&rows).Error
	return rows, err
}

// NewRow builds an inbox row for the given consumer and envelope metadata.
func NewRow(consumer string, eventID uuid.UUID, eventType enums.EventType, correlationID uuid.UUID) models.InboxEvent {
	return models.InboxEvent{
		Consumer:      consumer,
		EventID:       eventID,
		EventType:     eventType,
		CorrelationID: correlationID,
	}
}
