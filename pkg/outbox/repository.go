package outbox

import (
	"context"
	"errors"
	"time"

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

func (r *Repository) Insert(tx *gorm.DB, event models.OutboxEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(&event).Error
}

// staleClaimAge is how long a row may sit in "processing" before it is
// considered stranded by a crashed relay and becomes claimable again.
const staleClaimAge = 5 * time.Minute

// ClaimBatch locks up to limit rows in status "new" and moves them to
// "processing". Concurrent relays skip each other's locked rows, so one
// event is only ever claimed by a single relay. Rows stuck in "processing"
// past staleClaimAge are claimed too; a relay that dies between claiming
// and settling must not strand its batch. Must run inside tx.
func (r *Repository) ClaimBatch(ctx context.Context, tx *gorm.DB, limit int) ([]models.OutboxEvent, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}

	q := tx.WithContext(ctx)
	// sqlite (tests) has no row locking; its single writer serializes claims.
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}

	var rows []models.OutboxEvent
	err := q.
		Where("status = ? OR (status = ? AND updated_at < ?)",
			enums.OutboxNew, enums.OutboxProcessing, time.Now().Add(-staleClaimAge)).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	err = tx.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id IN ?", ids).
		Update("status", enums.OutboxProcessing).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Status = enums.OutboxProcessing
	}
	return rows, nil
}

func (r *Repository) MarkProcessed(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id IN ?", ids).
		Update("status", enums.OutboxProcessed).Error
}

// Release returns a claimed row to "new" for another attempt, or parks it in
// "failed" once maxAttempts is reached.
func (r *Repository) Release(ctx context.Context, id uuid.UUID, cause error, maxAttempts int) error {
	var row models.OutboxEvent
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return err
	}

	next := enums.OutboxNew
	if maxAttempts > 0 && row.AttemptCount+1 >= maxAttempts {
		next = enums.OutboxFailed
	}
	updates := map[string]any{
		"status":        next,
		"attempt_count": gorm.Expr("attempt_count + 1"),
	}
	if cause != nil {
		updates["last_error"] = cause.Error()
	}
	return r.db.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *Repository) ListByCorrelationID(ctx context.Context, correlationID uuid.UUID) ([]models.OutboxEvent, error) {
	var rows []models.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("correlation_id = ?", correlationID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
