package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skybooklabs/skybook-backend/pkg/db/models"
	"github.com/skybooklabs/skybook-backend/pkg/enums"
	"github.com/skybooklabs/skybook-backend/pkg/logger"
)

// DomainEvent is what business code emits. CorrelationID ties every event of
// one saga run together (it is the order ID); CausationID points at the
// consumed event that triggered this emission, when there is one.
type DomainEvent struct {
	EventType     enums.EventType
	CorrelationID uuid.UUID
	CausationID   *uuid.UUID
	Producer      string
	Data          interface{}
	OccurredAt    time.Time
}

type Service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Emit appends the event to the outbox inside the caller's transaction, so
// the business write and the event row commit or roll back together.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if !event.EventType.IsValid() {
		return errors.New("unknown event type")
	}
	if event.CorrelationID == uuid.Nil {
		return errors.New("correlation id required")
	}
	producer := event.Producer
	if producer == "" {
		producer = "unknown"
	}

	payload, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}
	row := models.OutboxEvent{
		EventType:     event.EventType,
		Payload:       json.RawMessage(payload),
		Status:        enums.OutboxNew,
		CorrelationID: event.CorrelationID,
		CausationID:   event.CausationID,
		Producer:      producer,
	}
	if err := s.repo.Insert(tx, row); err != nil {
		return err
	}
	if s.logg != nil {
		fields := map[string]any{
			"event_type":     event.EventType,
			"correlation_id": event.CorrelationID.String(),
			"producer":       producer,
		}
		logCtx := s.logg.WithFields(ctx, fields)
		s.logg.Info(logCtx, "outbox event queued")
	}
	return nil
}
