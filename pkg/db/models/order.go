package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skybooklabs/skybook-backend/pkg/enums"
)

// Order is the saga's root aggregate. Status is only ever advanced by the
// order service reacting to saga events; every other service reads it.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      string            `gorm:"column:user_id;not null"`
	Status      enums.OrderStatus `gorm:"column:status;not null"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	FromCity    string            `gorm:"column:from_city"`
	ToCity      string            `gorm:"column:to_city"`
	TravelDate  string            `gorm:"column:travel_date"` // YYYY-MM-DD
	TravelTime  string            `gorm:"column:travel_time"` // HH:MM
	Airline     string            `gorm:"column:airline"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
