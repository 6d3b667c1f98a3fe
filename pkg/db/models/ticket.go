package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/skybooklabs/skybook-backend/pkg/enums"
)

// Ticket is written by the ticket service. Route fields may duplicate the
// order's; the workflow view prefers the ticket's values when present.
type Ticket struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID          `gorm:"column:order_id;type:uuid;not null"`
	FromCity   string             `gorm:"column:from_city"`
	ToCity     string             `gorm:"column:to_city"`
	TravelDate string             `gorm:"column:travel_date"` // YYYY-MM-DD
	TravelTime string             `gorm:"column:travel_time"` // HH:MM
	Airline    string             `gorm:"column:airline"`
	Status     enums.TicketStatus `gorm:"column:status;not null"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
