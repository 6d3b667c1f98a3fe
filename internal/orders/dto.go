package orders

import (
	"time"

	"github.com/skybooklabs/skybook-backend/pkg/db/models"
)

// CreateOrderInput is the POST /orders request body.
type CreateOrderInput struct {
	UserID  string  `json:"user_id" validate:"required"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	From    string  `json:"from" validate:"required"`
	To      string  `json:"to" validate:"required"`
	Date    string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string  `json:"time" validate:"required,datetime=15:04"`
	Airline string  `json:"airline" validate:"required"`
}

// RefundOrderInput is the POST /orders/{orderID}/refund request body.
type RefundOrderInput struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// OrderDTO is the wire representation of an order. The field names are part
// of the workflow view contract and must stay stable.
type OrderDTO struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	FromCity    string    `json:"from_city"`
	ToCity      string    `json:"to_city"`
	TravelDate  string    `json:"travel_date"`
	TravelTime  string    `json:"travel_time"`
	Airline     string    `json:"airline"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewOrderDTO maps a stored order onto the wire shape.
func NewOrderDTO(row *models.Order) *OrderDTO {
	if row == nil {
		return nil
	}
	return &OrderDTO{
		ID:          row.ID.String(),
		UserID:      row.UserID,
		Status:      string(row.Status),
		TotalAmount: row.TotalAmount.InexactFloat64(),
		FromCity:    row.FromCity,
		ToCity:      row.ToCity,
		TravelDate:  row.TravelDate,
		TravelTime:  row.TravelTime,
		Airline:     row.Airline,
		CreatedAt:   row.CreatedAt,
	}
}

// RefundEvent is the RefundInitiated outbox payload.
type RefundEvent struct {
	OrderID   string    `json:"order_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
