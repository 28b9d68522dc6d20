package kafka

import (
	"strings"
	"time"

	"service-dispatch/internal/service/payments"
)

// EventDTO is a data transfer object for payments.Event
type EventDTO struct {
	OrderID    int64     `json:"order_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ToDomain converts EventDTO to payments.Event
func ToDomain(dto EventDTO) payments.Event {
	return payments.Event{
		OrderID:    dto.OrderID,
		Status:     strings.TrimSpace(dto.Status),
		OccurredAt: dto.OccurredAt,
	}
}
