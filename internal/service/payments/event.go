package payments

import (
	"time"
)

// Event is a single payment event consumed from the payments topic.
type Event struct {
	OrderID    int64     `json:"order_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
