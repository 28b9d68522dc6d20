package domain

import "time"

// Actor types recorded on order events.
const (
	ActorDriver = "driver"
	ActorVendor = "vendor"
	ActorSystem = "system"
)

// OrderEvent is an audit record appended on every assignment or status
// change, including rejections with their reason.
type OrderEvent struct {
	ID         int64
	OrderID    int64
	FromStatus OrderStatus
	ToStatus   OrderStatus
	ActorType  string
	ActorID    *int64
	Note       string
	CreatedAt  time.Time
}
