package payments

import (
	"context"

	"service-dispatch/internal/domain"
)

// StatusSetter abstracts the subset of order status operations needed by the
// payments Processor when reflecting payment outcomes.
type StatusSetter interface {
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
}
