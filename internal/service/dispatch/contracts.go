package dispatch

import (
	"context"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/ports/ordertx"
)

type orderRepository interface {
	WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error
	ActiveByDriver(ctx context.Context, driverID int64) (*domain.Order, error)
	HistoryByDriver(ctx context.Context, driverID int64, cursor string, limit int) ([]domain.Order, string, error)
}

// locationProvider yields the driver's latest known location. (nil, nil)
// means the driver has never reported one.
type locationProvider interface {
	Latest(ctx context.Context, driverID int64) (*domain.DriverLocation, error)
}

// notifier publishes order lifecycle notifications. Emission is
// fire-and-forget: failures are logged and never abort a transition.
type notifier interface {
	StatusChanged(ctx context.Context, o *domain.Order) error
	Dispatched(ctx context.Context, o *domain.Order) error
	Completed(ctx context.Context, o *domain.Order) error
}

// earningsRecorder records the driver's earning inside the delivery
// transaction.
type earningsRecorder interface {
	Record(ctx context.Context, tx ordertx.Repository, o *domain.Order) error
}

type counter interface {
	Inc()
}
