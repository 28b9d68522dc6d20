package ordertx

import (
	"context"
	"time"

	"service-dispatch/internal/domain"
)

// Repository is the transaction-scoped order repository. Every dispatch
// transition acquires an exclusive lock on the single order row through
// GetOrderForUpdate and performs its writes through the same transaction.
type Repository interface {
	// GetOrderForUpdate locks the order row for the duration of the
	// transaction and returns it, or (nil, nil) when the order does not
	// exist. Vendor and pickup coordinates are attached, unlocked.
	GetOrderForUpdate(ctx context.Context, orderID int64) (*domain.Order, error)

	// UpdateAssignment sets or clears the driver assignment. A nil driverID
	// clears both the assignment and assigned_at.
	UpdateAssignment(ctx context.Context, orderID int64, driverID *int64, assignedAt *time.Time) error

	// SetStatus writes the new status and stamps the timestamp column
	// matching the transition, each set exactly once.
	SetStatus(ctx context.Context, orderID int64, status domain.OrderStatus, at time.Time) error

	// AppendEvent appends an audit record for the change.
	AppendEvent(ctx context.Context, e *domain.OrderEvent) error

	// EarningExists reports whether an earning row exists for the order.
	EarningExists(ctx context.Context, orderID int64) (bool, error)

	// InsertEarning persists a new earning row. The unique order_id
	// constraint backs up the EarningExists guard under contention.
	InsertEarning(ctx context.Context, e *domain.DriverEarning) error
}

// Runner executes a function within a single order transaction.
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
