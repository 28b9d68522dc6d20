package domain

import "time"

// EarningStatus represents the payout status of a recorded earning.
type EarningStatus string

// List of possible earning statuses
const (
	EarningPending EarningStatus = "PENDING"
	EarningPaid    EarningStatus = "PAID"
)

// DriverEarning is the commission split recorded for one delivered order.
// OrderID is unique: at most one earning row may ever exist per order.
type DriverEarning struct {
	ID         int64
	DriverID   int64
	OrderID    int64
	Gross      int64
	Commission int64
	Net        int64
	Currency   string
	Status     EarningStatus
	CreatedAt  time.Time
}
