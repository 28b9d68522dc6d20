package domain

// OrderStatus represents the status of an order. Both the driver-facing state
// machine and the vendor-side guard operate on this single enumeration, each
// through its own legality function.
type OrderStatus string

// List of possible order statuses
const (
	StatusPending        OrderStatus = "PENDING"
	StatusProcessing     OrderStatus = "PROCESSING"
	StatusPaid           OrderStatus = "PAID"
	StatusFailed         OrderStatus = "FAILED"
	StatusReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	StatusPickedUp       OrderStatus = "PICKED_UP"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusDispatched     OrderStatus = "DISPATCHED"
	StatusCancelled      OrderStatus = "CANCELLED"
	StatusRefunded       OrderStatus = "REFUNDED"
	StatusCompleted      OrderStatus = "COMPLETED"
)

var allowedStatuses = [...]OrderStatus{
	StatusPending, StatusProcessing, StatusPaid, StatusFailed,
	StatusReadyForPickup, StatusPickedUp, StatusOutForDelivery, StatusDelivered,
	StatusDispatched, StatusCancelled, StatusRefunded, StatusCompleted,
}

// Valid checks if the OrderStatus is one of the known status tokens.
func (s OrderStatus) Valid() bool {
	for _, v := range allowedStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// driverTransitions is the driver-facing lifecycle. Rejection is not listed
// here: it returns an assigned order to the unassigned pool without changing
// the status, so it is an assignment change, not a status transition.
var driverTransitions = map[OrderStatus][]OrderStatus{
	StatusReadyForPickup: {StatusPickedUp},
	StatusPickedUp:       {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
}

// CanDriverTransition reports whether a driver may move an order from one
// status to another.
func CanDriverTransition(from, to OrderStatus) bool {
	for _, next := range driverTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// vendorFrozen are statuses a vendor may not move an order out of: the order
// is still being placed or paid for.
var vendorFrozen = [...]OrderStatus{StatusPending, StatusProcessing}

// vendorTerminal are statuses terminal from the vendor's viewpoint.
var vendorTerminal = [...]OrderStatus{
	StatusCancelled, StatusRefunded, StatusCompleted, StatusDispatched,
}

// VendorCanSet reports whether a vendor may request a change from one status
// to another. This matrix is independent of the driver-facing machine.
func VendorCanSet(from, to OrderStatus) bool {
	if !to.Valid() {
		return false
	}
	for _, s := range vendorFrozen {
		if from == s {
			return false
		}
	}
	for _, s := range vendorTerminal {
		if from == s {
			return false
		}
	}
	if from == StatusPaid {
		return to == StatusDispatched || to == StatusCancelled
	}
	return true
}
