package domain

import "time"

// Order is the central delivery aggregate. A nil DriverID means the order is
// unassigned and visible to drivers polling for work.
type Order struct {
	ID            int64
	UserID        int64
	VendorID      int64
	DriverID      *int64
	Status        OrderStatus
	DeliveryFee   Money
	OTPCode       *string
	PickupPoint   *Point
	DeliveryPoint *Point
	AssignedAt    *time.Time
	PickedUpAt    *time.Time
	DispatchedAt  *time.Time
	DeliveredAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Eagerly attached read models; nil/empty outside list endpoints.
	Vendor   *Vendor
	Customer *User
	Items    []OrderItem
}

// Vendor is a read-only projection of the vendor entity that owns the pickup
// point.
type Vendor struct {
	ID       int64
	Name     string
	Location *Point
}

// User is a read-only projection of the requesting user.
type User struct {
	ID    int64
	Name  string
	Phone string
}

// OrderItem is a line item snapshot taken at checkout time.
type OrderItem struct {
	ID        int64
	OrderID   int64
	Name      string
	Quantity  int
	UnitPrice Money
}

// AssignedTo reports whether the order is currently held by the given driver.
func (o *Order) AssignedTo(driverID int64) bool {
	return o.DriverID != nil && *o.DriverID == driverID
}
