package handlers

import (
	"time"

	"service-dispatch/internal/domain"
)

type pointDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type moneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type vendorDTO struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Location *pointDTO `json:"location,omitempty"`
}

type customerDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type orderItemDTO struct {
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	UnitPrice moneyDTO `json:"unit_price"`
}

type orderDTO struct {
	ID            int64              `json:"id"`
	Status        domain.OrderStatus `json:"status"`
	DriverID      *int64             `json:"driver_id,omitempty"`
	DeliveryFee   moneyDTO           `json:"delivery_fee"`
	PickupPoint   *pointDTO          `json:"pickup_point,omitempty"`
	DeliveryPoint *pointDTO          `json:"delivery_point,omitempty"`
	Vendor        *vendorDTO         `json:"vendor,omitempty"`
	Customer      *customerDTO       `json:"customer,omitempty"`
	Items         []orderItemDTO     `json:"items,omitempty"`
	AssignedAt    *time.Time         `json:"assigned_at,omitempty"`
	PickedUpAt    *time.Time         `json:"picked_up_at,omitempty"`
	DispatchedAt  *time.Time         `json:"dispatched_at,omitempty"`
	DeliveredAt   *time.Time         `json:"delivered_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

type orderListResponse struct {
	Orders     []orderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type rejectRequest struct {
	Reason string `json:"reason,omitempty"`
}

type deliverRequest struct {
	OTP string `json:"otp"`
}

type vendorStatusRequest struct {
	Status string `json:"status"`
}
