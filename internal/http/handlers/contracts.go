package handlers

import (
	"context"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/service/availability"
	"service-dispatch/internal/service/dispatch"
	"service-dispatch/internal/service/vendorstatus"
)

type dispatchUsecase interface {
	Accept(ctx context.Context, driverID, orderID int64) (*domain.Order, error)
	Reject(ctx context.Context, driverID, orderID int64, reason string) error
	MarkPickedUp(ctx context.Context, driverID, orderID int64) (*domain.Order, error)
	StartDelivery(ctx context.Context, driverID, orderID int64) (*domain.Order, error)
	Deliver(ctx context.Context, driverID, orderID int64, otp string) (*domain.Order, error)
	Active(ctx context.Context, driverID int64) (*domain.Order, error)
	History(ctx context.Context, driverID int64, cursor string) ([]domain.Order, string, error)
}

// NewDispatchUsecase wires a dispatch.Service into a dispatchUsecase.
func NewDispatchUsecase(svc *dispatch.Service) dispatchUsecase {
	return svc
}

type availabilityUsecase interface {
	List(ctx context.Context, f availability.Filter) ([]domain.Order, string, error)
}

// NewAvailabilityUsecase wires an availability.Service into an availabilityUsecase.
func NewAvailabilityUsecase(svc *availability.Service) availabilityUsecase {
	return svc
}

type vendorUsecase interface {
	Change(ctx context.Context, vendorID, orderID int64, target domain.OrderStatus) (*domain.Order, error)
}

// NewVendorUsecase wires a vendorstatus.Service into a vendorUsecase.
func NewVendorUsecase(svc *vendorstatus.Service) vendorUsecase {
	return svc
}
