//go:generate mockgen -source=contracts.go -destination=availability_mocks_test.go -package=availability_test

package availability

import (
	"context"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/repository"
)

type orderLister interface {
	ListAvailable(ctx context.Context, q repository.AvailableOrdersQuery) ([]domain.Order, string, error)
}

type settingsSource interface {
	ActiveDeliveryRadius(ctx context.Context) (*domain.RadiusConfig, error)
	ActiveZones(ctx context.Context) ([]domain.DeliveryZone, error)
}
