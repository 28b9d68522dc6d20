// Package availability serves the open-orders feed drivers poll for work.
// The feed is read-only; losers of the subsequent accept race are rejected
// there, not here.
package availability

import (
	"context"
	"fmt"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/geo"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/repository"
)

// pageSize is the fixed page size of the feed.
const pageSize = 20

// Filter narrows the open-orders feed. Driver coordinates are optional but
// must come as a pair; with them present the feed is distance-filtered.
type Filter struct {
	VendorID  *int64
	DriverLat *float64
	DriverLon *float64
	Cursor    string
}

// Service - the availability query service.
type Service struct {
	orders           orderLister
	settings         settingsSource
	logger           logx.Logger
	defaultRadiusKm  float64
	operationTimeout time.Duration
}

// NewService - creates a new availability Service.
func NewService(orders orderLister, settings settingsSource, defaultRadiusKm float64, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = 10
	}
	return &Service{
		orders:           orders,
		settings:         settings,
		logger:           logger,
		defaultRadiusKm:  defaultRadiusKm,
		operationTimeout: timeout,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// List returns a page of unassigned pickup-ready orders matching the filter.
// A bounding box narrows the SQL query; the haversine distance against the
// vendor's coordinates is the authoritative filter.
func (s *Service) List(ctx context.Context, f Filter) ([]domain.Order, string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	driverPos, err := driverPosition(f)
	if err != nil {
		return nil, "", err
	}

	q := repository.AvailableOrdersQuery{
		VendorID: f.VendorID,
		Cursor:   f.Cursor,
		Limit:    pageSize,
	}

	radius := 0.0
	geoFiltered := false
	if driverPos != nil {
		r, ok, err := s.effectiveRadius(ctx, *driverPos)
		if err != nil {
			return nil, "", err
		}
		if ok {
			radius = r
			geoFiltered = true
			box := geo.BoundingBox(*driverPos, r)
			q.Box = &box
		}
	}

	orders, next, err := s.orders.ListAvailable(ctx, q)
	if err != nil {
		return nil, "", err
	}
	if !geoFiltered {
		return orders, next, nil
	}

	filtered := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.PickupPoint == nil {
			continue
		}
		if geo.WithinRadius(*driverPos, *o.PickupPoint, radius) {
			filtered = append(filtered, o)
		}
	}
	return filtered, next, nil
}

// effectiveRadius resolves the discovery radius for the driver's position.
// The second return value is false when radius filtering is explicitly
// disabled. Precedence: zone override, configured radius, built-in default.
func (s *Service) effectiveRadius(ctx context.Context, p domain.Point) (float64, bool, error) {
	cfg, err := s.settings.ActiveDeliveryRadius(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("resolve delivery radius: %w", err)
	}
	if cfg != nil && !cfg.Active {
		return 0, false, nil
	}

	zones, err := s.settings.ActiveZones(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("resolve delivery zones: %w", err)
	}
	if z := geo.ZoneForPoint(zones, p); z != nil && z.RadiusKm != nil && *z.RadiusKm > 0 {
		s.logger.Debug("zone radius override",
			logx.Int64("zone_id", z.ID),
			logx.Float64("radius_km", *z.RadiusKm),
		)
		return *z.RadiusKm, true, nil
	}

	if cfg != nil && cfg.RadiusKm > 0 {
		return cfg.RadiusKm, true, nil
	}
	return s.defaultRadiusKm, true, nil
}

func driverPosition(f Filter) (*domain.Point, error) {
	switch {
	case f.DriverLat == nil && f.DriverLon == nil:
		return nil, nil
	case f.DriverLat == nil || f.DriverLon == nil:
		return nil, fmt.Errorf("%w: both driver coordinates are required", apperr.ErrInvalid)
	}
	p := domain.Point{Lat: *f.DriverLat, Lon: *f.DriverLon}
	if !p.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range", apperr.ErrInvalid)
	}
	return &p, nil
}
