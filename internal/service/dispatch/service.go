// Package dispatch implements the driver-facing order state machine. Every
// transition locks the order row, so concurrent drivers serialize on it and
// at most one of them wins.
package dispatch

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/geo"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/ports/ordertx"
)

// historyPageSize is the fixed page size of the delivery history feed.
const historyPageSize = 20

// Service - the driver dispatch state machine.
type Service struct {
	repo               orderRepository
	locations          locationProvider
	notifier           notifier
	earnings           earningsRecorder
	geofenceViolations counter
	logger             logx.Logger
	geofenceRadiusKm   float64
	operationTimeout   time.Duration
	now                func() time.Time
}

// NewService - creates a new dispatch Service.
func NewService(
	repo orderRepository,
	locations locationProvider,
	notifier notifier,
	earnings earningsRecorder,
	geofenceViolations counter,
	geofenceRadiusKm float64,
	timeout time.Duration,
	logger logx.Logger,
) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if geofenceRadiusKm <= 0 {
		geofenceRadiusKm = 300
	}
	return &Service{
		repo:               repo,
		locations:          locations,
		notifier:           notifier,
		earnings:           earnings,
		geofenceViolations: geofenceViolations,
		logger:             logger,
		geofenceRadiusKm:   geofenceRadiusKm,
		operationTimeout:   timeout,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Accept assigns an unassigned pickup-ready order to the driver. Losers of a
// concurrent accept race get ErrConflict.
func (s *Service) Accept(ctx context.Context, driverID, orderID int64) (*domain.Order, error) {
	if err := validateIDs(driverID, orderID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var accepted *domain.Order
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if o.DriverID != nil {
			return fmt.Errorf("%w: order already assigned", apperr.ErrConflict)
		}
		if o.Status != domain.StatusReadyForPickup {
			return fmt.Errorf("%w: order is not ready for pickup", apperr.ErrInvalidState)
		}

		now := s.now()
		if err := tx.UpdateAssignment(ctx, orderID, &driverID, &now); err != nil {
			return err
		}
		if err := tx.AppendEvent(ctx, &domain.OrderEvent{
			OrderID:    orderID,
			FromStatus: o.Status,
			ToStatus:   o.Status,
			ActorType:  domain.ActorDriver,
			ActorID:    &driverID,
			Note:       "accepted",
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		o.DriverID = &driverID
		o.AssignedAt = &now
		accepted = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order accepted",
		logx.String("event", "order_accepted"),
		logx.Int64("order_id", orderID),
		logx.Int64("driver_id", driverID),
	)
	return accepted, nil
}

// Reject returns an order the driver holds back to the unassigned pool. The
// status does not change; the reason lands in the audit trail.
func (s *Service) Reject(ctx context.Context, driverID, orderID int64, reason string) error {
	if err := validateIDs(driverID, orderID); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if !o.AssignedTo(driverID) {
			return fmt.Errorf("%w: order is not assigned to this driver", apperr.ErrConflict)
		}
		if o.Status != domain.StatusReadyForPickup {
			return fmt.Errorf("%w: order can no longer be rejected", apperr.ErrInvalidState)
		}

		if err := tx.UpdateAssignment(ctx, orderID, nil, nil); err != nil {
			return err
		}
		return tx.AppendEvent(ctx, &domain.OrderEvent{
			OrderID:    orderID,
			FromStatus: o.Status,
			ToStatus:   o.Status,
			ActorType:  domain.ActorDriver,
			ActorID:    &driverID,
			Note:       "rejected: " + reason,
			CreatedAt:  s.now(),
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("order rejected",
		logx.String("event", "order_rejected"),
		logx.Int64("order_id", orderID),
		logx.Int64("driver_id", driverID),
		logx.String("reason", reason),
	)
	return nil
}

// MarkPickedUp moves the driver's order to PICKED_UP after verifying the
// driver is near the vendor pickup point.
func (s *Service) MarkPickedUp(ctx context.Context, driverID, orderID int64) (*domain.Order, error) {
	if err := validateIDs(driverID, orderID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var updated *domain.Order
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if !o.AssignedTo(driverID) {
			return fmt.Errorf("%w: order is not assigned to this driver", apperr.ErrConflict)
		}
		if !domain.CanDriverTransition(o.Status, domain.StatusPickedUp) {
			return fmt.Errorf("%w: order cannot be marked as picked up", apperr.ErrInvalidState)
		}
		if o.PickupPoint == nil {
			return fmt.Errorf("%w: vendor location is not available", apperr.ErrCoordsMissing)
		}
		if err := s.checkGeofence(ctx, driverID, *o.PickupPoint); err != nil {
			return err
		}

		now := s.now()
		if err := s.transition(ctx, tx, o, domain.StatusPickedUp, driverID, now); err != nil {
			return err
		}
		o.PickedUpAt = &now
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order picked up",
		logx.String("event", "order_picked_up"),
		logx.Int64("order_id", orderID),
		logx.Int64("driver_id", driverID),
	)
	s.notify(ctx, updated, "status_changed", s.notifierStatusChanged())
	return updated, nil
}

// StartDelivery moves the driver's order to OUT_FOR_DELIVERY.
func (s *Service) StartDelivery(ctx context.Context, driverID, orderID int64) (*domain.Order, error) {
	if err := validateIDs(driverID, orderID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var updated *domain.Order
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if !o.AssignedTo(driverID) {
			return fmt.Errorf("%w: order is not assigned to this driver", apperr.ErrConflict)
		}
		if !domain.CanDriverTransition(o.Status, domain.StatusOutForDelivery) {
			return fmt.Errorf("%w: order cannot be set to out for delivery", apperr.ErrInvalidState)
		}

		now := s.now()
		if err := s.transition(ctx, tx, o, domain.StatusOutForDelivery, driverID, now); err != nil {
			return err
		}
		o.DispatchedAt = &now
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("delivery started",
		logx.String("event", "delivery_started"),
		logx.Int64("order_id", orderID),
		logx.Int64("driver_id", driverID),
	)
	if s.notifier != nil {
		s.notify(ctx, updated, "dispatched", s.notifier.Dispatched)
	}
	s.notify(ctx, updated, "status_changed", s.notifierStatusChanged())
	return updated, nil
}

// Deliver completes the order: the driver must be near the delivery point and
// present the correct OTP when the order carries one. The driver's earning is
// recorded in the same transaction.
func (s *Service) Deliver(ctx context.Context, driverID, orderID int64, otp string) (*domain.Order, error) {
	if err := validateIDs(driverID, orderID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var updated *domain.Order
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		if !o.AssignedTo(driverID) {
			return fmt.Errorf("%w: order is not assigned to this driver", apperr.ErrConflict)
		}
		if !domain.CanDriverTransition(o.Status, domain.StatusDelivered) {
			return fmt.Errorf("%w: order cannot be delivered yet", apperr.ErrInvalidState)
		}
		if o.DeliveryPoint == nil {
			return fmt.Errorf("%w: delivery location is not available", apperr.ErrCoordsMissing)
		}
		if err := s.checkGeofence(ctx, driverID, *o.DeliveryPoint); err != nil {
			return err
		}
		if o.OTPCode != nil && *o.OTPCode != "" {
			if subtle.ConstantTimeCompare([]byte(*o.OTPCode), []byte(otp)) != 1 {
				return apperr.ErrOtpMismatch
			}
		}

		now := s.now()
		if err := s.transition(ctx, tx, o, domain.StatusDelivered, driverID, now); err != nil {
			return err
		}
		o.DeliveredAt = &now

		if s.earnings != nil {
			if err := s.earnings.Record(ctx, tx, o); err != nil {
				return err
			}
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order delivered",
		logx.String("event", "order_delivered"),
		logx.Int64("order_id", orderID),
		logx.Int64("driver_id", driverID),
	)
	if s.notifier != nil {
		s.notify(ctx, updated, "completed", s.notifier.Completed)
	}
	s.notify(ctx, updated, "status_changed", s.notifierStatusChanged())
	return updated, nil
}

// Active returns the driver's current in-flight order, or nil.
func (s *Service) Active(ctx context.Context, driverID int64) (*domain.Order, error) {
	if driverID <= 0 {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.ActiveByDriver(ctx, driverID)
}

// History returns a page of the driver's delivered orders.
func (s *Service) History(ctx context.Context, driverID int64, cursor string) ([]domain.Order, string, error) {
	if driverID <= 0 {
		return nil, "", apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.HistoryByDriver(ctx, driverID, cursor, historyPageSize)
}

// transition writes the status change and its audit event, and mirrors the
// new status onto the in-memory order.
func (s *Service) transition(ctx context.Context, tx ordertx.Repository, o *domain.Order, to domain.OrderStatus, driverID int64, at time.Time) error {
	if err := tx.SetStatus(ctx, o.ID, to, at); err != nil {
		return err
	}
	if err := tx.AppendEvent(ctx, &domain.OrderEvent{
		OrderID:    o.ID,
		FromStatus: o.Status,
		ToStatus:   to,
		ActorType:  domain.ActorDriver,
		ActorID:    &driverID,
		CreatedAt:  at,
	}); err != nil {
		return err
	}
	o.Status = to
	o.UpdatedAt = at
	return nil
}

// checkGeofence verifies the driver's latest known position lies within the
// geofence radius of the target point. Sample age is not bounded, only
// logged.
func (s *Service) checkGeofence(ctx context.Context, driverID int64, target domain.Point) error {
	loc, err := s.locations.Latest(ctx, driverID)
	if err != nil {
		return fmt.Errorf("get driver location: %w", err)
	}
	if loc == nil {
		return apperr.ErrLocationMissing
	}

	dist := geo.Distance(loc.Position, target)
	if dist > s.geofenceRadiusKm {
		if s.geofenceViolations != nil {
			s.geofenceViolations.Inc()
		}
		s.logger.Warn("geofence violation",
			logx.Int64("driver_id", driverID),
			logx.Float64("distance_km", dist),
			logx.Float64("radius_km", s.geofenceRadiusKm),
			logx.Duration("sample_age", s.now().Sub(loc.RecordedAt)),
		)
		return fmt.Errorf("%w: driver is %s away", apperr.ErrGeofence, geo.FormatDistance(dist))
	}
	return nil
}

func (s *Service) notifierStatusChanged() func(context.Context, *domain.Order) error {
	if s.notifier == nil {
		return nil
	}
	return s.notifier.StatusChanged
}

func (s *Service) notify(ctx context.Context, o *domain.Order, kind string, fn func(context.Context, *domain.Order) error) {
	if fn == nil || o == nil {
		return
	}
	if err := fn(ctx, o); err != nil {
		s.logger.Warn("notification failed",
			logx.String("kind", kind),
			logx.Int64("order_id", o.ID),
			logx.Any("err", err),
		)
	}
}

func validateIDs(driverID, orderID int64) error {
	if driverID <= 0 || orderID <= 0 {
		return apperr.ErrInvalid
	}
	return nil
}
