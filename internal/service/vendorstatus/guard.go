// Package vendorstatus guards vendor-requested order status changes. Its
// legality matrix is independent of the driver state machine: vendors move
// orders through the commercial lifecycle, drivers through the physical one.
package vendorstatus

import (
	"context"
	"fmt"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/ports/ordertx"
)

// notifier publishes vendor-driven lifecycle notifications. Failures are
// logged, never propagated.
type notifier interface {
	StatusChanged(ctx context.Context, o *domain.Order) error
	Dispatched(ctx context.Context, o *domain.Order) error
	Cancelled(ctx context.Context, o *domain.Order) error
}

// Service - the vendor-side status guard.
type Service struct {
	repo             ordertx.Runner
	notifier         notifier
	logger           logx.Logger
	operationTimeout time.Duration
	now              func() time.Time
}

// NewService - creates a new vendorstatus Service.
func NewService(repo ordertx.Runner, n notifier, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		repo:             repo,
		notifier:         n,
		logger:           logger,
		operationTimeout: timeout,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Change applies a vendor-requested status change under the vendor legality
// matrix. Orders owned by another vendor are reported as not found.
func (s *Service) Change(ctx context.Context, vendorID, orderID int64, target domain.OrderStatus) (*domain.Order, error) {
	if vendorID <= 0 || orderID <= 0 {
		return nil, apperr.ErrInvalid
	}
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalid, string(target))
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var updated *domain.Order
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil || o.VendorID != vendorID {
			return apperr.ErrNotFound
		}
		if !domain.VendorCanSet(o.Status, target) {
			return fmt.Errorf("%w: cannot change status from %s to %s",
				apperr.ErrInvalidState, string(o.Status), string(target))
		}

		now := s.now()
		if err := tx.SetStatus(ctx, orderID, target, now); err != nil {
			return err
		}
		if err := tx.AppendEvent(ctx, &domain.OrderEvent{
			OrderID:    orderID,
			FromStatus: o.Status,
			ToStatus:   target,
			ActorType:  domain.ActorVendor,
			ActorID:    &vendorID,
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		o.Status = target
		o.UpdatedAt = now
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("vendor status change",
		logx.String("event", "vendor_status_change"),
		logx.Int64("order_id", orderID),
		logx.Int64("vendor_id", vendorID),
		logx.String("status", string(target)),
	)

	if s.notifier != nil {
		switch target {
		case domain.StatusDispatched:
			s.notify(ctx, updated, "dispatched", s.notifier.Dispatched)
		case domain.StatusCancelled:
			s.notify(ctx, updated, "cancelled", s.notifier.Cancelled)
		}
		s.notify(ctx, updated, "status_changed", s.notifier.StatusChanged)
	}
	return updated, nil
}

// UpdateOrderStatus sets the status without consulting the vendor matrix. It
// exists for the payment pathway, which reflects externally decided facts.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	if orderID <= 0 {
		return apperr.ErrInvalid
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", apperr.ErrInvalid, string(status))
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
		if o.Status == status {
			return nil
		}

		now := s.now()
		if err := tx.SetStatus(ctx, orderID, status, now); err != nil {
			return err
		}
		return tx.AppendEvent(ctx, &domain.OrderEvent{
			OrderID:    orderID,
			FromStatus: o.Status,
			ToStatus:   status,
			ActorType:  domain.ActorSystem,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("order status updated",
		logx.String("event", "order_status_updated"),
		logx.Int64("order_id", orderID),
		logx.String("status", string(status)),
	)
	return nil
}

func (s *Service) notify(ctx context.Context, o *domain.Order, kind string, fn func(context.Context, *domain.Order) error) {
	if err := fn(ctx, o); err != nil {
		s.logger.Warn("notification failed",
			logx.String("kind", kind),
			logx.Int64("order_id", o.ID),
			logx.Any("err", err),
		)
	}
}
