// Package earnings records the driver's commission split when an order is
// delivered. Recording runs inside the delivery transaction, so the status
// change and the earning row commit or roll back together.
package earnings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/ports/ordertx"
)

// defaultCommissionPercent applies when no commission setting exists.
const defaultCommissionPercent = 10.0

type commissionSource interface {
	// CommissionPercent returns nil when the setting is absent.
	CommissionPercent(ctx context.Context) (*float64, error)
}

type counter interface {
	Inc()
}

// Recorder computes and persists driver earnings.
type Recorder struct {
	settings commissionSource
	recorded counter
	logger   logx.Logger
	now      func() time.Time
}

// NewRecorder - creates a new earnings Recorder.
func NewRecorder(settings commissionSource, recorded counter, logger logx.Logger) *Recorder {
	return &Recorder{
		settings: settings,
		recorded: recorded,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Record inserts the earning row for a delivered order. It is a no-op when
// the order carries no delivery fee or an earning already exists, and treats
// a duplicate-key conflict as already recorded. Amounts are minor units.
func (r *Recorder) Record(ctx context.Context, tx ordertx.Repository, o *domain.Order) error {
	if o.DriverID == nil {
		return fmt.Errorf("record earning: order %d has no driver", o.ID)
	}
	if o.DeliveryFee.Amount <= 0 {
		r.logger.Debug("no delivery fee, earning skipped", logx.Int64("order_id", o.ID))
		return nil
	}

	exists, err := tx.EarningExists(ctx, o.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	pct := defaultCommissionPercent
	if r.settings != nil {
		configured, err := r.settings.CommissionPercent(ctx)
		if err != nil {
			return fmt.Errorf("resolve commission: %w", err)
		}
		if configured != nil && *configured >= 0 {
			pct = *configured
		}
	}

	gross := o.DeliveryFee.Amount
	commission := int64(math.Round(float64(gross) * pct / 100))
	net := gross - commission
	if net < 0 {
		net = 0
	}

	e := &domain.DriverEarning{
		DriverID:   *o.DriverID,
		OrderID:    o.ID,
		Gross:      gross,
		Commission: commission,
		Net:        net,
		Currency:   o.DeliveryFee.Currency,
		Status:     domain.EarningPending,
		CreatedAt:  r.now(),
	}
	if err := tx.InsertEarning(ctx, e); err != nil {
		// A concurrent delivery already recorded it.
		if errors.Is(err, apperr.ErrConflict) {
			return nil
		}
		return err
	}

	if r.recorded != nil {
		r.recorded.Inc()
	}
	r.logger.Info("driver earning recorded",
		logx.String("event", "earning_recorded"),
		logx.Int64("order_id", o.ID),
		logx.Int64("driver_id", *o.DriverID),
		logx.Int64("gross", gross),
		logx.Int64("commission", commission),
		logx.Int64("net", net),
	)
	return nil
}
