package payments

import (
	"context"
	"errors"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
)

// Processor processes payment events
type Processor struct {
	statuses StatusSetter
	factory  *actionFactory
}

// NewProcessor creates a new payments.Processor
func NewProcessor(statuses StatusSetter) *Processor {
	p := &Processor{statuses: statuses}
	p.factory = newActionFactory(p.onPaid, p.onFailed, p.onRefunded)
	return p
}

// Handle processes a single payments.Event. Unknown statuses are ignored.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	if p.factory == nil {
		return nil
	}
	fn, ok := p.factory.get(e.Status)
	if !ok {
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onPaid(ctx context.Context, e Event) error {
	return p.set(ctx, e, domain.StatusPaid)
}

func (p *Processor) onFailed(ctx context.Context, e Event) error {
	return p.set(ctx, e, domain.StatusFailed)
}

func (p *Processor) onRefunded(ctx context.Context, e Event) error {
	return p.set(ctx, e, domain.StatusRefunded)
}

// set applies the status; orders unknown to this service are skipped rather
// than redelivered forever.
func (p *Processor) set(ctx context.Context, e Event, status domain.OrderStatus) error {
	err := p.statuses.UpdateOrderStatus(ctx, e.OrderID, status)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	return err
}
