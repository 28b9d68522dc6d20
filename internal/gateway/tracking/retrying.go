package tracking

import (
	"context"
	"errors"
	"net"
	"time"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
)

type gateway interface {
	Latest(ctx context.Context, driverID int64) (*domain.DriverLocation, error)
}

type counter interface {
	Inc()
}

// RetryConfig describes the retry behaviour of RetryingGateway.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingGateway retries transient tracking failures with capped exponential
// backoff.
type RetryingGateway struct {
	next    gateway
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
	sleep   func(ctx context.Context, d time.Duration) bool
}

// NewRetryingGateway returns a RetryingGateway, or nil when next is nil.
func NewRetryingGateway(next gateway, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingGateway {
	if next == nil {
		return nil
	}
	return &RetryingGateway{next: next, logger: logger, retries: retries, cfg: cfg, sleep: sleepWithContext}
}

// Latest proxies to the next gateway, retrying retryable failures.
func (g *RetryingGateway) Latest(ctx context.Context, driverID int64) (*domain.DriverLocation, error) {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		loc, err := g.next.Latest(ctx, driverID)
		if err == nil {
			return loc, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("tracking gateway retry",
			logx.String("method", "Latest"),
			logx.Int64("driver_id", driverID),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Any("err", err),
		)
		if !g.sleep(ctx, delay) {
			break
		}
	}
	return nil, lastErr
}

// isRetryable treats network timeouts, 5xx and 429 as transient.
func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == 429
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// backoff computes the delay before the next attempt.
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
