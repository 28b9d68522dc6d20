package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-dispatch/internal/metrics"
)

type metricsOut struct {
	dig.Out

	RateLimitExceededTotal prometheus.Counter `name:"rate_limit_exceeded_total"`
	TrackingRetriesTotal   prometheus.Counter `name:"tracking_retries_total"`
	GeofenceViolations     prometheus.Counter `name:"geofence_violations_total"`
	EarningsRecordedTotal  prometheus.Counter `name:"driver_earnings_recorded_total"`
}

// provideMetrics registers the service counters. An already registered
// collector is reused so repeated container builds stay idempotent.
func provideMetrics() (metricsOut, error) {
	rateLimit, err := registerCounter(metrics.NewRateLimitExceededTotal())
	if err != nil {
		return metricsOut{}, fmt.Errorf("register rate_limit_exceeded_total: %w", err)
	}
	trackingRetries, err := registerCounter(metrics.NewTrackingRetriesTotal())
	if err != nil {
		return metricsOut{}, fmt.Errorf("register tracking_retries_total: %w", err)
	}
	geofence, err := registerCounter(metrics.NewGeofenceViolationsTotal())
	if err != nil {
		return metricsOut{}, fmt.Errorf("register geofence_violations_total: %w", err)
	}
	earnings, err := registerCounter(metrics.NewEarningsRecordedTotal())
	if err != nil {
		return metricsOut{}, fmt.Errorf("register driver_earnings_recorded_total: %w", err)
	}

	return metricsOut{
		RateLimitExceededTotal: rateLimit,
		TrackingRetriesTotal:   trackingRetries,
		GeofenceViolations:     geofence,
		EarningsRecordedTotal:  earnings,
	}, nil
}

func registerCounter(c prometheus.Counter) (prometheus.Counter, error) {
	if err := prometheus.DefaultRegisterer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}
