package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewTrackingRetriesTotal returns a Prometheus counter for the number of retry attempts against the tracking service
func NewTrackingRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracking_retries_total",
		Help: "Total number of retry attempts performed by the tracking gateway",
	})
}

// NewGeofenceViolationsTotal returns a Prometheus counter for rejected geofenced transitions
func NewGeofenceViolationsTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geofence_violations_total",
		Help: "Total number of dispatch transitions rejected by the geofence check",
	})
}

// NewEarningsRecordedTotal returns a Prometheus counter for recorded driver earnings
func NewEarningsRecordedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "driver_earnings_recorded_total",
		Help: "Total number of driver earning rows recorded on delivery",
	})
}
