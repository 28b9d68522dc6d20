package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "dispatch_db",
}

var defaultTracking = Tracking{
	BaseURL:  "http://localhost:8091",
	Timeout:  2 * time.Second,
	CacheTTL: 5 * time.Second,
	Retry: RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   150 * time.Millisecond,
		MaxDelay:    200 * time.Millisecond,
	},
}

var defaultDispatch = Dispatch{
	// Guards against obviously wrong driver locations, not a tight
	// delivery perimeter.
	GeofenceRadiusKm: 300,
	// Fallback discovery radius when no configuration row exists.
	DiscoveryRadiusKm: 10,
	OperationTimeout:  3 * time.Second,
}

var defaultRateLimit = RateLimit{
	Enabled:    false,
	Rate:       20,
	Burst:      40,
	TTL:        5 * time.Minute,
	MaxBuckets: 10000,
}

const (
	defaultPaymentsTopic = "payment-events"
	defaultKafkaGroupID  = "service-dispatch-worker"
	defaultNotifyTopic   = "order-events"
)

// DefaultPort returns the default HTTP port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultTracking returns the default tracking gateway settings.
func DefaultTracking() Tracking {
	return defaultTracking
}

// DefaultDispatch returns the default dispatch settings.
func DefaultDispatch() Dispatch {
	return defaultDispatch
}

// DefaultRateLimit returns the default rate limit settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}

// DefaultPaymentsTopic returns the default payments topic.
func DefaultPaymentsTopic() string {
	return defaultPaymentsTopic
}

// DefaultKafkaGroupID returns the default consumer group id.
func DefaultKafkaGroupID() string {
	return defaultKafkaGroupID
}

// DefaultNotifyTopic returns the default notification topic.
func DefaultNotifyTopic() string {
	return defaultNotifyTopic
}
