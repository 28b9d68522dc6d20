package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DB stores Postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a pgx connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Kafka stores consumer settings for the payment-events worker.
type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Notify stores producer settings for outgoing order notifications.
type Notify struct {
	Topic string
}

// RetryConfig stores retry behaviour for remote gateways.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Tracking stores settings for the driver-location tracking gateway.
type Tracking struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
	Retry    RetryConfig
}

// Redis stores settings for the location cache.
type Redis struct {
	Addr string
}

// Dispatch stores dispatch state machine settings.
type Dispatch struct {
	GeofenceRadiusKm  float64
	DiscoveryRadiusKm float64
	OperationTimeout  time.Duration
}

// RateLimit stores HTTP rate limiting settings.
type RateLimit struct {
	Enabled    bool
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
}

// Pprof stores the side pprof server settings.
type Pprof struct {
	Addr string
	User string
	Pass string
}

// Config stores all service settings.
type Config struct {
	Port      int
	DB        DB
	Kafka     Kafka
	Notify    Notify
	Tracking  Tracking
	Redis     Redis
	Dispatch  Dispatch
	RateLimit RateLimit
	Pprof     Pprof
}

// Load reads configuration in order: .env (if present), then environment, then flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:      envInt("PORT", DefaultPort()),
		DB:        loadDB(),
		Kafka:     loadKafka(),
		Notify:    Notify{Topic: envStr("NOTIFY_TOPIC", DefaultNotifyTopic())},
		Tracking:  loadTracking(),
		Redis:     Redis{Addr: envStr("REDIS_ADDR", "")},
		Dispatch:  loadDispatch(),
		RateLimit: loadRateLimit(),
		Pprof: Pprof{
			Addr: envStr("PPROF_ADDR", ""),
			User: envStr("PPROF_USER", ""),
			Pass: envStr("PPROF_PASS", ""),
		},
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.Parse()

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Dispatch.GeofenceRadiusKm <= 0 {
		return nil, fmt.Errorf("invalid geofence radius: %f", cfg.Dispatch.GeofenceRadiusKm)
	}
	return cfg, nil
}

func loadDB() DB {
	def := DefaultDB()
	return DB{
		Host: envStr("POSTGRES_HOST", def.Host),
		Port: envStr("POSTGRES_PORT", def.Port),
		User: envStr("POSTGRES_USER", def.User),
		Pass: envStr("POSTGRES_PASSWORD", def.Pass),
		Name: envStr("POSTGRES_DB", def.Name),
	}
}

func loadKafka() Kafka {
	var brokers []string
	if v := envStr("KAFKA_BROKERS", ""); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	return Kafka{
		Brokers: brokers,
		Topic:   envStr("KAFKA_PAYMENTS_TOPIC", DefaultPaymentsTopic()),
		GroupID: envStr("KAFKA_GROUP_ID", DefaultKafkaGroupID()),
	}
}

func loadTracking() Tracking {
	def := DefaultTracking()
	return Tracking{
		BaseURL:  envStr("TRACKING_BASE_URL", def.BaseURL),
		Timeout:  envDuration("TRACKING_TIMEOUT", def.Timeout),
		CacheTTL: envDuration("TRACKING_CACHE_TTL", def.CacheTTL),
		Retry: RetryConfig{
			MaxAttempts: envInt("TRACKING_RETRY_MAX_ATTEMPTS", def.Retry.MaxAttempts),
			BaseDelay:   envDuration("TRACKING_RETRY_BASE_DELAY", def.Retry.BaseDelay),
			MaxDelay:    envDuration("TRACKING_RETRY_MAX_DELAY", def.Retry.MaxDelay),
		},
	}
}

func loadDispatch() Dispatch {
	def := DefaultDispatch()
	return Dispatch{
		GeofenceRadiusKm:  envFloat("DISPATCH_GEOFENCE_RADIUS_KM", def.GeofenceRadiusKm),
		DiscoveryRadiusKm: envFloat("DISPATCH_DISCOVERY_RADIUS_KM", def.DiscoveryRadiusKm),
		OperationTimeout:  envDuration("DISPATCH_OPERATION_TIMEOUT", def.OperationTimeout),
	}
}

func loadRateLimit() RateLimit {
	def := DefaultRateLimit()
	return RateLimit{
		Enabled:    envBool("RATE_LIMIT_ENABLED", def.Enabled),
		Rate:       envFloat("RATE_LIMIT_RATE", def.Rate),
		Burst:      envInt("RATE_LIMIT_BURST", def.Burst),
		TTL:        envDuration("RATE_LIMIT_TTL", def.TTL),
		MaxBuckets: envInt("RATE_LIMIT_MAX_BUCKETS", def.MaxBuckets),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
