package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"service-dispatch/internal/config"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/gateway/tracking"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/transport/kafka"
)

// locationGateway is the assembled tracking gateway chain.
type locationGateway interface {
	Latest(ctx context.Context, driverID int64) (*domain.DriverLocation, error)
}

type trackingIn struct {
	dig.In

	Cfg     *config.Config
	Logger  logx.Logger
	Redis   *redis.Client
	Retries prometheus.Counter `name:"tracking_retries_total"`
}

func registerGateways(container *dig.Container) error {
	return provideAll(container,
		newRedisClient,
		newLocationGateway,
		newNotifyProducer,
	)
}

// newRedisClient returns nil when no cache address is configured.
func newRedisClient(cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
}

// newLocationGateway assembles client -> retry -> cache. The cache layer is
// skipped when Redis is not configured.
func newLocationGateway(in trackingIn) locationGateway {
	client := tracking.NewClient(in.Cfg.Tracking.BaseURL, in.Cfg.Tracking.Timeout)

	var gw locationGateway = tracking.NewRetryingGateway(client, in.Logger, in.Retries, tracking.RetryConfig{
		MaxAttempts: in.Cfg.Tracking.Retry.MaxAttempts,
		BaseDelay:   in.Cfg.Tracking.Retry.BaseDelay,
		MaxDelay:    in.Cfg.Tracking.Retry.MaxDelay,
	})

	if in.Redis != nil {
		gw = tracking.NewCachedGateway(gw, tracking.NewRedisKV(in.Redis), in.Cfg.Tracking.CacheTTL, in.Logger)
	}
	return gw
}

// newNotifyProducer returns a nil producer when Kafka is not configured;
// notifications are then dropped.
func newNotifyProducer(cfg *config.Config) (*kafka.Producer, error) {
	return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Notify.Topic)
}
