package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
)

type kv interface {
	// Get returns (nil, nil) on a cache miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// CachedGateway is a read-through cache over the tracking gateway. Cache
// failures degrade to the underlying gateway and are only logged.
type CachedGateway struct {
	next   gateway
	kv     kv
	ttl    time.Duration
	logger logx.Logger
}

// NewCachedGateway returns a CachedGateway, or nil when next is nil.
func NewCachedGateway(next gateway, kv kv, ttl time.Duration, logger logx.Logger) *CachedGateway {
	if next == nil {
		return nil
	}
	return &CachedGateway{next: next, kv: kv, ttl: ttl, logger: logger}
}

// Latest returns the cached location when fresh, otherwise asks the next
// gateway and caches its answer. Absent drivers are not cached.
func (g *CachedGateway) Latest(ctx context.Context, driverID int64) (*domain.DriverLocation, error) {
	key := locationKey(driverID)

	b, err := g.kv.Get(ctx, key)
	if err != nil {
		g.logger.Warn("location cache get failed",
			logx.Int64("driver_id", driverID), logx.Any("err", err))
	} else if b != nil {
		var dto locationDTO
		if uerr := json.Unmarshal(b, &dto); uerr != nil {
			g.logger.Warn("location cache entry corrupt",
				logx.Int64("driver_id", driverID), logx.Any("err", uerr))
		} else {
			return &domain.DriverLocation{
				DriverID:   dto.DriverID,
				Position:   domain.Point{Lat: dto.Lat, Lon: dto.Lon},
				RecordedAt: dto.RecordedAt,
			}, nil
		}
	}

	loc, err := g.next.Latest(ctx, driverID)
	if err != nil || loc == nil {
		return loc, err
	}

	payload, err := json.Marshal(locationDTO{
		DriverID:   loc.DriverID,
		Lat:        loc.Position.Lat,
		Lon:        loc.Position.Lon,
		RecordedAt: loc.RecordedAt,
	})
	if err == nil {
		if err := g.kv.Set(ctx, key, payload, g.ttl); err != nil {
			g.logger.Warn("location cache set failed",
				logx.Int64("driver_id", driverID), logx.Any("err", err))
		}
	}
	return loc, nil
}

func locationKey(driverID int64) string {
	return fmt.Sprintf("driver:%d:location", driverID)
}

// RedisKV adapts a Redis client to the kv contract.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV creates a new RedisKV.
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

// Get returns the value for key, or (nil, nil) on a miss.
func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// Set stores the value with the given TTL.
func (r *RedisKV) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, val, ttl).Err()
}
