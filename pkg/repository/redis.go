package repository

import (
	"context"
	"time"

	"github.com/example/rentalshop/pkg/config"
	"github.com/go-redis/redis/v8"
)

// RedisRepository holds the rate limit counters.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// IncrWindow increments key and starts its expiry on the first hit of a
// window. It returns the count after the increment.
func (r *RedisRepository) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}
