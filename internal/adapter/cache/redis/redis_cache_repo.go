package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/davidjirca/dreamhome/internal/config"
	"github.com/davidjirca/dreamhome/internal/port/cache"
)

// deleteScanCount bounds how many keys one SCAN iteration inspects.
const deleteScanCount = 500

type redisStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisClient(cfg *config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", zap.String("address", cfg.Address), zap.Error(err))
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Address, err)
	}
	logger.Info("Successfully connected to Redis", zap.String("address", cfg.Address))
	return rdb, nil
}

func NewRedisStore(client *redis.Client, logger *zap.Logger) cache.Store {
	return &redisStore{client: client, logger: logger}
}

func (r *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrNotFound
		}
		r.logger.Error("Redis Get operation failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("redisStore.Get for key '%s': %w", key, err)
	}
	return val, nil
}

func (r *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Error("Redis Set operation failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redisStore.Set for key '%s': %w", key, err)
	}
	return nil
}

func (r *redisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Error("Redis Del operation failed", zap.Strings("keys", keys), zap.Error(err))
		return fmt.Errorf("redisStore.Delete: %w", err)
	}
	return nil
}

// DeleteByPrefix walks the keyspace with SCAN rather than KEYS so a large
// invalidation never blocks the server, deleting matches batch by batch.
func (r *redisStore) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	var (
		cursor  uint64
		deleted int64
	)
	pattern := prefix + "*"

	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, deleteScanCount).Result()
		if err != nil {
			r.logger.Error("Redis Scan operation failed", zap.String("pattern", pattern), zap.Error(err))
			return deleted, fmt.Errorf("redisStore.DeleteByPrefix scan '%s': %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			deleted += n
			if err != nil {
				r.logger.Error("Redis Del operation failed during prefix delete", zap.String("pattern", pattern), zap.Error(err))
				return deleted, fmt.Errorf("redisStore.DeleteByPrefix del '%s': %w", pattern, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func (r *redisStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Redis Incr operation failed", zap.String("key", key), zap.Error(err))
		return 0, fmt.Errorf("redisStore.Increment for key '%s': %w", key, err)
	}
	return incr.Val(), nil
}
