package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/case-workflow/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis using the provided configuration. It returns
// nil when no address is configured.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Warn("REDIS_ADDR not provided; event deduplication disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client, ttl: cfg.DedupTTL()}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// Claim marks key as processed for the dedup TTL. It reports false when the
// key was already present.
func (r *Redis) Claim(ctx context.Context, key string) (bool, error) {
	if r == nil || r.Client == nil {
		return false, errors.New("redis client not configured")
	}
	return r.Client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
}

// Release forgets key so a later delivery may claim it again.
func (r *Redis) Release(ctx context.Context, key string) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Del(ctx, key).Err()
}
