// Package cache holds the Redis connection and the stores built on it.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/compozy/autoflow/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const fallbackRedisPingTimeout = 10 * time.Second

type Redis struct {
	client redis.UniversalClient
	config *Config
	once   sync.Once
	ctx    context.Context
}

// NewRedis connects to cfg.URL and pings it within the configured timeout.
func NewRedis(ctx context.Context, cfg *Config) (*Redis, error) {
	log := logger.FromContext(ctx).With("component", "infra_redis")
	ctx = logger.ContextWithLogger(ctx, log)
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = fallbackRedisPingTimeout
	}
	if err := pingRedis(ctx, client, timeout); err != nil {
		client.Close()
		return nil, err
	}
	log.Info("Redis connection established", "addr", opt.Addr, "db", opt.DB)
	return &Redis{client: client, config: cfg, ctx: ctx}, nil
}

// NewRedisFromClient wraps an existing client, mainly for tests.
func NewRedisFromClient(ctx context.Context, client redis.UniversalClient, cfg *Config) *Redis {
	return &Redis{client: client, config: cfg, ctx: ctx}
}

func pingRedis(ctx context.Context, client redis.UniversalClient, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("pinging Redis server (timeout=%s): %w", timeout, err)
	}
	return nil
}

// Close shuts down the Redis connection. Repeated calls are no-ops.
func (r *Redis) Close() error {
	var err error
	r.once.Do(func() {
		err = r.client.Close()
		if err != nil {
			logger.FromContext(r.ctx).Error("Redis connection close failed", "error", err)
		} else {
			logger.FromContext(r.ctx).Debug("Redis connection closed")
		}
	})
	return err
}

func (r *Redis) Client() redis.UniversalClient {
	return r.client
}

func (r *Redis) key(parts ...string) string {
	k := r.config.prefix()
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}
