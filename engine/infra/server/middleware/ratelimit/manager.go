// Package ratelimit limits API requests per client IP with a memory or Redis store.
package ratelimit

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.opentelemetry.io/otel/metric"
)

type Manager struct {
	config  *Config
	limiter *limiter.Limiter
	metrics *blockMetrics
}

// NewManager builds a limiter over client when it is non-nil, in memory otherwise.
func NewManager(cfg *Config, client redis.UniversalClient, meter metric.Meter) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := limiter.StoreOptions{Prefix: cfg.Prefix, MaxRetry: 3}
	var (
		store limiter.Store
		err   error
	)
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(opts)
	}
	return &Manager{
		config:  cfg,
		limiter: limiter.New(store, cfg.Rate()),
		metrics: newBlockMetrics(meter),
	}, nil
}

// Middleware answers 429 with a problem document once a client exceeds the rate.
func (m *Manager) Middleware() gin.HandlerFunc {
	limit := mgin.NewMiddleware(m.limiter,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			m.metrics.record(c.Request.Context(), c.FullPath())
			c.Header("Content-Type", "application/problem+json")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":   http.StatusTooManyRequests,
				"error":    http.StatusText(http.StatusTooManyRequests),
				"details":  "rate limit exceeded",
				"code":     "rate_limited",
				"type":     "about:blank",
				"instance": c.Request.URL.Path,
			})
		}),
	)
	return func(c *gin.Context) {
		if slices.Contains(m.config.ExcludedPaths, c.Request.URL.Path) {
			c.Next()
			return
		}
		limit(c)
	}
}
