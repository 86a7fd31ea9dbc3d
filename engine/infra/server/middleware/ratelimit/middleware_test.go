package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRouterForTest(t *testing.T, cfg *Config, client redis.UniversalClient) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	m, err := NewManager(cfg, client, nil)
	require.NoError(t, err)
	r.Use(m.Middleware())
	r.GET("/t", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func doReq(r *gin.Engine, path, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	req.RemoteAddr = ip + ":1234"
	r.ServeHTTP(w, req)
	return w
}

func testConfig(period time.Duration) *Config {
	cfg := DefaultConfig()
	cfg.Limit = 1
	cfg.Period = period
	cfg.Prefix = "test:ratelimit:"
	return cfg
}

func TestMiddleware(t *testing.T) {
	t.Run("Should block the second request from the same IP", func(t *testing.T) {
		r := buildRouterForTest(t, testConfig(time.Minute), nil)
		require.Equal(t, http.StatusOK, doReq(r, "/t", "1.2.3.4").Code)
		res := doReq(r, "/t", "1.2.3.4")
		require.Equal(t, http.StatusTooManyRequests, res.Code)
		assert.Contains(t, res.Body.String(), "rate_limited")
		assert.Equal(t, http.StatusOK, doReq(r, "/t", "5.6.7.8").Code)
	})

	t.Run("Should skip excluded paths", func(t *testing.T) {
		r := buildRouterForTest(t, testConfig(time.Minute), nil)
		for range 3 {
			assert.Equal(t, http.StatusOK, doReq(r, "/healthz", "1.2.3.4").Code)
		}
	})

	t.Run("Should share limits through Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		cfg := testConfig(time.Minute)
		first := buildRouterForTest(t, cfg, client)
		second := buildRouterForTest(t, cfg, client)
		require.Equal(t, http.StatusOK, doReq(first, "/t", "9.9.9.9").Code)
		assert.Equal(t, http.StatusTooManyRequests, doReq(second, "/t", "9.9.9.9").Code)
	})

	t.Run("Should reject a non-positive limit", func(t *testing.T) {
		cfg := testConfig(time.Minute)
		cfg.Limit = 0
		_, err := NewManager(cfg, nil, nil)
		assert.Error(t, err)
	})
}
