package monitoring

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/compozy/autoflow/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
)

func TestConfig(t *testing.T) {
	t.Run("Should map application config and keep the default path", func(t *testing.T) {
		cfg := FromAppConfig(config.MonitoringConfig{Enabled: true})
		assert.True(t, cfg.Enabled)
		assert.Equal(t, "/metrics", cfg.Path)
	})

	t.Run("Should reject paths under the API prefix", func(t *testing.T) {
		assert.Error(t, (&Config{Path: "/api/metrics"}).Validate())
		assert.Error(t, (&Config{Path: "metrics"}).Validate())
		assert.Error(t, (&Config{Path: "/metrics?x=1"}).Validate())
		assert.NoError(t, DefaultConfig().Validate())
	})
}

func TestNewMonitoringService(t *testing.T) {
	ctx := context.Background()

	t.Run("Should use a no-op meter when disabled", func(t *testing.T) {
		service, err := NewMonitoringService(ctx, nil)
		require.NoError(t, err)
		assert.False(t, service.IsInitialized())
		rec := httptest.NewRecorder()
		service.ExporterHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("Should expose recorded metrics in Prometheus format", func(t *testing.T) {
		ResetSystemMetricsForTesting()
		service, err := NewMonitoringService(ctx, &Config{Enabled: true, Path: "/metrics"})
		require.NoError(t, err)
		defer func() { _ = service.Shutdown(ctx) }()
		counter, err := service.Meter().Int64Counter("autoflow_test_events_total", metric.WithDescription("test"))
		require.NoError(t, err)
		counter.Add(ctx, 3)
		rec := httptest.NewRecorder()
		service.ExporterHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
		assert.Equal(t, http.StatusOK, rec.Code)
		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "autoflow_test_events_total")
		assert.Contains(t, string(body), "autoflow_uptime_seconds")
	})

	t.Run("Should fall back to a disabled service on invalid config", func(t *testing.T) {
		service := NewMonitoringServiceWithFallback(ctx, &Config{Enabled: true})
		assert.False(t, service.IsInitialized())
		assert.Error(t, service.InitializationError())
	})
}
