package ratelimit

import (
	"context"

	"github.com/compozy/autoflow/engine/infra/monitoring/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type blockMetrics struct {
	blocked metric.Int64Counter
}

func newBlockMetrics(meter metric.Meter) *blockMetrics {
	if meter == nil {
		return &blockMetrics{}
	}
	counter, err := meter.Int64Counter(
		metrics.MetricName("rate_limit_blocks_total"),
		metric.WithDescription("Total number of requests blocked by rate limiting"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return &blockMetrics{}
	}
	return &blockMetrics{blocked: counter}
}

func (m *blockMetrics) record(ctx context.Context, route string) {
	if m.blocked == nil {
		return
	}
	m.blocked.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route)))
}
