package runtime

import (
	"context"
	"fmt"
	"time"

	monitoringmetrics "github.com/compozy/autoflow/engine/infra/monitoring/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type dispatchMetrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

func newDispatchMetrics(meter metric.Meter) (*dispatchMetrics, error) {
	total, err := meter.Int64Counter(
		monitoringmetrics.MetricName("dispatch_total"),
		metric.WithDescription("Workflow executions dispatched to the runtime by normalized status"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatch counter: %w", err)
	}
	duration, err := meter.Float64Histogram(
		monitoringmetrics.MetricName("dispatch_duration_seconds"),
		metric.WithDescription("Round trip latency of runtime execute calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(monitoringmetrics.DispatchDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatch histogram: %w", err)
	}
	return &dispatchMetrics{total: total, duration: duration}, nil
}

func (m *dispatchMetrics) record(ctx context.Context, status Status, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", string(status)))
	m.total.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
