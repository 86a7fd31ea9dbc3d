package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/compozy/autoflow/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var ErrWorkflowIDRequired = errors.New("workflow id is required")

type Option func(*Dispatcher)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func WithMeter(meter metric.Meter) Option {
	return func(d *Dispatcher) { d.meter = meter }
}

// WithLogger pins a logger instead of reading one from each call's context.
func WithLogger(log logger.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// Dispatcher runs deployed workflows. It performs one execute call per Run, never retries
// and holds no lock; concurrent runs are independent.
type Dispatcher struct {
	client  Client
	now     func() time.Time
	meter   metric.Meter
	log     logger.Logger
	metrics *dispatchMetrics
}

func NewDispatcher(client Client, opts ...Option) (*Dispatcher, error) {
	if client == nil {
		return nil, fmt.Errorf("runtime client is required")
	}
	d := &Dispatcher{client: client, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	if d.meter == nil {
		d.meter = otel.GetMeterProvider().Meter("autoflow.runtime")
	}
	m, err := newDispatchMetrics(d.meter)
	if err != nil {
		return nil, err
	}
	d.metrics = m
	return d, nil
}

// Run executes workflowID with input. Remote failures are encoded in the returned Result;
// the error is reserved for calls that could never be dispatched.
func (d *Dispatcher) Run(ctx context.Context, workflowID string, input map[string]any) (*Result, error) {
	if workflowID == "" {
		return nil, ErrWorkflowIDRequired
	}
	log := d.logger(ctx).With("workflow_id", workflowID)
	startedAt := d.now()
	body, err := d.client.Execute(ctx, workflowID, input)
	receivedAt := d.now()
	var res *Result
	if err != nil {
		log.Warn("Runtime execute call failed", "error", err)
		res = failureResult(err.Error(), causeOf(err), startedAt, receivedAt)
	} else {
		res = Normalize(body, startedAt, receivedAt)
	}
	d.metrics.record(ctx, res.Status, receivedAt.Sub(startedAt))
	log.Info("Workflow execution dispatched", "status", res.Status, "steps", len(res.Steps))
	return res, nil
}

func (d *Dispatcher) logger(ctx context.Context) logger.Logger {
	if d.log != nil {
		return d.log
	}
	return logger.FromContext(ctx)
}

func causeOf(err error) any {
	var perr *ProviderError
	if errors.As(err, &perr) {
		cause := map[string]any{"statusCode": perr.StatusCode}
		if perr.Body != "" {
			cause["body"] = perr.Body
		}
		return cause
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return map[string]any{"timeout": true}
	}
	return nil
}
