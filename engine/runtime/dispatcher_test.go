package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/compozy/autoflow/engine/compiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) CreateWorkflow(ctx context.Context, graph *compiler.Graph) (*WorkflowRef, error) {
	args := m.Called(ctx, graph)
	ref, _ := args.Get(0).(*WorkflowRef)
	return ref, args.Error(1)
}

func (m *mockClient) SetActive(ctx context.Context, workflowID string, active bool) error {
	return m.Called(ctx, workflowID, active).Error(0)
}

func (m *mockClient) Execute(ctx context.Context, workflowID string, input map[string]any) ([]byte, error) {
	args := m.Called(ctx, workflowID, input)
	body, _ := args.Get(0).([]byte)
	return body, args.Error(1)
}

func steppedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func TestNewDispatcher(t *testing.T) {
	t.Run("Should require a client", func(t *testing.T) {
		_, err := NewDispatcher(nil)
		assert.Error(t, err)
	})
}

func TestDispatcher_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("Should encode network failures in the result", func(t *testing.T) {
		client := &mockClient{}
		client.On("Execute", ctx, "wf-1", map[string]any(nil)).Return(nil, errors.New("dial tcp: connection refused"))
		d, err := NewDispatcher(client, WithClock(steppedClock(t0, t1)))
		require.NoError(t, err)
		res, err := d.Run(ctx, "wf-1", nil)
		require.NoError(t, err)
		assert.Equal(t, StatusError, res.Status)
		assert.Nil(t, res.ProviderExecutionID)
		require.NotNil(t, res.Error)
		assert.Equal(t, "dial tcp: connection refused", res.Error.Message)
		require.NotNil(t, res.FinishedAt)
		assert.Equal(t, t1, *res.FinishedAt)
		assert.Equal(t, int64(1500), *res.DurationMs)
		require.Len(t, res.Steps, 1)
		assert.Equal(t, StatusError, res.Steps[0].Status)
		client.AssertExpectations(t)
	})

	t.Run("Should keep provider status codes as the cause", func(t *testing.T) {
		client := &mockClient{}
		client.On("Execute", ctx, "wf-1", mock.Anything).Return(nil, &ProviderError{StatusCode: 429, Body: "slow down"})
		d, err := NewDispatcher(client, WithClock(steppedClock(t0, t1)))
		require.NoError(t, err)
		res, err := d.Run(ctx, "wf-1", map[string]any{"a": 1})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"statusCode": 429, "body": "slow down"}, res.Error.Cause)
	})

	t.Run("Should normalize successful responses", func(t *testing.T) {
		client := &mockClient{}
		client.On("Execute", ctx, "wf-2", mock.Anything).Return([]byte(`{"id": "ex-9", "status": "success", "output": {"n": 1}}`), nil)
		d, err := NewDispatcher(client, WithClock(steppedClock(t0, t1)))
		require.NoError(t, err)
		res, err := d.Run(ctx, "wf-2", map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, StatusSuccess, res.Status)
		assert.Equal(t, "ex-9", *res.ProviderExecutionID)
	})

	t.Run("Should reject an empty workflow id without calling the runtime", func(t *testing.T) {
		client := &mockClient{}
		d, err := NewDispatcher(client)
		require.NoError(t, err)
		_, err = d.Run(ctx, "", nil)
		assert.ErrorIs(t, err, ErrWorkflowIDRequired)
		client.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should record dispatch metrics by status", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		client := &mockClient{}
		client.On("Execute", ctx, "wf-3", mock.Anything).Return(nil, errors.New("boom"))
		d, err := NewDispatcher(client, WithMeter(provider.Meter("test")), WithClock(steppedClock(t0, t1)))
		require.NoError(t, err)
		_, err = d.Run(ctx, "wf-3", nil)
		require.NoError(t, err)
		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))
		names := map[string]bool{}
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				names[m.Name] = true
			}
		}
		assert.True(t, names["autoflow_dispatch_total"])
		assert.True(t, names["autoflow_dispatch_duration_seconds"])
	})
}
