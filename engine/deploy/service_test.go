package deploy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/compozy/autoflow/engine/apps"
	"github.com/compozy/autoflow/engine/compiler"
	"github.com/compozy/autoflow/engine/plan"
	"github.com/compozy/autoflow/engine/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) CreateWorkflow(ctx context.Context, graph *compiler.Graph) (*runtime.WorkflowRef, error) {
	args := m.Called(ctx, graph)
	ref, _ := args.Get(0).(*runtime.WorkflowRef)
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

const emailPlan = `{"name": "notify", "trigger": {"type": "webhook", "path": "in"},
  "actions": [{"id": "mail", "type": "send_email", "params": {"to": "ops@example.com", "text": "{{webhook.body}}"}}]}`

const manualPlan = `{"name": "manual", "trigger": {"type": "manual"},
  "actions": [{"id": "wait", "type": "delay", "params": {"durationMs": 100}}]}`

func newService(t *testing.T, client runtime.Client, conns apps.StaticConnections) *Service {
	t.Helper()
	checker := apps.NewChecker(apps.NewRegistry("email"), conns)
	svc, err := NewService(checker, client, WithBackoff(time.Millisecond))
	require.NoError(t, err)
	return svc
}

func TestService_Deploy(t *testing.T) {
	ctx := context.Background()
	connected := apps.StaticConnections{"u1": {{ServiceName: "email"}}}

	t.Run("Should create and activate webhook workflows", func(t *testing.T) {
		client := &mockClient{}
		client.On("CreateWorkflow", ctx, mock.AnythingOfType("*compiler.Graph")).Return(&runtime.WorkflowRef{ID: "wf-1"}, nil)
		client.On("SetActive", ctx, "wf-1", true).Return(nil)
		out, err := newService(t, client, connected).Deploy(ctx, Request{UserID: "u1", Plan: []byte(emailPlan)})
		require.NoError(t, err)
		assert.Equal(t, "wf-1", out.WorkflowID)
		assert.True(t, out.Active)
		assert.Equal(t, []string{"email"}, out.Apps)
		assert.Equal(t, compiler.TriggerNodeName, out.Graph.Nodes[0].Name)
		client.AssertExpectations(t)
	})

	t.Run("Should retry transient activation failures", func(t *testing.T) {
		client := &mockClient{}
		client.On("CreateWorkflow", ctx, mock.Anything).Return(&runtime.WorkflowRef{ID: "wf-2"}, nil)
		client.On("SetActive", mock.Anything, "wf-2", true).Return(&runtime.ProviderError{StatusCode: 503}).Twice()
		client.On("SetActive", mock.Anything, "wf-2", true).Return(nil).Once()
		out, err := newService(t, client, connected).Deploy(ctx, Request{UserID: "u1", Plan: []byte(emailPlan)})
		require.NoError(t, err)
		assert.True(t, out.Active)
		client.AssertNumberOfCalls(t, "SetActive", 3)
	})

	t.Run("Should not retry client errors on activation", func(t *testing.T) {
		client := &mockClient{}
		client.On("CreateWorkflow", ctx, mock.Anything).Return(&runtime.WorkflowRef{ID: "wf-3"}, nil)
		client.On("SetActive", mock.Anything, "wf-3", true).Return(&runtime.ProviderError{StatusCode: 400})
		_, err := newService(t, client, connected).Deploy(ctx, Request{UserID: "u1", Plan: []byte(emailPlan)})
		var perr *runtime.ProviderError
		require.ErrorAs(t, err, &perr)
		client.AssertNumberOfCalls(t, "SetActive", 1)
	})

	t.Run("Should record an inactive deployment when activation fails", func(t *testing.T) {
		client := &mockClient{}
		client.On("CreateWorkflow", ctx, mock.Anything).Return(&runtime.WorkflowRef{ID: "wf-9"}, nil)
		client.On("SetActive", mock.Anything, "wf-9", true).Return(&runtime.ProviderError{StatusCode: 400})
		svc := newService(t, client, connected)
		out, err := svc.Deploy(ctx, Request{UserID: "u1", Plan: []byte(emailPlan)})
		require.ErrorIs(t, err, ErrActivationFailed)
		var actErr *ActivationError
		require.ErrorAs(t, err, &actErr)
		assert.Equal(t, "wf-9", actErr.WorkflowID)
		require.NotNil(t, out)
		assert.False(t, out.Active)

		rec, err := svc.Get(ctx, "wf-9")
		require.NoError(t, err)
		assert.False(t, rec.Active)
		assert.Equal(t, "u1", rec.UserID)
		list, err := svc.List(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Should record an inactive deployment when retries run out", func(t *testing.T) {
		client := &mockClient{}
		client.On("CreateWorkflow", ctx, mock.Anything).Return(&runtime.WorkflowRef{ID: "wf-10"}, nil)
		client.On("SetActive", mock.Anything, "wf-10", true).Return(&runtime.ProviderError{StatusCode: 503})
		svc := newService(t, client, connected)
		_, err := svc.Deploy(ctx, Request{UserID: "u1", Plan: []byte(emailPlan)})
		require.ErrorIs(t, err, ErrActivationFailed)
		client.AssertNumberOfCalls(t, "SetActive", 4)
		rec, err := svc.Get(ctx, "wf-10")
		require.NoError(t, err)
		assert.False(t, rec.Active)
	})

	t.Run("Should leave manual workflows inactive", func(t *testing.T) {
		client := &mockClient{}
		client.On("CreateWorkflow", ctx, mock.Anything).Return(&runtime.WorkflowRef{ID: "wf-4"}, nil)
		out, err := newService(t, client, nil).Deploy(ctx, Request{UserID: "u1", Plan: []byte(manualPlan)})
		require.NoError(t, err)
		assert.False(t, out.Active)
		assert.Empty(t, out.Apps)
		client.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should keep plan and app error categories", func(t *testing.T) {
		client := &mockClient{}
		_, err := newService(t, client, nil).Deploy(ctx, Request{UserID: "u1", Plan: []byte(`{"name": "x"}`)})
		assert.ErrorIs(t, err, plan.ErrSchema)

		_, err = newService(t, client, apps.StaticConnections{}).Deploy(ctx, Request{UserID: "u1", Plan: []byte(emailPlan)})
		assert.ErrorIs(t, err, apps.ErrMissingConnections)
		client.AssertNotCalled(t, "CreateWorkflow", mock.Anything, mock.Anything)
	})

	t.Run("Should wrap runtime creation failures", func(t *testing.T) {
		client := &mockClient{}
		client.On("CreateWorkflow", ctx, mock.Anything).Return(nil, errors.New("down"))
		_, err := newService(t, client, connected).Deploy(ctx, Request{UserID: "u1", Plan: []byte(emailPlan)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create workflow")
	})
}

func TestService_Records(t *testing.T) {
	ctx := context.Background()
	connected := apps.StaticConnections{"u1": {{ServiceName: "email"}}}

	t.Run("Should record deployments per user newest first", func(t *testing.T) {
		client := &mockClient{}
		client.On("CreateWorkflow", ctx, mock.Anything).Return(&runtime.WorkflowRef{ID: "wf-a"}, nil).Once()
		client.On("CreateWorkflow", ctx, mock.Anything).Return(&runtime.WorkflowRef{ID: "wf-b"}, nil).Once()
		client.On("SetActive", mock.Anything, "wf-a", true).Return(nil)
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		tick := 0
		clock := func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		}
		checker := apps.NewChecker(apps.NewRegistry("email"), connected)
		svc, err := NewService(checker, client, WithBackoff(time.Millisecond), WithClock(clock))
		require.NoError(t, err)

		_, err = svc.Deploy(ctx, Request{UserID: "u1", Plan: []byte(emailPlan)})
		require.NoError(t, err)
		_, err = svc.Deploy(ctx, Request{UserID: "u1", Plan: []byte(manualPlan)})
		require.NoError(t, err)

		rec, err := svc.Get(ctx, "wf-a")
		require.NoError(t, err)
		assert.Equal(t, "notify", rec.Name)
		assert.Equal(t, plan.TriggerWebhook, rec.Trigger)
		assert.True(t, rec.Active)

		list, err := svc.List(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "wf-b", list[0].WorkflowID)
		assert.False(t, list[0].Active)

		empty, err := svc.List(ctx, "someone-else")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("Should report unknown workflows", func(t *testing.T) {
		_, err := NewMemoryStore().Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrDeploymentNotFound)
	})
}
