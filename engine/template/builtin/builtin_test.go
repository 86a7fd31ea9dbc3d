package builtin

import (
	"context"
	"testing"

	"github.com/compozy/autoflow/engine/plan"
	"github.com/compozy/autoflow/engine/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *template.Service {
	t.Helper()
	reg, err := NewRegistry()
	require.NoError(t, err)
	return template.NewService(reg)
}

func TestBuiltinTemplates(t *testing.T) {
	ctx := context.Background()

	t.Run("Should forward webhook bodies with a slugified path", func(t *testing.T) {
		p, err := newService(t).Build(ctx, "webhook_to_http", map[string]any{
			"path":      "Orders Created!",
			"targetUrl": "https://example.com/orders",
		})
		require.NoError(t, err)
		assert.Equal(t, "orders-created", p.Trigger.Webhook.Path)
		params := p.Actions[0].Params.(*plan.HTTPRequestParams)
		assert.Equal(t, "{{webhook.body}}", params.Body)
		assert.Equal(t, "POST", params.Method)
	})

	t.Run("Should chain summary and email", func(t *testing.T) {
		p, err := newService(t).Build(ctx, "webhook_email_notify", map[string]any{"recipient": "ops@example.com"})
		require.NoError(t, err)
		assert.Equal(t, []string{"summarize"}, plan.StartActions(p))
		assert.Equal(t, []string{"notify"}, p.Actions[0].OnSuccessNext)
	})

	t.Run("Should prefer a cron schedule over the interval", func(t *testing.T) {
		svc := newService(t)
		p, err := svc.Build(ctx, "scheduled_http_check", map[string]any{
			"targetUrl":  "https://example.com/health",
			"alertEmail": "ops@example.com",
			"schedule":   "*/10 * * * *",
		})
		require.NoError(t, err)
		assert.Equal(t, "*/10 * * * *", p.Trigger.Cron.CronExpression)
		assert.Equal(t, []string{"alert"}, p.Actions[0].OnFailureNext)

		p, err = svc.Build(ctx, "scheduled_http_check", map[string]any{
			"targetUrl":  "https://example.com/health",
			"alertEmail": "ops@example.com",
		})
		require.NoError(t, err)
		require.NotNil(t, p.Trigger.Cron.Interval)
		assert.Equal(t, 5, p.Trigger.Cron.Interval.Amount)
	})

	t.Run("Should delay before the manual request", func(t *testing.T) {
		p, err := newService(t).Build(ctx, "manual_delayed_request", map[string]any{
			"targetUrl":    "https://example.com",
			"delaySeconds": "30",
		})
		require.NoError(t, err)
		delay := p.Actions[0].Params.(*plan.DelayParams)
		assert.Equal(t, 30, delay.Interval.Amount)
	})

	t.Run("Should produce plans that validate on their own", func(t *testing.T) {
		inputs := map[string]map[string]any{
			"webhook_to_http":        {"targetUrl": "https://example.com"},
			"webhook_email_notify":   {"recipient": "a@example.com"},
			"scheduled_http_check":   {"targetUrl": "https://example.com", "alertEmail": "a@example.com"},
			"manual_delayed_request": {"targetUrl": "https://example.com"},
		}
		svc := newService(t)
		for _, meta := range svc.Registry().List() {
			p, err := svc.Build(ctx, meta.Name, inputs[meta.Name])
			require.NoError(t, err, meta.Name)
			data, err := p.JSON()
			require.NoError(t, err)
			_, err = plan.Parse(data)
			assert.NoError(t, err, meta.Name)
		}
	})
}
