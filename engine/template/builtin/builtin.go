// Package builtin ships the stock workflow recipes.
package builtin

import (
	"fmt"

	"github.com/compozy/autoflow/engine/plan"
	"github.com/compozy/autoflow/engine/template"
	"github.com/gosimple/slug"
)

// All returns every built-in template.
func All() []template.Template {
	return []template.Template{
		webhookToHTTP{},
		webhookEmailNotify{},
		scheduledHTTPCheck{},
		manualDelayedRequest{},
	}
}

// Register adds the built-in templates to reg.
func Register(reg *template.Registry) error {
	for _, t := range All() {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry preloaded with the built-in templates.
func NewRegistry() (*template.Registry, error) {
	reg := template.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func str(inputs map[string]any, key string) string {
	if v, ok := inputs[key].(string); ok {
		return v
	}
	return ""
}

func strPtr(s string) *string { return &s }

func integer(inputs map[string]any, key string) (int64, error) {
	switch v := inputs[key].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("input %s is not an integer", key)
	}
}

func webhookPath(raw string) string {
	if s := slug.Make(raw); s != "" {
		return s
	}
	return "hook"
}

func triggerBody() string {
	return plan.NewRef(plan.WebhookAlias, "body").String()
}
