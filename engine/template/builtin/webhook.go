package builtin

import (
	"github.com/compozy/autoflow/engine/plan"
	"github.com/compozy/autoflow/engine/template"
)

type webhookToHTTP struct{}

func (webhookToHTTP) Metadata() template.Metadata {
	return template.Metadata{
		Name:        "webhook_to_http",
		Title:       "Forward webhook to HTTP endpoint",
		Description: "Receives a webhook and forwards its body to another URL.",
		Trigger:     plan.TriggerWebhook,
		Tags:        []string{"webhook", "http"},
	}
}

func (webhookToHTTP) RequiredInputs() []template.Input {
	return []template.Input{
		{Name: "path", Type: template.InputString, Description: "Webhook path, slugified", Default: "incoming"},
		{Name: "targetUrl", Type: template.InputURL, Description: "Where the body is forwarded", Required: true},
		{Name: "method", Type: template.InputString, Description: "HTTP method for the forward", Default: "POST"},
	}
}

func (webhookToHTTP) BuildPlan(inputs map[string]any) (*plan.Plan, error) {
	path := webhookPath(str(inputs, "path"))
	return &plan.Plan{
		Name:        "Forward " + path,
		Description: "Forwards incoming webhook payloads to " + str(inputs, "targetUrl"),
		Intent:      "webhook_to_http",
		Trigger:     plan.NewWebhookTrigger(path, "POST"),
		Actions: []plan.Action{
			plan.NewAction("forward", &plan.HTTPRequestParams{
				URL:    strPtr(str(inputs, "targetUrl")),
				Method: str(inputs, "method"),
				Headers: map[string]any{
					"Content-Type": "application/json",
				},
				Body: triggerBody(),
			}),
		},
		Metadata: map[string]any{"template": "webhook_to_http"},
	}, nil
}

type webhookEmailNotify struct{}

func (webhookEmailNotify) Metadata() template.Metadata {
	return template.Metadata{
		Name:        "webhook_email_notify",
		Title:       "Email on webhook",
		Description: "Summarizes each incoming webhook and emails it to a recipient.",
		Trigger:     plan.TriggerWebhook,
		Tags:        []string{"webhook", "email"},
	}
}

func (webhookEmailNotify) RequiredInputs() []template.Input {
	return []template.Input{
		{Name: "path", Type: template.InputString, Description: "Webhook path, slugified", Default: "notify"},
		{Name: "recipient", Type: template.InputEmail, Description: "Email address to notify", Required: true},
		{Name: "subject", Type: template.InputString, Description: "Email subject", Default: "New webhook event"},
	}
}

func (webhookEmailNotify) BuildPlan(inputs map[string]any) (*plan.Plan, error) {
	path := webhookPath(str(inputs, "path"))
	return &plan.Plan{
		Name:    "Notify on " + path,
		Intent:  "webhook_email_notify",
		Trigger: plan.NewWebhookTrigger(path, "POST"),
		Actions: []plan.Action{
			plan.NewAction("summarize", &plan.SetDataParams{
				Values: map[string]any{
					"payload": triggerBody(),
					"source":  path,
				},
			}, "notify"),
			plan.NewAction("notify", &plan.SendEmailParams{
				To:      str(inputs, "recipient"),
				Subject: str(inputs, "subject"),
				Text:    plan.NewRef("summarize", "payload").String(),
			}),
		},
		Metadata: map[string]any{"template": "webhook_email_notify"},
	}, nil
}
