package builtin

import (
	"github.com/compozy/autoflow/engine/plan"
	"github.com/compozy/autoflow/engine/template"
)

type scheduledHTTPCheck struct{}

func (scheduledHTTPCheck) Metadata() template.Metadata {
	return template.Metadata{
		Name:        "scheduled_http_check",
		Title:       "Scheduled HTTP check",
		Description: "Calls a URL on a schedule and emails an alert when the call fails.",
		Trigger:     plan.TriggerCron,
		Tags:        []string{"schedule", "http", "email"},
	}
}

func (scheduledHTTPCheck) RequiredInputs() []template.Input {
	return []template.Input{
		{Name: "targetUrl", Type: template.InputURL, Description: "URL to check", Required: true},
		{Name: "alertEmail", Type: template.InputEmail, Description: "Who to alert on failure", Required: true},
		{Name: "schedule", Type: template.InputCron, Description: "Cron expression; overrides intervalMinutes"},
		{Name: "intervalMinutes", Type: template.InputInteger, Description: "Check every N minutes", Default: int64(5)},
	}
}

func (scheduledHTTPCheck) BuildPlan(inputs map[string]any) (*plan.Plan, error) {
	trigger := plan.NewCronTrigger(str(inputs, "schedule"))
	if str(inputs, "schedule") == "" {
		minutes, err := integer(inputs, "intervalMinutes")
		if err != nil {
			return nil, err
		}
		trigger = plan.NewIntervalTrigger(int(minutes), plan.UnitMinutes)
	}
	check := plan.NewAction("check", &plan.HTTPRequestParams{
		URL:    strPtr(str(inputs, "targetUrl")),
		Method: "GET",
	})
	check.OnFailureNext = []string{"alert"}
	return &plan.Plan{
		Name:    "Check " + str(inputs, "targetUrl"),
		Intent:  "scheduled_http_check",
		Trigger: trigger,
		Actions: []plan.Action{
			check,
			plan.NewAction("alert", &plan.SendEmailParams{
				To:      str(inputs, "alertEmail"),
				Subject: "Health check failed",
				Text:    plan.NewRef("check", "error", "message").String(),
			}),
		},
		Metadata: map[string]any{"template": "scheduled_http_check"},
	}, nil
}

type manualDelayedRequest struct{}

func (manualDelayedRequest) Metadata() template.Metadata {
	return template.Metadata{
		Name:        "manual_delayed_request",
		Title:       "Delayed request",
		Description: "Waits after a manual start, then calls a URL.",
		Trigger:     plan.TriggerManual,
		Tags:        []string{"manual", "delay", "http"},
	}
}

func (manualDelayedRequest) RequiredInputs() []template.Input {
	return []template.Input{
		{Name: "targetUrl", Type: template.InputURL, Description: "URL to call", Required: true},
		{Name: "delaySeconds", Type: template.InputInteger, Description: "Seconds to wait", Default: int64(60)},
		{Name: "method", Type: template.InputString, Description: "HTTP method", Default: "GET"},
	}
}

func (manualDelayedRequest) BuildPlan(inputs map[string]any) (*plan.Plan, error) {
	seconds, err := integer(inputs, "delaySeconds")
	if err != nil {
		return nil, err
	}
	return &plan.Plan{
		Name:    "Delayed request",
		Intent:  "manual_delayed_request",
		Trigger: plan.NewManualTrigger(),
		Actions: []plan.Action{
			plan.NewAction("wait", &plan.DelayParams{
				Interval: &plan.Interval{Amount: int(seconds), Unit: plan.UnitSeconds},
			}, "request"),
			plan.NewAction("request", &plan.HTTPRequestParams{
				URL:    strPtr(str(inputs, "targetUrl")),
				Method: str(inputs, "method"),
			}),
		},
		Metadata: map[string]any{"template": "manual_delayed_request"},
	}, nil
}
