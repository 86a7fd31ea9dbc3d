package plan

import (
	"encoding/json"
	"fmt"
)

// TriggerType tags the active Trigger variant.
type TriggerType string

const (
	TriggerWebhook TriggerType = "webhook"
	TriggerCron    TriggerType = "cron"
	TriggerManual  TriggerType = "manual"
)

// WebhookTrigger starts a workflow when an HTTP request hits Path.
type WebhookTrigger struct {
	Path   string `json:"path"             validate:"required"`
	Method string `json:"method,omitempty" validate:"omitempty,httpmethod"`
}

// CronTrigger starts a workflow on a schedule; at least one field must be set.
type CronTrigger struct {
	CronExpression string    `json:"cronExpression,omitempty" validate:"omitempty,cronexpr"`
	Interval       *Interval `json:"interval,omitempty"`
}

// ManualTrigger starts a workflow on explicit request only.
type ManualTrigger struct{}

// Trigger is a tagged union: Type names the variant and exactly one payload is set.
type Trigger struct {
	Type    TriggerType
	Webhook *WebhookTrigger
	Cron    *CronTrigger
	Manual  *ManualTrigger
}

// TriggerVisitor receives the active Trigger variant.
type TriggerVisitor interface {
	VisitWebhook(t *WebhookTrigger) error
	VisitCron(t *CronTrigger) error
	VisitManual(t *ManualTrigger) error
}

func NewWebhookTrigger(path, method string) Trigger {
	return Trigger{Type: TriggerWebhook, Webhook: &WebhookTrigger{Path: path, Method: method}}
}

func NewCronTrigger(expression string) Trigger {
	return Trigger{Type: TriggerCron, Cron: &CronTrigger{CronExpression: expression}}
}

func NewIntervalTrigger(amount int, unit IntervalUnit) Trigger {
	return Trigger{Type: TriggerCron, Cron: &CronTrigger{Interval: &Interval{Amount: amount, Unit: unit}}}
}

func NewManualTrigger() Trigger {
	return Trigger{Type: TriggerManual, Manual: &ManualTrigger{}}
}

// Visit dispatches to the visitor method matching the active variant.
func (t *Trigger) Visit(v TriggerVisitor) error {
	switch t.Type {
	case TriggerWebhook:
		if t.Webhook == nil {
			return fmt.Errorf("webhook trigger payload is missing")
		}
		return v.VisitWebhook(t.Webhook)
	case TriggerCron:
		if t.Cron == nil {
			return fmt.Errorf("cron trigger payload is missing")
		}
		return v.VisitCron(t.Cron)
	case TriggerManual:
		if t.Manual == nil {
			return v.VisitManual(&ManualTrigger{})
		}
		return v.VisitManual(t.Manual)
	default:
		return fmt.Errorf("unsupported trigger type %q", t.Type)
	}
}

func (t Trigger) MarshalJSON() ([]byte, error) {
	switch t.Type {
	case TriggerWebhook:
		return json.Marshal(struct {
			Type TriggerType `json:"type"`
			*WebhookTrigger
		}{t.Type, t.Webhook})
	case TriggerCron:
		return json.Marshal(struct {
			Type TriggerType `json:"type"`
			*CronTrigger
		}{t.Type, t.Cron})
	default:
		return json.Marshal(struct {
			Type TriggerType `json:"type"`
		}{t.Type})
	}
}

func (t *Trigger) UnmarshalJSON(data []byte) error {
	decoded, err := decodeTrigger(data, "")
	if err != nil {
		return err
	}
	*t = decoded
	return nil
}

// variants counts the non-nil payloads.
func (t *Trigger) variants() int {
	n := 0
	if t.Webhook != nil {
		n++
	}
	if t.Cron != nil {
		n++
	}
	if t.Manual != nil {
		n++
	}
	return n
}
