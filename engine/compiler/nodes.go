package compiler

import (
	"fmt"
	"strings"

	"github.com/compozy/autoflow/engine/plan"
	"github.com/google/uuid"
)

const (
	webhookNodeType  = "n8n-nodes-base.webhook"
	scheduleNodeType = "n8n-nodes-base.scheduleTrigger"
	manualNodeType   = "n8n-nodes-base.manualTrigger"
	httpNodeType     = "n8n-nodes-base.httpRequest"
	setNodeType      = "n8n-nodes-base.set"
	emailNodeType    = "n8n-nodes-base.emailSend"
	waitNodeType     = "n8n-nodes-base.wait"
)

type triggerBuilder struct {
	planName string
	node     Node
}

func (b *triggerBuilder) VisitWebhook(t *plan.WebhookTrigger) error {
	method := strings.ToUpper(t.Method)
	if method == "" {
		method = "POST"
	}
	b.node = Node{
		Type:        webhookNodeType,
		TypeVersion: 2,
		Parameters: map[string]any{
			"path":         t.Path,
			"httpMethod":   method,
			"responseMode": "onReceived",
		},
		WebhookID: uuid.NewSHA1(nodeNamespace, []byte(b.planName+"/webhook/"+t.Path)).String(),
	}
	return nil
}

func (b *triggerBuilder) VisitCron(t *plan.CronTrigger) error {
	var rule map[string]any
	switch {
	case t.CronExpression != "":
		rule = map[string]any{"field": "cronExpression", "expression": t.CronExpression}
	case t.Interval != nil:
		unit := string(t.Interval.Unit)
		rule = map[string]any{"field": unit, unit + "Interval": t.Interval.Amount}
	default:
		return fmt.Errorf("cron trigger has neither expression nor interval")
	}
	b.node = Node{
		Type:        scheduleNodeType,
		TypeVersion: 1.2,
		Parameters: map[string]any{
			"rule": map[string]any{"interval": []any{rule}},
		},
	}
	return nil
}

func (b *triggerBuilder) VisitManual(*plan.ManualTrigger) error {
	b.node = Node{Type: manualNodeType, TypeVersion: 1, Parameters: map[string]any{}}
	return nil
}

type actionBuilder struct {
	planName string
	node     Node
}

func (b *actionBuilder) VisitHTTPRequest(_ *plan.Action, p *plan.HTTPRequestParams) error {
	method := strings.ToUpper(p.Method)
	if method == "" {
		method = "GET"
	}
	params := map[string]any{"method": method}
	if p.URL != nil {
		params["url"] = resolveString(*p.URL)
	}
	if len(p.Headers) > 0 {
		params["sendHeaders"] = true
		params["headerParameters"] = map[string]any{"parameters": nameValues(p.Headers)}
	}
	if len(p.Query) > 0 {
		params["sendQuery"] = true
		params["queryParameters"] = map[string]any{"parameters": nameValues(p.Query)}
	}
	if p.Body != nil {
		params["sendBody"] = true
		params["specifyBody"] = "json"
		params["jsonBody"] = resolveValue(p.Body)
	}
	b.node = Node{Type: httpNodeType, TypeVersion: 4.2, Parameters: params}
	if p.Auth != nil {
		app := strings.ToLower(strings.TrimSpace(p.Auth.App))
		params["authentication"] = "predefinedCredentialType"
		params["nodeCredentialType"] = app
		name := p.Auth.Credential
		if name == "" {
			name = app
		}
		b.node.Credentials = map[string]Credential{app: {ID: p.Auth.Credential, Name: name}}
	}
	return nil
}

func (b *actionBuilder) VisitSetData(a *plan.Action, p *plan.SetDataParams) error {
	assignments := make([]any, 0, len(p.Values))
	for _, key := range sortedKeys(p.Values) {
		value := p.Values[key]
		assignments = append(assignments, map[string]any{
			"id":    uuid.NewSHA1(nodeNamespace, []byte(b.planName+"/"+a.ID+"/"+key)).String(),
			"name":  key,
			"value": resolveValue(value),
			"type":  assignmentType(value),
		})
	}
	b.node = Node{
		Type:        setNodeType,
		TypeVersion: 3.4,
		Parameters: map[string]any{
			"mode":               "manual",
			"includeOtherFields": !p.KeepOnlySet,
			"assignments":        map[string]any{"assignments": assignments},
		},
	}
	return nil
}

func (b *actionBuilder) VisitSendEmail(_ *plan.Action, p *plan.SendEmailParams) error {
	params := map[string]any{
		"toEmail": resolveString(p.To),
		"subject": resolveString(p.Subject),
	}
	if p.From != "" {
		params["fromEmail"] = resolveString(p.From)
	}
	switch {
	case p.HTML != "" && p.Text != "":
		params["emailFormat"] = "both"
		params["html"] = resolveString(p.HTML)
		params["text"] = resolveString(p.Text)
	case p.HTML != "":
		params["emailFormat"] = "html"
		params["html"] = resolveString(p.HTML)
	default:
		params["emailFormat"] = "text"
		params["text"] = resolveString(p.Text)
	}
	b.node = Node{Type: emailNodeType, TypeVersion: 2.1, Parameters: params}
	return nil
}

func (b *actionBuilder) VisitDelay(_ *plan.Action, p *plan.DelayParams) error {
	amount, unit, err := waitAmount(p)
	if err != nil {
		return err
	}
	b.node = Node{
		Type:        waitNodeType,
		TypeVersion: 1.1,
		Parameters: map[string]any{
			"resume": "timeInterval",
			"amount": amount,
			"unit":   unit,
		},
	}
	return nil
}

// waitAmount prefers durationMs; weeks are expressed in days since the wait node has no weeks unit.
func waitAmount(p *plan.DelayParams) (float64, string, error) {
	switch {
	case p.DurationMs != nil:
		return float64(*p.DurationMs) / 1000, "seconds", nil
	case p.Interval != nil:
		amount := float64(p.Interval.Amount)
		if p.Interval.Unit == plan.UnitWeeks {
			return amount * 7, string(plan.UnitDays), nil
		}
		return amount, string(p.Interval.Unit), nil
	default:
		return 0, "", fmt.Errorf("delay has neither durationMs nor interval")
	}
}

func nameValues(m map[string]any) []any {
	out := make([]any, 0, len(m))
	for _, key := range sortedKeys(m) {
		out = append(out, map[string]any{"name": key, "value": resolveValue(m[key])})
	}
	return out
}

func assignmentType(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return "string"
	}
}
