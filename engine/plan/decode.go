package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type planWire struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Intent      string            `json:"intent"`
	Trigger     json.RawMessage   `json:"trigger"`
	Actions     []json.RawMessage `json:"actions"`
	Metadata    map[string]any    `json:"metadata"`
}

type triggerTag struct {
	Type TriggerType `json:"type"`
}

func decodePlan(data []byte) (*Plan, error) {
	var wire planWire
	if err := unmarshalAt(data, &wire, ""); err != nil {
		return nil, err
	}
	if isNull(wire.Trigger) {
		return nil, schemaErr("trigger", "is required")
	}
	trigger, err := decodeTrigger(wire.Trigger, "trigger")
	if err != nil {
		return nil, err
	}
	p := &Plan{
		Name:        wire.Name,
		Description: wire.Description,
		Intent:      wire.Intent,
		Trigger:     trigger,
		Metadata:    wire.Metadata,
	}
	if wire.Actions != nil {
		p.Actions = make([]Action, 0, len(wire.Actions))
	}
	for i, raw := range wire.Actions {
		action, err := decodeAction(raw, fmt.Sprintf("actions[%d]", i))
		if err != nil {
			return nil, err
		}
		p.Actions = append(p.Actions, action)
	}
	return p, nil
}

func decodeTrigger(data []byte, path string) (Trigger, error) {
	var tag triggerTag
	if err := unmarshalAt(data, &tag, path); err != nil {
		return Trigger{}, err
	}
	switch tag.Type {
	case TriggerWebhook:
		var w WebhookTrigger
		if err := unmarshalAt(data, &w, path); err != nil {
			return Trigger{}, err
		}
		return Trigger{Type: tag.Type, Webhook: &w}, nil
	case TriggerCron:
		var c CronTrigger
		if err := unmarshalAt(data, &c, path); err != nil {
			return Trigger{}, err
		}
		return Trigger{Type: tag.Type, Cron: &c}, nil
	case TriggerManual:
		return Trigger{Type: tag.Type, Manual: &ManualTrigger{}}, nil
	case "":
		return Trigger{}, schemaErr(joinPath(path, "type"), "is required")
	default:
		return Trigger{}, schemaErr(joinPath(path, "type"), "must be one of: webhook, cron, manual (got %q)", tag.Type)
	}
}

func decodeAction(data []byte, path string) (Action, error) {
	var wire actionWire
	if err := unmarshalAt(data, &wire, path); err != nil {
		return Action{}, err
	}
	params, err := newParams(wire.Type, path)
	if err != nil {
		return Action{}, err
	}
	paramsPath := joinPath(path, "params")
	if isNull(wire.Params) {
		return Action{}, schemaErr(paramsPath, "is required")
	}
	if err := unmarshalAt(wire.Params, params, paramsPath); err != nil {
		return Action{}, err
	}
	next := wire.OnSuccessNext
	if next == nil {
		next = []string{}
	}
	return Action{
		ID:            wire.ID,
		Type:          wire.Type,
		Params:        params,
		OnSuccessNext: next,
		OnFailureNext: wire.OnFailureNext,
	}, nil
}

func newParams(t ActionType, path string) (ActionParams, error) {
	switch t {
	case ActionHTTPRequest:
		return &HTTPRequestParams{}, nil
	case ActionSetData:
		return &SetDataParams{}, nil
	case ActionSendEmail:
		return &SendEmailParams{}, nil
	case ActionDelay:
		return &DelayParams{}, nil
	case "":
		return nil, schemaErr(joinPath(path, "type"), "is required")
	default:
		return nil, schemaErr(
			joinPath(path, "type"),
			"must be one of: http_request, set_data, send_email, delay (got %q)",
			t,
		)
	}
}

// unmarshalAt decodes data into dst and reports type mismatches as schema errors rooted at path.
func unmarshalAt(data []byte, dst any, path string) error {
	err := json.Unmarshal(data, dst)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return schemaErr(joinPath(path, typeErr.Field), "expected %s, got %s", describeKind(typeErr.Type.Kind().String()), typeErr.Value)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ParseError{Msg: fmt.Sprintf("invalid JSON at offset %d", syntaxErr.Offset), Err: err}
	}
	var schema *SchemaError
	if errors.As(err, &schema) {
		return schema
	}
	return &ParseError{Msg: err.Error(), Err: err}
}

func describeKind(kind string) string {
	switch kind {
	case "struct", "map":
		return "object"
	case "slice", "array":
		return "array"
	case "int", "int64", "int32", "float64":
		return "number"
	case "bool":
		return "boolean"
	case "ptr":
		return "value"
	default:
		return kind
	}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func joinPath(base, field string) string {
	switch {
	case field == "":
		return base
	case base == "":
		return field
	case strings.HasPrefix(field, "["):
		return base + field
	default:
		return base + "." + field
	}
}
