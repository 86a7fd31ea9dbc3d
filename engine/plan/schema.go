package plan

import (
	"github.com/invopop/jsonschema"
)

const schemaVersion = "http://json-schema.org/draft-07/schema#"

var inlineReflector = &jsonschema.Reflector{
	DoNotReference:            true,
	ExpandedStruct:            true,
	AllowAdditionalProperties: true,
}

// JSONSchema reflects the Plan wire format for producers such as LLM prompt builders.
func JSONSchema() *jsonschema.Schema {
	s := inlineReflector.Reflect(&Plan{})
	s.Version = schemaVersion
	s.ID = "https://autoflow.dev/schemas/plan.json"
	s.Title = "WorkflowPlan"
	return s
}

// JSONSchema describes the flat tagged trigger object.
func (Trigger) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			taggedVariant(string(TriggerWebhook), &WebhookTrigger{}),
			taggedVariant(string(TriggerCron), &CronTrigger{}),
			taggedVariant(string(TriggerManual), nil),
		},
	}
}

// JSONSchema describes an action as one branch per action type.
func (Action) JSONSchema() *jsonschema.Schema {
	branches := []struct {
		t      ActionType
		params ActionParams
	}{
		{ActionHTTPRequest, &HTTPRequestParams{}},
		{ActionSetData, &SetDataParams{}},
		{ActionSendEmail, &SendEmailParams{}},
		{ActionDelay, &DelayParams{}},
	}
	oneOf := make([]*jsonschema.Schema, 0, len(branches))
	for _, b := range branches {
		s := objectSchema()
		s.Properties.Set("id", &jsonschema.Schema{Type: "string", MinLength: uint64Ptr(1)})
		s.Properties.Set("type", &jsonschema.Schema{Type: "string", Const: string(b.t)})
		s.Properties.Set("params", reflectInline(b.params))
		s.Properties.Set("onSuccessNext", idList())
		s.Properties.Set("onFailureNext", idList())
		s.Required = []string{"id", "type", "params"}
		oneOf = append(oneOf, s)
	}
	return &jsonschema.Schema{OneOf: oneOf}
}

func taggedVariant(tag string, payload any) *jsonschema.Schema {
	s := objectSchema()
	if payload != nil {
		s = reflectInline(payload)
	}
	s.Properties.Set("type", &jsonschema.Schema{Type: "string", Const: tag})
	s.Required = append([]string{"type"}, s.Required...)
	return s
}

func reflectInline(v any) *jsonschema.Schema {
	s := inlineReflector.Reflect(v)
	s.Version = ""
	s.ID = ""
	if s.Properties == nil {
		s.Properties = jsonschema.NewProperties()
	}
	return s
}

func objectSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
}

func idList() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string", MinLength: uint64Ptr(1)}}
}

func uint64Ptr(v uint64) *uint64 { return &v }
