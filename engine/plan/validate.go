package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

var (
	structValidator = newStructValidator()
	cronParser      = cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
	httpMethods = map[string]struct{}{
		"GET": {}, "POST": {}, "PUT": {}, "PATCH": {}, "DELETE": {}, "HEAD": {}, "OPTIONS": {},
	}
)

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "weburl", func(fl validator.FieldLevel) bool { return IsWebURL(fl.Field().String()) })
	mustRegister(v, "cronexpr", func(fl validator.FieldLevel) bool { return ValidCron(fl.Field().String()) })
	mustRegister(v, "httpmethod", func(fl validator.FieldLevel) bool {
		_, ok := httpMethods[strings.ToUpper(fl.Field().String())]
		return ok
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("plan: failed to register %s validation: %v", tag, err))
	}
}

// IsWebURL reports whether s is a non-empty http(s) URL without whitespace.
func IsWebURL(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n\f\v") {
		return false
	}
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ValidCron reports whether expr is a 5 or 6 field cron expression or a descriptor.
func ValidCron(expr string) bool {
	_, err := cronParser.Parse(expr)
	return err == nil
}

// Parse decodes raw plan JSON and validates it.
func Parse(data []byte) (*Plan, error) {
	p, err := decodePlan(data)
	if err != nil {
		return nil, err
	}
	return Validate(p)
}

// ParseValue validates an already-decoded value such as a map produced by an LLM client.
func ParseValue(raw any) (*Plan, error) {
	if p, ok := raw.(*Plan); ok {
		return Validate(p)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, &ParseError{Msg: "value is not JSON-encodable", Err: err}
	}
	return Parse(data)
}

// Validate checks p and returns the same pointer unchanged when it is valid.
func Validate(p *Plan) (*Plan, error) {
	if p == nil {
		return nil, schemaErr("", "plan is required")
	}
	if err := validateShape(p); err != nil {
		return nil, err
	}
	if err := validateStructure(p); err != nil {
		return nil, err
	}
	return p, nil
}

func validateShape(p *Plan) error {
	if err := checkStruct(p, ""); err != nil {
		return err
	}
	if err := validateTrigger(&p.Trigger); err != nil {
		return err
	}
	for i := range p.Actions {
		if err := validateAction(&p.Actions[i], fmt.Sprintf("actions[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

func validateTrigger(t *Trigger) error {
	if t.variants() > 1 {
		return schemaErr("trigger", "exactly one trigger variant must be set")
	}
	switch t.Type {
	case TriggerWebhook:
		if t.Webhook == nil {
			return schemaErr("trigger", "webhook trigger requires path")
		}
		return checkStruct(t.Webhook, "trigger")
	case TriggerCron:
		if t.Cron == nil || (t.Cron.CronExpression == "" && t.Cron.Interval == nil) {
			return schemaErr("trigger", "cron trigger requires cronExpression or interval")
		}
		return checkStruct(t.Cron, "trigger")
	case TriggerManual:
		if t.Webhook != nil || t.Cron != nil {
			return schemaErr("trigger", "manual trigger takes no parameters")
		}
		return nil
	case "":
		return schemaErr("trigger.type", "is required")
	default:
		return schemaErr("trigger.type", "must be one of: webhook, cron, manual (got %q)", t.Type)
	}
}

// TriggerNodeName names the node compiled from the trigger; no action may take it.
const TriggerNodeName = "Trigger"

func validateAction(a *Action, path string) error {
	if strings.TrimSpace(a.ID) == "" {
		return schemaErr(joinPath(path, "id"), "is required")
	}
	if a.ID == TriggerNodeName {
		return schemaErr(joinPath(path, "id"), "%q is reserved for the trigger node", a.ID)
	}
	if a.Params == nil {
		if _, err := newParams(a.Type, path); err != nil {
			return err
		}
		return schemaErr(joinPath(path, "params"), "is required")
	}
	if a.Type != a.Params.ActionType() {
		return schemaErr(joinPath(path, "type"), "%q does not match params of %q", a.Type, a.Params.ActionType())
	}
	paramsPath := joinPath(path, "params")
	if err := checkStruct(a.Params, paramsPath); err != nil {
		return err
	}
	if d, ok := a.Params.(*DelayParams); ok && d.DurationMs == nil && d.Interval == nil {
		return schemaErr(paramsPath, "delay requires durationMs or interval")
	}
	for i, id := range a.OnSuccessNext {
		if strings.TrimSpace(id) == "" {
			return schemaErr(fmt.Sprintf("%s.onSuccessNext[%d]", path, i), "must not be empty")
		}
	}
	for i, id := range a.OnFailureNext {
		if strings.TrimSpace(id) == "" {
			return schemaErr(fmt.Sprintf("%s.onFailureNext[%d]", path, i), "must not be empty")
		}
	}
	return nil
}

// checkStruct runs tag validation on v and converts the first failure into a SchemaError under prefix.
func checkStruct(v any, prefix string) error {
	err := structValidator.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return schemaErr(prefix, "%v", err)
	}
	fe := fieldErrs[0]
	return &SchemaError{Path: joinPath(prefix, fieldPath(fe.Namespace())), Msg: describeFieldError(fe)}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		switch fe.Kind() {
		case reflect.Slice, reflect.Map, reflect.Array:
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		default:
			return fmt.Sprintf("must be at least %s", fe.Param())
		}
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "weburl":
		return "must be a non-empty http:// or https:// URL without whitespace"
	case "cronexpr":
		return fmt.Sprintf("invalid cron expression %q", fe.Value())
	case "httpmethod":
		return fmt.Sprintf("unsupported HTTP method %q", fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func validateStructure(p *Plan) error {
	declared := make(map[string]struct{}, len(p.Actions))
	for i := range p.Actions {
		id := p.Actions[i].ID
		if _, dup := declared[id]; dup {
			return &StructuralError{Kind: KindDuplicateID, Msg: fmt.Sprintf("Duplicate action id: %s", id)}
		}
		declared[id] = struct{}{}
	}
	for i := range p.Actions {
		a := &p.Actions[i]
		if err := checkTargets(a, "onSuccessNext", a.OnSuccessNext, declared); err != nil {
			return err
		}
		if err := checkTargets(a, "onFailureNext", a.OnFailureNext, declared); err != nil {
			return err
		}
	}
	if len(Analyze(p).StartActions) == 0 {
		return &StructuralError{Kind: KindNoStartAction, Msg: "No valid starting action found"}
	}
	return nil
}

func checkTargets(a *Action, list string, targets []string, declared map[string]struct{}) error {
	for _, target := range targets {
		if _, ok := declared[target]; !ok {
			return &StructuralError{
				Kind: KindUnknownReference,
				Msg:  fmt.Sprintf("Action '%s' references unknown %s id '%s'", a.ID, list, target),
			}
		}
	}
	return nil
}
