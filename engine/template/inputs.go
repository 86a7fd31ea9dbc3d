package template

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/compozy/autoflow/engine/plan"
	"github.com/kaptinlin/jsonschema"
	"github.com/mohae/deepcopy"
)

type inputSchema map[string]any

var inputSchemas = map[InputType]inputSchema{
	InputString:  {"type": "string", "minLength": 1},
	InputURL:     {"type": "string", "pattern": `^https?://[^\s]+$`},
	InputEmail:   {"type": "string", "pattern": `^[^@\s]+@[^@\s]+\.[^@\s]+$`},
	InputCron:    {"type": "string", "minLength": 1},
	InputInteger: {"type": "integer", "minimum": 1},
}

var inputProblems = map[InputType]string{
	InputString:  "must be a non-empty string",
	InputURL:     "must be an http:// or https:// URL",
	InputEmail:   "must be an email address",
	InputCron:    "must be a valid cron expression",
	InputInteger: "must be a positive integer",
}

var (
	compileOnce sync.Once
	compiled    map[InputType]*jsonschema.Schema
	compileErr  error
)

func (s inputSchema) compile() (*jsonschema.Schema, error) {
	bytes, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	schema, err := jsonschema.NewCompiler().Compile(bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return schema, nil
}

func compiledSchemas() (map[InputType]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[InputType]*jsonschema.Schema, len(inputSchemas))
		for t, s := range inputSchemas {
			schema, err := s.compile()
			if err != nil {
				compileErr = fmt.Errorf("input type %s: %w", t, err)
				return
			}
			compiled[t] = schema
		}
	})
	return compiled, compileErr
}

// ResolveInputs applies defaults, coerces scalar strings and validates provided against defs.
// The returned map is a fresh copy; provided is not modified.
func ResolveInputs(defs []Input, provided map[string]any) (map[string]any, error) {
	schemas, err := compiledSchemas()
	if err != nil {
		return nil, err
	}
	resolved := make(map[string]any, len(defs))
	for k, v := range provided {
		resolved[k] = deepcopy.Copy(v)
	}
	inputErr := &InputError{}
	for _, def := range defs {
		value, ok := resolved[def.Name]
		if !ok || isBlank(value) {
			if def.Default != nil {
				resolved[def.Name] = deepcopy.Copy(def.Default)
				continue
			}
			delete(resolved, def.Name)
			if def.Required {
				inputErr.Missing = append(inputErr.Missing, def.Name)
			}
			continue
		}
		value = coerce(def.Type, value)
		resolved[def.Name] = value
		if problem := checkInput(schemas, def, value); problem != "" {
			if inputErr.Invalid == nil {
				inputErr.Invalid = map[string]string{}
			}
			inputErr.Invalid[def.Name] = problem
		}
	}
	if !inputErr.empty() {
		return nil, inputErr
	}
	return resolved, nil
}

func checkInput(schemas map[InputType]*jsonschema.Schema, def Input, value any) string {
	schema, ok := schemas[def.Type]
	if !ok {
		return fmt.Sprintf("unsupported input type %q", def.Type)
	}
	if result := schema.Validate(value); !result.Valid {
		return inputProblems[def.Type]
	}
	if def.Type == InputCron && !plan.ValidCron(value.(string)) {
		return inputProblems[def.Type]
	}
	return ""
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// coerce turns CLI strings and JSON floats into the Go types templates consume.
func coerce(t InputType, v any) any {
	switch t {
	case InputInteger:
		switch n := v.(type) {
		case string:
			if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
				return i
			}
		case float64:
			if n == math.Trunc(n) {
				return int64(n)
			}
		case int:
			return int64(n)
		}
	default:
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return v
}

// InputSchema renders a JSON Schema object describing defs, for API and CLI listings.
func InputSchema(defs []Input) map[string]any {
	props := make(map[string]any, len(defs))
	required := make([]string, 0)
	for _, def := range defs {
		prop := map[string]any{}
		for k, v := range inputSchemas[def.Type] {
			prop[k] = v
		}
		if def.Description != "" {
			prop["description"] = def.Description
		}
		if def.Default != nil {
			prop["default"] = def.Default
		}
		props[def.Name] = prop
		if def.Required && def.Default == nil {
			required = append(required, def.Name)
		}
	}
	return map[string]any{"type": "object", "properties": props, "required": required}
}
