package compiler

import (
	"strconv"
	"strings"

	"github.com/compozy/autoflow/engine/plan"
)

// Expression renders ref as a runtime expression reading another node's output.
// The webhook alias points at the trigger node, whose JSON output already is the request body.
func Expression(ref plan.Ref) string {
	node := ref.Source
	path := ref.Path
	if ref.IsTrigger() {
		node = TriggerNodeName
		if len(path) > 0 && path[0] == "body" {
			path = path[1:]
		}
	}
	var b strings.Builder
	b.WriteString(`={{ $node[`)
	b.WriteString(strconv.Quote(node))
	b.WriteString(`].json`)
	for _, segment := range path {
		b.WriteString("[")
		b.WriteString(strconv.Quote(segment))
		b.WriteString("]")
	}
	b.WriteString(" }}")
	return b.String()
}

// resolveValue replaces whole-string references anywhere inside v with expressions.
// Inputs are never modified; maps and slices are rebuilt.
func resolveValue(v any) any {
	switch val := v.(type) {
	case string:
		if ref, ok := plan.ParseRef(val); ok {
			return Expression(ref)
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = resolveValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = resolveValue(item)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = resolveValue(item)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = resolveValue(item)
		}
		return out
	default:
		return v
	}
}

func resolveString(s string) string {
	if ref, ok := plan.ParseRef(s); ok {
		return Expression(ref)
	}
	return s
}
