package plan

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error checking via errors.Is().
var (
	// ErrParse indicates malformed JSON.
	ErrParse = errors.New("parse error")

	// ErrSchema indicates shape or per-field violations.
	ErrSchema = errors.New("schema error")

	// ErrStructural indicates action graph violations: duplicate ids, dangling references, no entry point.
	ErrStructural = errors.New("structural error")
)

// Kinds of StructuralError.
const (
	KindDuplicateID      = "duplicate_id"
	KindUnknownReference = "unknown_reference"
	KindNoStartAction    = "no_start_action"
)

// ParseError represents a failure to parse the plan JSON.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return ErrParse.Error()
	}
	return fmt.Sprintf("%s: %s", ErrParse.Error(), e.Msg)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

// SchemaError names the offending field with a JSON-style path such as actions[1].params.url.
type SchemaError struct {
	Path string
	Msg  string
}

func (e *SchemaError) Error() string {
	if e == nil {
		return ""
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", ErrSchema.Error(), e.Path, e.Msg)
	}
	if e.Msg == "" {
		return ErrSchema.Error()
	}
	return fmt.Sprintf("%s: %s", ErrSchema.Error(), e.Msg)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// StructuralError carries a single human-readable message about the action graph.
type StructuralError struct {
	Kind string
	Msg  string
}

func (e *StructuralError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return ErrStructural.Error()
	}
	return e.Msg
}

func (e *StructuralError) Unwrap() error { return ErrStructural }

func schemaErr(path, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Msg: fmt.Sprintf(format, args...)}
}
