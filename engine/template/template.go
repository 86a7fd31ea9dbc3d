// Package template turns small parameter records into complete, valid workflow plans.
package template

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/compozy/autoflow/engine/plan"
)

type InputType string

const (
	InputString  InputType = "string"
	InputURL     InputType = "url"
	InputEmail   InputType = "email"
	InputCron    InputType = "cron"
	InputInteger InputType = "integer"
)

// Input declares one parameter a template consumes.
type Input struct {
	Name        string    `json:"name"`
	Type        InputType `json:"type"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required"`
	Default     any       `json:"default,omitempty"`
}

type Metadata struct {
	Name        string           `json:"name"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Trigger     plan.TriggerType `json:"trigger"`
	Tags        []string         `json:"tags,omitempty"`
}

// Template builds plans from already resolved inputs. BuildPlan does not check inputs;
// callers go through Service.Build, which resolves and validates them first.
type Template interface {
	Metadata() Metadata
	RequiredInputs() []Input
	BuildPlan(inputs map[string]any) (*plan.Plan, error)
}

var (
	ErrUnknownTemplate   = errors.New("unknown template")
	ErrDuplicateTemplate = errors.New("duplicate template")
	ErrInvalidInputs     = errors.New("invalid template inputs")
	ErrInvalidPlan       = errors.New("template produced an invalid plan")
)

// InputError lists every missing or malformed input of a build request.
type InputError struct {
	Missing []string          `json:"missing,omitempty"`
	Invalid map[string]string `json:"invalid,omitempty"`
}

func (e *InputError) Error() string {
	parts := make([]string, 0, len(e.Missing)+len(e.Invalid))
	for _, name := range e.Missing {
		parts = append(parts, "missing input: "+name)
	}
	names := make([]string, 0, len(e.Invalid))
	for name := range e.Invalid {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("invalid input %s: %s", name, e.Invalid[name]))
	}
	return strings.Join(parts, "; ")
}

func (e *InputError) Unwrap() error { return ErrInvalidInputs }

func (e *InputError) empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}
