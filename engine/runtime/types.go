// Package runtime dispatches executions to the automation runtime and normalizes what comes back.
package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/compozy/autoflow/engine/compiler"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusRunning Status = "running"
)

// IsTerminal reports whether the execution has ended.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusError
}

type ExecutionError struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
	Cause   any    `json:"cause,omitempty"`
}

// StepResult is the per-node view of an execution.
type StepResult struct {
	Name       string          `json:"name"`
	Status     Status          `json:"status"`
	Output     map[string]any  `json:"output"`
	Error      *ExecutionError `json:"error"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt *time.Time      `json:"finishedAt"`
	DurationMs *int64          `json:"durationMs"`
}

// Result is the provider-neutral outcome of one execution. It is built once and never updated.
type Result struct {
	Status              Status          `json:"status"`
	ProviderExecutionID *string         `json:"providerExecutionId"`
	Output              map[string]any  `json:"output"`
	Error               *ExecutionError `json:"error"`
	StartedAt           time.Time       `json:"startedAt"`
	FinishedAt          *time.Time      `json:"finishedAt"`
	DurationMs          *int64          `json:"durationMs"`
	Steps               []StepResult    `json:"steps"`
}

type WorkflowRef struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

// Client is the boundary to an automation runtime. Execute returns the raw response body so
// that Normalize owns every provider shape.
type Client interface {
	CreateWorkflow(ctx context.Context, graph *compiler.Graph) (*WorkflowRef, error)
	SetActive(ctx context.Context, workflowID string, active bool) error
	Execute(ctx context.Context, workflowID string, input map[string]any) ([]byte, error)
}

// ProviderError is a non-2xx runtime response.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("runtime responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("runtime responded with status %d: %s", e.StatusCode, e.Body)
}

func durationBetween(start time.Time, end *time.Time) *int64 {
	if start.IsZero() || end == nil {
		return nil
	}
	ms := end.Sub(start).Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return &ms
}
