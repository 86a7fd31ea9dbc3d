package runtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var statusAliases = map[string]Status{
	"success":   StatusSuccess,
	"succeeded": StatusSuccess,
	"completed": StatusSuccess,
	"finished":  StatusSuccess,
	"error":     StatusError,
	"failed":    StatusError,
	"failure":   StatusError,
	"crashed":   StatusError,
}

// NormalizeStatus maps a provider status word onto success, error or running.
func NormalizeStatus(raw string) Status {
	if s, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusRunning
}

// first returns the first existing, non-null value among paths.
func first(doc gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := doc.Get(p); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// Normalize turns a runtime response body into a Result. startedAt is the local dispatch
// time and receivedAt the time the body arrived; they fill in timestamps the body lacks.
func Normalize(body []byte, startedAt, receivedAt time.Time) *Result {
	if !gjson.ValidBytes(body) {
		return failureResult("invalid response from runtime", nil, startedAt, receivedAt)
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return failureResult("unexpected response shape from runtime", nil, startedAt, receivedAt)
	}
	res := &Result{
		Status:    readStatus(doc),
		Error:     readError(doc),
		Output:    readOutput(doc),
		StartedAt: readTime(first(doc, "startedAt", "started_at", "data.startedAt", "data.started_at"), startedAt),
	}
	if res.Status != StatusError && res.Error != nil && !first(doc, "status", "data.status").Exists() {
		res.Status = StatusError
	}
	if id := first(doc, "id", "executionId", "data.id", "data.executionId"); id.Exists() {
		s := id.String()
		res.ProviderExecutionID = &s
	}
	if fin := first(doc, "stoppedAt", "finishedAt", "finished_at", "data.stoppedAt", "data.finishedAt", "data.finished_at"); fin.Exists() {
		t := readTime(fin, receivedAt)
		res.FinishedAt = &t
	} else if res.Status.IsTerminal() {
		t := receivedAt
		res.FinishedAt = &t
	}
	res.DurationMs = durationBetween(res.StartedAt, res.FinishedAt)
	res.Steps = readSteps(doc)
	if len(res.Steps) == 0 {
		res.Steps = []StepResult{{
			Name:       "execution",
			Status:     res.Status,
			Output:     res.Output,
			Error:      res.Error,
			StartedAt:  res.StartedAt,
			FinishedAt: res.FinishedAt,
			DurationMs: res.DurationMs,
		}}
	}
	return res
}

func readStatus(doc gjson.Result) Status {
	if s := first(doc, "status", "data.status"); s.Exists() {
		return NormalizeStatus(s.String())
	}
	if f := first(doc, "finished", "data.finished"); f.Exists() && f.Type == gjson.True {
		return StatusSuccess
	}
	return StatusRunning
}

func readError(doc gjson.Result) *ExecutionError {
	v := first(doc, "error", "data.error", "data.resultData.error")
	if !v.Exists() {
		return nil
	}
	return toExecutionError(v)
}

func toExecutionError(v gjson.Result) *ExecutionError {
	if !v.IsObject() {
		if v.String() == "" {
			return nil
		}
		return &ExecutionError{Message: v.String()}
	}
	e := &ExecutionError{Message: v.Get("message").String(), Stack: v.Get("stack").String()}
	if e.Message == "" {
		e.Message = v.Get("description").String()
	}
	if e.Message == "" {
		e.Message = "runtime reported an error"
	}
	if cause := v.Get("cause"); cause.Exists() && cause.Type != gjson.Null {
		e.Cause = cause.Value()
	}
	return e
}

func readOutput(doc gjson.Result) map[string]any {
	if v := first(doc, "output", "data.output"); v.Exists() {
		return asRecord(v)
	}
	data := doc.Get("data")
	if data.IsObject() && !data.Get("id").Exists() && !data.Get("status").Exists() && !data.Get("resultData").Exists() {
		return asRecord(data)
	}
	return nil
}

func asRecord(v gjson.Result) map[string]any {
	if m, ok := v.Value().(map[string]any); ok {
		return m
	}
	return map[string]any{"value": v.Value()}
}

// readTime accepts RFC 3339 strings and epoch milliseconds.
func readTime(v gjson.Result, fallback time.Time) time.Time {
	switch v.Type {
	case gjson.String:
		if t, err := time.Parse(time.RFC3339Nano, v.String()); err == nil {
			return t
		}
	case gjson.Number:
		return time.UnixMilli(v.Int()).UTC()
	}
	return fallback
}

func readSteps(doc gjson.Result) []StepResult {
	if steps := doc.Get("steps"); steps.IsArray() {
		out := make([]StepResult, 0, len(steps.Array()))
		for i, s := range steps.Array() {
			out = append(out, readStep(s, i))
		}
		return out
	}
	runData := first(doc, "data.resultData.runData", "resultData.runData")
	if !runData.IsObject() {
		return nil
	}
	var out []StepResult
	runData.ForEach(func(node, runs gjson.Result) bool {
		list := runs.Array()
		if len(list) == 0 {
			return true
		}
		out = append(out, readRun(node.String(), list[len(list)-1]))
		return true
	})
	return out
}

func readStep(s gjson.Result, index int) StepResult {
	name := first(s, "name", "node", "id").String()
	if name == "" {
		name = fmt.Sprintf("step-%d", index+1)
	}
	step := StepResult{
		Name:      name,
		Status:    NormalizeStatus(s.Get("status").String()),
		Error:     toExecutionErrorIfAny(s.Get("error")),
		StartedAt: readTime(first(s, "startedAt", "started_at"), time.Time{}),
	}
	if out := s.Get("output"); out.Exists() && out.Type != gjson.Null {
		step.Output = asRecord(out)
	}
	if fin := first(s, "finishedAt", "finished_at", "stoppedAt"); fin.Exists() {
		t := readTime(fin, time.Time{})
		if !t.IsZero() {
			step.FinishedAt = &t
		}
	}
	step.DurationMs = durationBetween(step.StartedAt, step.FinishedAt)
	return step
}

// readRun converts an n8n runData entry: startTime is epoch ms and executionTime a duration in ms.
func readRun(node string, run gjson.Result) StepResult {
	step := StepResult{
		Name:   node,
		Status: StatusSuccess,
		Error:  toExecutionErrorIfAny(run.Get("error")),
	}
	if s := run.Get("executionStatus"); s.Exists() {
		step.Status = NormalizeStatus(s.String())
	} else if step.Error != nil {
		step.Status = StatusError
	}
	if start := run.Get("startTime"); start.Exists() {
		step.StartedAt = time.UnixMilli(start.Int()).UTC()
		if took := run.Get("executionTime"); took.Exists() {
			fin := step.StartedAt.Add(time.Duration(took.Int()) * time.Millisecond)
			step.FinishedAt = &fin
		}
	}
	if out := run.Get("data.main.0.0.json"); out.Exists() {
		step.Output = asRecord(out)
	}
	step.DurationMs = durationBetween(step.StartedAt, step.FinishedAt)
	return step
}

func toExecutionErrorIfAny(v gjson.Result) *ExecutionError {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	return toExecutionError(v)
}

func failureResult(message string, cause any, startedAt, finishedAt time.Time) *Result {
	fin := finishedAt
	duration := durationBetween(startedAt, &fin)
	execErr := &ExecutionError{Message: message, Cause: cause}
	return &Result{
		Status:     StatusError,
		Error:      execErr,
		StartedAt:  startedAt,
		FinishedAt: &fin,
		DurationMs: duration,
		Steps: []StepResult{{
			Name:       "dispatch",
			Status:     StatusError,
			Error:      execErr,
			StartedAt:  startedAt,
			FinishedAt: &fin,
			DurationMs: duration,
		}},
	}
}
