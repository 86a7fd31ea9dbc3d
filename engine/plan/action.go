package plan

import (
	"encoding/json"
	"fmt"
)

// ActionType tags the variant of an Action.
type ActionType string

const (
	ActionHTTPRequest ActionType = "http_request"
	ActionSetData     ActionType = "set_data"
	ActionSendEmail   ActionType = "send_email"
	ActionDelay       ActionType = "delay"
)

// ActionParams is implemented only by the params structs of this package.
type ActionParams interface {
	ActionType() ActionType
	isActionParams()
}

// AuthRef points an http_request at the credentials of a connected app.
type AuthRef struct {
	App        string `json:"app"                  validate:"required"`
	Credential string `json:"credential,omitempty"`
}

type HTTPRequestParams struct {
	URL     *string        `json:"url,omitempty"     validate:"omitnil,weburl"`
	Method  string         `json:"method,omitempty"  validate:"omitempty,httpmethod"`
	Headers map[string]any `json:"headers,omitempty"`
	Query   map[string]any `json:"query,omitempty"`
	Body    any            `json:"body,omitempty"`
	Auth    *AuthRef       `json:"auth,omitempty"`
}

type SetDataParams struct {
	Values      map[string]any `json:"values"                validate:"min=1"`
	KeepOnlySet bool           `json:"keepOnlySet,omitempty"`
}

type SendEmailParams struct {
	To      string `json:"to"                validate:"required"`
	From    string `json:"from,omitempty"`
	Subject string `json:"subject,omitempty"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// DelayParams needs DurationMs or Interval; DurationMs wins when both are set.
type DelayParams struct {
	DurationMs *int64    `json:"durationMs,omitempty" validate:"omitnil,gt=0"`
	Interval   *Interval `json:"interval,omitempty"`
}

func (*HTTPRequestParams) ActionType() ActionType { return ActionHTTPRequest }
func (*SetDataParams) ActionType() ActionType     { return ActionSetData }
func (*SendEmailParams) ActionType() ActionType   { return ActionSendEmail }
func (*DelayParams) ActionType() ActionType       { return ActionDelay }

func (*HTTPRequestParams) isActionParams() {}
func (*SetDataParams) isActionParams()     {}
func (*SendEmailParams) isActionParams()   {}
func (*DelayParams) isActionParams()       {}

// Action is one node of the plan graph.
type Action struct {
	ID            string
	Type          ActionType
	Params        ActionParams
	OnSuccessNext []string
	OnFailureNext []string
}

// NewAction builds an action whose Type matches params.
func NewAction(id string, params ActionParams, onSuccessNext ...string) Action {
	if onSuccessNext == nil {
		onSuccessNext = []string{}
	}
	return Action{ID: id, Type: params.ActionType(), Params: params, OnSuccessNext: onSuccessNext}
}

// ActionVisitor receives the params of the active Action variant.
type ActionVisitor interface {
	VisitHTTPRequest(a *Action, p *HTTPRequestParams) error
	VisitSetData(a *Action, p *SetDataParams) error
	VisitSendEmail(a *Action, p *SendEmailParams) error
	VisitDelay(a *Action, p *DelayParams) error
}

// Visit dispatches to the visitor method matching the params variant.
func (a *Action) Visit(v ActionVisitor) error {
	switch p := a.Params.(type) {
	case *HTTPRequestParams:
		return v.VisitHTTPRequest(a, p)
	case *SetDataParams:
		return v.VisitSetData(a, p)
	case *SendEmailParams:
		return v.VisitSendEmail(a, p)
	case *DelayParams:
		return v.VisitDelay(a, p)
	default:
		return fmt.Errorf("action %q has no params", a.ID)
	}
}

// Targets returns success targets followed by failure targets.
func (a *Action) Targets() []string {
	out := make([]string, 0, len(a.OnSuccessNext)+len(a.OnFailureNext))
	out = append(out, a.OnSuccessNext...)
	return append(out, a.OnFailureNext...)
}

type actionWire struct {
	ID            string          `json:"id"`
	Type          ActionType      `json:"type"`
	Params        json.RawMessage `json:"params"`
	OnSuccessNext []string        `json:"onSuccessNext"`
	OnFailureNext []string        `json:"onFailureNext,omitempty"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	params, err := json.Marshal(a.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params of action %q: %w", a.ID, err)
	}
	next := a.OnSuccessNext
	if next == nil {
		next = []string{}
	}
	return json.Marshal(actionWire{
		ID:            a.ID,
		Type:          a.Type,
		Params:        params,
		OnSuccessNext: next,
		OnFailureNext: a.OnFailureNext,
	})
}

func (a *Action) UnmarshalJSON(data []byte) error {
	decoded, err := decodeAction(data, "")
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}
