// Package plan defines the workflow Plan vocabulary and its validator.
//
// A Plan is a trigger plus a directed graph of actions wired through onSuccessNext and
// onFailureNext. Plans arrive as JSON from templates or upstream generators; Parse
// decodes and validates them, after which they are treated as immutable values.
package plan

import "encoding/json"

// Plan is the engine-agnostic description of an automation.
type Plan struct {
	Name        string         `json:"name"                  validate:"required"`
	Description string         `json:"description,omitempty"`
	Intent      string         `json:"intent,omitempty"`
	Trigger     Trigger        `json:"trigger"               validate:"-"`
	Actions     []Action       `json:"actions"               validate:"min=1"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func (p *Plan) UnmarshalJSON(data []byte) error {
	decoded, err := decodePlan(data)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}

// JSON renders the plan in its wire format.
func (p *Plan) JSON() ([]byte, error) {
	return json.Marshal(p)
}
