package template

import (
	"context"
	"fmt"
	"testing"

	"github.com/compozy/autoflow/engine/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTemplate struct {
	name   string
	build  func(map[string]any) (*plan.Plan, error)
	inputs []Input
	calls  int
}

func (s *stubTemplate) Metadata() Metadata      { return Metadata{Name: s.name} }
func (s *stubTemplate) RequiredInputs() []Input { return s.inputs }
func (s *stubTemplate) BuildPlan(in map[string]any) (*plan.Plan, error) {
	s.calls++
	return s.build(in)
}

func manualPlan(url string) *plan.Plan {
	return &plan.Plan{
		Name:    "stub",
		Trigger: plan.NewManualTrigger(),
		Actions: []plan.Action{plan.NewAction("call", &plan.HTTPRequestParams{URL: &url})},
	}
}

func TestService_Build(t *testing.T) {
	t.Run("Should build and validate a plan", func(t *testing.T) {
		stub := &stubTemplate{
			name:   "stub",
			inputs: []Input{{Name: "url", Type: InputURL, Required: true}},
			build: func(in map[string]any) (*plan.Plan, error) {
				return manualPlan(in["url"].(string)), nil
			},
		}
		reg := NewRegistry()
		require.NoError(t, reg.Register(stub))
		p, err := NewService(reg).Build(context.Background(), "STUB", map[string]any{"url": "https://example.com"})
		require.NoError(t, err)
		assert.Equal(t, "stub", p.Name)
	})

	t.Run("Should not call the template when inputs are missing", func(t *testing.T) {
		stub := &stubTemplate{
			name:   "stub",
			inputs: []Input{{Name: "url", Type: InputURL, Required: true}},
			build:  func(map[string]any) (*plan.Plan, error) { return nil, fmt.Errorf("unreachable") },
		}
		reg := NewRegistry()
		require.NoError(t, reg.Register(stub))
		_, err := NewService(reg).Build(context.Background(), "stub", nil)
		assert.ErrorIs(t, err, ErrInvalidInputs)
		assert.Equal(t, 0, stub.calls)
	})

	t.Run("Should validate template output like any other plan", func(t *testing.T) {
		stub := &stubTemplate{
			name: "broken",
			build: func(map[string]any) (*plan.Plan, error) {
				p := manualPlan("https://example.com")
				p.Actions[0].OnSuccessNext = []string{"ghost"}
				return p, nil
			},
		}
		reg := NewRegistry()
		require.NoError(t, reg.Register(stub))
		_, err := NewService(reg).Build(context.Background(), "broken", nil)
		assert.ErrorIs(t, err, ErrInvalidPlan)
		assert.ErrorIs(t, err, plan.ErrStructural)
	})

	t.Run("Should fail for unknown templates", func(t *testing.T) {
		_, err := NewService(nil).Build(context.Background(), "nope", nil)
		assert.ErrorIs(t, err, ErrUnknownTemplate)
	})
}

func TestRegistry(t *testing.T) {
	t.Run("Should reject duplicates and list sorted metadata", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Register(&stubTemplate{name: "zeta"}))
		require.NoError(t, reg.Register(&stubTemplate{name: "alpha"}))
		err := reg.Register(&stubTemplate{name: " Alpha "})
		assert.ErrorIs(t, err, ErrDuplicateTemplate)
		list := reg.List()
		require.Len(t, list, 2)
		assert.Equal(t, "alpha", list[0].Name)
		assert.Equal(t, "zeta", list[1].Name)
	})
}
