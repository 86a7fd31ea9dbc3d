package template

import (
	"context"
	"errors"
	"fmt"

	"github.com/compozy/autoflow/engine/plan"
	"github.com/compozy/autoflow/pkg/logger"
)

type Service struct {
	registry *Registry
}

func NewService(registry *Registry) *Service {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Service{registry: registry}
}

func (s *Service) Registry() *Registry { return s.registry }

// Build resolves inputs, expands the named template and validates the result.
func (s *Service) Build(ctx context.Context, name string, inputs map[string]any) (*plan.Plan, error) {
	log := logger.FromContext(ctx)
	tpl, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	resolved, err := ResolveInputs(tpl.RequiredInputs(), inputs)
	if err != nil {
		log.Debug("Rejected template inputs", "template", name, "error", err)
		return nil, err
	}
	p, err := tpl.BuildPlan(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to build plan from template %s: %w", name, err)
	}
	validated, err := plan.Validate(p)
	if err != nil {
		log.Error("Template produced an invalid plan", "template", name, "error", err)
		return nil, errors.Join(fmt.Errorf("%w: %s", ErrInvalidPlan, name), err)
	}
	log.Debug("Built plan from template", "template", name, "plan", validated.Name)
	return validated, nil
}
