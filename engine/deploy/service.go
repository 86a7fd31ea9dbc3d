// Package deploy turns plan JSON into an active workflow on the automation runtime.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/compozy/autoflow/engine/apps"
	"github.com/compozy/autoflow/engine/compiler"
	"github.com/compozy/autoflow/engine/plan"
	"github.com/compozy/autoflow/engine/runtime"
	"github.com/compozy/autoflow/pkg/logger"
	"github.com/sethvargo/go-retry"
)

const (
	activationRetries = 3
	activationBackoff = 200 * time.Millisecond
)

type Request struct {
	UserID string
	Plan   []byte
}

type Deployment struct {
	WorkflowID string          `json:"workflowId"`
	Active     bool            `json:"active"`
	Apps       []string        `json:"apps"`
	Plan       *plan.Plan      `json:"plan"`
	Graph      *compiler.Graph `json:"graph"`
}

// ErrActivationFailed marks a workflow that exists on the runtime but could not be activated.
var ErrActivationFailed = errors.New("workflow activation failed")

// ActivationError carries the id of the created, still inactive workflow. The deployment is
// recorded with Active=false so it can be found and retried.
type ActivationError struct {
	WorkflowID string
	Err        error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("failed to activate workflow %s: %v", e.WorkflowID, e.Err)
}

func (e *ActivationError) Is(target error) bool { return target == ErrActivationFailed }

func (e *ActivationError) Unwrap() error { return e.Err }

type Option func(*Service)

// WithStore records successful deployments in store instead of the in-memory default.
func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

// WithClock overrides the time source stamped on records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBackoff overrides the activation backoff base, mainly for tests.
func WithBackoff(base time.Duration) Option {
	return func(s *Service) { s.backoff = base }
}

type Service struct {
	checker *apps.Checker
	client  runtime.Client
	store   Store
	now     func() time.Time
	backoff time.Duration
}

func NewService(checker *apps.Checker, client runtime.Client, opts ...Option) (*Service, error) {
	if checker == nil {
		return nil, fmt.Errorf("app checker is required")
	}
	if client == nil {
		return nil, fmt.Errorf("runtime client is required")
	}
	s := &Service{
		checker: checker,
		client:  client,
		store:   NewMemoryStore(),
		now:     time.Now,
		backoff: activationBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Deploy validates, gates on apps, compiles and uploads the plan, then activates webhook and
// cron workflows. Errors keep their category so callers can tell plan, app and runtime
// problems apart. On *ActivationError the inactive deployment is returned alongside the error.
func (s *Service) Deploy(ctx context.Context, req Request) (*Deployment, error) {
	log := logger.FromContext(ctx).With("user_id", req.UserID)
	p, err := plan.Parse(req.Plan)
	if err != nil {
		return nil, err
	}
	required, err := s.checker.Check(ctx, req.UserID, p)
	if err != nil {
		return nil, err
	}
	graph, err := compiler.Compile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to compile plan %s: %w", p.Name, err)
	}
	ref, err := s.client.CreateWorkflow(ctx, graph)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}
	log = log.With("workflow_id", ref.ID)
	out := &Deployment{WorkflowID: ref.ID, Active: ref.Active, Apps: required, Plan: p, Graph: graph}
	if p.Trigger.Type != plan.TriggerManual {
		if err := s.activate(ctx, ref.ID); err != nil {
			log.Error("Failed to activate workflow", "error", err)
			s.record(ctx, req.UserID, out)
			return out, &ActivationError{WorkflowID: ref.ID, Err: err}
		}
		out.Active = true
	}
	s.record(ctx, req.UserID, out)
	log.Info("Deployed workflow", "trigger", p.Trigger.Type, "active", out.Active)
	return out, nil
}

// record is best effort: the workflow already exists on the runtime.
func (s *Service) record(ctx context.Context, userID string, d *Deployment) {
	rec := &Record{
		WorkflowID: d.WorkflowID,
		UserID:     userID,
		Name:       d.Plan.Name,
		Trigger:    d.Plan.Trigger.Type,
		Active:     d.Active,
		Apps:       d.Apps,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		logger.FromContext(ctx).Warn("Failed to record deployment", "workflow_id", d.WorkflowID, "error", err)
	}
}

// Get returns the record of a previous deployment.
func (s *Service) Get(ctx context.Context, workflowID string) (*Record, error) {
	return s.store.Get(ctx, workflowID)
}

// List returns a user's deployments, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]*Record, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) activate(ctx context.Context, workflowID string) error {
	backoff := retry.WithMaxRetries(activationRetries, retry.NewExponential(s.backoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.client.SetActive(ctx, workflowID, true)
		if err == nil {
			return nil
		}
		if isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func isTransient(err error) bool {
	var perr *runtime.ProviderError
	if errors.As(err, &perr) {
		return perr.StatusCode >= http.StatusInternalServerError || perr.StatusCode == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled)
}
