package deploy

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/compozy/autoflow/engine/plan"
)

var ErrDeploymentNotFound = errors.New("deployment not found")

// Record is what the registry keeps about a deployed workflow.
type Record struct {
	WorkflowID string           `json:"workflowId"`
	UserID     string           `json:"userId"`
	Name       string           `json:"name"`
	Trigger    plan.TriggerType `json:"trigger"`
	Active     bool             `json:"active"`
	Apps       []string         `json:"apps"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Store persists deployment records.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, workflowID string) (*Record, error)
	ListByUser(ctx context.Context, userID string) ([]*Record, error)
}

// MemoryStore is the process-local Store used when no Redis URL is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (m *MemoryStore) Save(_ context.Context, rec *Record) error {
	cp := *rec
	cp.Apps = slices.Clone(rec.Apps)
	m.mu.Lock()
	m.records[rec.WorkflowID] = &cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, workflowID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[workflowID]
	if !ok {
		return nil, ErrDeploymentNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *MemoryStore) ListByUser(_ context.Context, userID string) ([]*Record, error) {
	m.mu.RLock()
	out := make([]*Record, 0)
	for _, rec := range m.records {
		if rec.UserID == userID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	m.mu.RUnlock()
	SortRecords(out)
	return out, nil
}

// SortRecords orders records newest first, ties broken by workflow id.
func SortRecords(records []*Record) {
	slices.SortFunc(records, func(a, b *Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.WorkflowID, b.WorkflowID)
	})
}
