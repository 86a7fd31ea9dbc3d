package template

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type Registry struct {
	mu     sync.RWMutex
	byName map[string]Template
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]Template{}}
}

func normalizeName(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (r *Registry) Register(t Template) error {
	if t == nil {
		return fmt.Errorf("template must not be nil")
	}
	key := normalizeName(t.Metadata().Name)
	if key == "" {
		return fmt.Errorf("template name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTemplate, key)
	}
	r.byName[key] = t
	return nil
}

func (r *Registry) Get(name string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[normalizeName(name)]
	return t, ok
}

// List returns template metadata sorted by name.
func (r *Registry) List() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Metadata, 0, len(r.byName))
	for _, t := range r.byName {
		out = append(out, t.Metadata())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
