package apps

import (
	"sort"
	"sync"
)

// SupportedApps answers whether the runtime can drive an app.
type SupportedApps interface {
	IsSupported(app string) bool
}

// Registry is the in-memory list of apps the runtime supports.
type Registry struct {
	mu   sync.RWMutex
	apps map[string]struct{}
}

func NewRegistry(apps ...string) *Registry {
	r := &Registry{apps: map[string]struct{}{}}
	r.Add(apps...)
	return r
}

func (r *Registry) Add(apps ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range apps {
		if key := normalizeApp(app); key != "" {
			r.apps[key] = struct{}{}
		}
	}
}

func (r *Registry) IsSupported(app string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.apps[normalizeApp(app)]
	return ok
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.apps))
	for app := range r.apps {
		out = append(out, app)
	}
	sort.Strings(out)
	return out
}
