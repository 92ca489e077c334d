package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/bramford/steprunner/internal/step"
)

// Registry is the default, in-process NamespaceEnumerator. Step classes
// register themselves (typically from an init function) under one or more
// namespace prefixes; Enumerate returns every class registered under the
// requested prefix, sorted by name for reproducibility ahead of
// StepCatalog's own (namespace, name) sort.
type Registry struct {
	mu      sync.RWMutex
	classes map[string][]step.Class
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string][]step.Class)}
}

// Register adds class under namespace. Registering the same class name twice
// under the same namespace is a no-op; StepCatalog's later validation is
// what actually complains about malformed classes, not the registry.
func (r *Registry) Register(namespace string, class step.Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.classes[namespace] {
		if existing.Name() == class.Name() {
			return
		}
	}
	r.classes[namespace] = append(r.classes[namespace], class)
}

// Enumerate implements NamespaceEnumerator.
func (r *Registry) Enumerate(_ context.Context, namespace string) ([]step.Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]step.Class, len(r.classes[namespace]))
	copy(out, r.classes[namespace])
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}
