// Package productions resolves production names to the step class that
// supplies them.
package productions

import (
	"github.com/bramford/steprunner/internal/catalog"
	"github.com/bramford/steprunner/internal/step"
)

// Map is the immutable mapping from production name to the single step
// class that supplies it. Built once per StepCatalog and shared read-only
// by every StepTree rooted against that catalog.
type Map struct {
	producers map[string]step.Class
}

// Build walks cat's classes once, in catalog order. For each class, for each
// production in declaration order, the first class to declare a given
// production name wins; later declarations of the same name are ignored.
// Because the catalog is already sorted by (namespace index, class name),
// "first wins" here means "first-declaring namespace wins", independent of
// how any one enumerator happened to order classes within a namespace.
func Build(cat *catalog.StepCatalog) *Map {
	m := &Map{producers: make(map[string]step.Class)}
	for _, c := range cat.Classes() {
		for _, p := range c.Productions() {
			if _, exists := m.producers[p.Name]; exists {
				continue
			}
			m.producers[p.Name] = c
		}
	}
	return m
}

// Resolve returns the step class that supplies production, or ok=false if
// no catalog class declares it.
func (m *Map) Resolve(production string) (step.Class, bool) {
	c, ok := m.producers[production]
	return c, ok
}
