// Package catalog enumerates and validates the set of known step classes
// across one or more namespaces, producing a deterministically ordered
// StepCatalog.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/bramford/steprunner/internal/runnererr"
	"github.com/bramford/steprunner/internal/step"
)

// StepCatalog is the ordered set of known step classes, sorted by
// (namespace-prefix index, fully qualified class name ascending). That
// ordering, not the enumerator's own ordering, is what gives duplicate
// production resolution (internal/productions) and deterministic traversal
// their reproducibility.
type StepCatalog struct {
	namespaces []string
	classes    []step.Class
	nsIndex    map[string]int // class name -> index of the namespace that first enumerated it
}

// Build enumerates every namespace in order via enumerator, validates that
// every returned class satisfies the Step capability, and returns the
// resulting StepCatalog. A class that fails validation is a hard error
// naming the offending class; enumeration does not continue past it.
func Build(ctx context.Context, namespaces []string, enumerator NamespaceEnumerator) (*StepCatalog, error) {
	if len(namespaces) == 0 {
		return nil, runnererr.New(runnererr.KindArgumentInvalid, "at least one step namespace is required")
	}

	cat := &StepCatalog{namespaces: namespaces, nsIndex: make(map[string]int)}
	for nsIdx, ns := range namespaces {
		classes, err := enumerator.Enumerate(ctx, ns)
		if err != nil {
			return nil, runnererr.Wrap(err, runnererr.KindCatalogMalformed, fmt.Sprintf("enumerating namespace %q", ns))
		}
		for _, c := range classes {
			if err := validate(c); err != nil {
				return nil, runnererr.Wrap(err, runnererr.KindCatalogMalformed, fmt.Sprintf("class %q in namespace %q does not satisfy the step capability", c.Name(), ns))
			}
			if _, seen := cat.nsIndex[c.Name()]; seen {
				continue
			}
			cat.nsIndex[c.Name()] = nsIdx
			cat.classes = append(cat.classes, c)
		}
	}

	cat.sortDeterministically()
	return cat, nil
}

// validate confirms c satisfies the shape the Step capability requires
// beyond the Go type system: a non-empty name, and no production name
// colliding with one of its own dependency names (the latter is also
// re-checked at plan time, but rejecting it at catalog build time gives the
// earliest possible error).
func validate(c step.Class) error {
	if c == nil {
		return fmt.Errorf("nil step class")
	}
	if c.Name() == "" {
		return fmt.Errorf("step class has an empty name")
	}
	deps := make(map[string]bool, len(c.Dependencies()))
	for _, d := range c.Dependencies() {
		if d.Name == "" {
			return fmt.Errorf("step class %q declares a dependency with an empty name", c.Name())
		}
		deps[d.Name] = true
	}
	for _, p := range c.Productions() {
		if p.Name == "" {
			return fmt.Errorf("step class %q declares a production with an empty name", c.Name())
		}
		if deps[p.Name] {
			return fmt.Errorf("step class %q declares production %q that collides with one of its own dependency names", c.Name(), p.Name)
		}
	}
	return nil
}

// sortDeterministically orders classes by (namespace-prefix index, name
// ascending): precedence for duplicate productions is deterministic and
// controllable by the user reordering namespaces, and alphabetic order
// within a namespace keeps the result reproducible across enumerators that
// may themselves enumerate non-deterministically.
func (c *StepCatalog) sortDeterministically() {
	sort.SliceStable(c.classes, func(i, j int) bool {
		ni, nj := c.nsIndex[c.classes[i].Name()], c.nsIndex[c.classes[j].Name()]
		if ni != nj {
			return ni < nj
		}
		return c.classes[i].Name() < c.classes[j].Name()
	})
}

// Classes returns the catalog's classes in deterministic order.
func (c *StepCatalog) Classes() []step.Class {
	out := make([]step.Class, len(c.classes))
	copy(out, c.classes)
	return out
}

// Namespaces returns the declared namespace prefixes, in declared order.
func (c *StepCatalog) Namespaces() []string {
	out := make([]string, len(c.namespaces))
	copy(out, c.namespaces)
	return out
}
