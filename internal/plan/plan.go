// Package plan computes the layered topological partition of the union of
// per-final-step dependency trees: the Plan the Executor drives to
// completion.
package plan

import (
	"context"
	"fmt"
	"sort"

	"github.com/bramford/steprunner/internal/catalog"
	"github.com/bramford/steprunner/internal/productions"
	"github.com/bramford/steprunner/internal/runnererr"
	"github.com/bramford/steprunner/internal/step"
	"github.com/bramford/steprunner/internal/steptree"
)

// Plan is an ordered sequence of step sets. Set i contains only steps all of
// whose dependencies are produced by steps in sets [0, i). Within a set,
// execution order is unobservable; across sets it is strict.
type Plan struct {
	Sets [][]step.Class
}

// Builder builds Plans against one fixed StepCatalog/ProductionMap pair.
// Build it once per Planner and reuse it across Run invocations.
type Builder struct {
	catalog *catalog.StepCatalog
	prodMap *productions.Map
}

// NewBuilder returns a Builder bound to cat and its derived production map.
func NewBuilder(cat *catalog.StepCatalog) *Builder {
	return &Builder{catalog: cat, prodMap: productions.Build(cat)}
}

// ProductionMap exposes the builder's resolved production map, the same one
// every StepTree built by Build resolves dependencies against.
func (b *Builder) ProductionMap() *productions.Map {
	return b.prodMap
}

// Build produces a Plan satisfying every class named (directly or
// transitively) by finalSteps. finalSteps are fully qualified class names
// that must exist in the catalog.
func (b *Builder) Build(_ context.Context, finalSteps []string) (*Plan, error) {
	if len(finalSteps) == 0 {
		return nil, runnererr.New(runnererr.KindArgumentInvalid, "at least one final step is required")
	}

	byName := make(map[string]step.Class, len(b.catalog.Classes()))
	for _, c := range b.catalog.Classes() {
		byName[c.Name()] = c
	}

	layer := make(map[string]int)
	classByName := make(map[string]step.Class)

	for _, fs := range finalSteps {
		root, ok := byName[fs]
		if !ok {
			return nil, runnererr.New(runnererr.KindArgumentInvalid, fmt.Sprintf("final step %q is not in the catalog", fs))
		}

		candidates := make(map[string]step.Class, len(byName))
		for name, c := range byName {
			candidates[name] = c
		}

		tree, err := steptree.New(root, candidates, b.prodMap)
		if err != nil {
			return nil, err
		}

		tree.Traverse(func(n *steptree.Node) {
			name := n.Class.Name()
			classByName[name] = n.Class

			computed := 0
			for _, child := range n.Children {
				if l := layer[child.Class.Name()] + 1; l > computed {
					computed = l
				}
			}
			// A class appearing in multiple subtrees is emitted once, at
			// its highest-computed layer across all the trees it appears
			// in, which guarantees every dependency still precedes it.
			if existing, ok := layer[name]; !ok || computed > existing {
				layer[name] = computed
			}
		})
	}

	maxLayer := -1
	for _, l := range layer {
		if l > maxLayer {
			maxLayer = l
		}
	}

	sets := make([][]step.Class, maxLayer+1)
	for name, l := range layer {
		sets[l] = append(sets[l], classByName[name])
	}
	for _, set := range sets {
		sort.Slice(set, func(i, j int) bool { return set[i].Name() < set[j].Name() })
	}

	return &Plan{Sets: sets}, nil
}
