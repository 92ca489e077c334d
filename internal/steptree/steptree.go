// Package steptree builds the per-final-step dependency DAG: a recursive,
// cycle-detecting tree of step classes rooted at one final step, resolved in
// full when the root is built.
package steptree

import (
	"fmt"
	"sort"

	"github.com/bramford/steprunner/internal/productions"
	"github.com/bramford/steprunner/internal/runnererr"
	"github.com/bramford/steprunner/internal/step"
)

// Node is one immutable tree node: a step class together with the children
// that resolve its declared dependencies. Nodes are built bottom-up in
// New; there is no post-hoc mutation.
type Node struct {
	Class    step.Class
	Children []*Node
}

// New builds the tree rooted at class. candidates is the set of classes
// still eligible to appear as a descendant; class itself is removed from
// the set handed to each child, which combined with the fact that an
// ancestor is never a member of its own descendants' candidate sets (see
// below) makes every cycle manifest as an unresolved dependency rather than
// an infinite recursion.
//
// prodMap resolves dependency names to producing classes. Error messages
// and the self-dependency check name the offending class directly; no
// ancestor path is tracked.
func New(class step.Class, candidates map[string]step.Class, prodMap *productions.Map) (*Node, error) {
	return build(class, candidates, prodMap)
}

func build(class step.Class, candidates map[string]step.Class, prodMap *productions.Map) (*Node, error) {
	node := &Node{Class: class}

	// Remove class from the candidate set handed to its children: this is
	// what turns a true cycle into a missing producer instead of unbounded
	// recursion, since the ancestor that would close the loop is no longer
	// resolvable once the candidate set no longer contains it.
	childCandidates := make(map[string]step.Class, len(candidates))
	for name, c := range candidates {
		if name == class.Name() {
			continue
		}
		childCandidates[name] = c
	}

	seenProducers := make(map[string]bool)
	for _, dep := range class.Dependencies() {
		producer, ok := prodMap.Resolve(dep.Name)
		if !ok {
			return nil, runnererr.New(runnererr.KindUnresolvedDependency,
				fmt.Sprintf("cannot resolve dependency %q of step %q: possible cyclic dependency", dep.Name, class.Name()))
		}
		if producer.Name() == class.Name() {
			return nil, runnererr.New(runnererr.KindSelfDependency,
				fmt.Sprintf("dependency %q of step %q resolved to the step itself", dep.Name, class.Name()))
		}
		if seenProducers[producer.Name()] {
			// Same producer satisfies a different dependency name of this
			// same node: dedup to a single child rather than adding it
			// twice.
			continue
		}
		if _, stillCandidate := childCandidates[producer.Name()]; !stillCandidate {
			return nil, runnererr.New(runnererr.KindUnresolvedDependency,
				fmt.Sprintf("cannot resolve dependency %q of step %q: possible cyclic dependency", dep.Name, class.Name()))
		}
		seenProducers[producer.Name()] = true

		child, err := build(producer, childCandidates, prodMap)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	sort.Slice(node.Children, func(i, j int) bool { return node.Children[i].Class.Name() < node.Children[j].Class.Name() })
	return node, nil
}

// Traverse visits the tree post-order: every child's visit completes before
// visit is called on the parent. visit may be called more than once for the
// same class name across different Traverse calls on sibling trees sharing a
// catalog; callers that need "each class visited exactly once across a
// forest" (the Planner does) are responsible for their own dedup.
func (n *Node) Traverse(visit func(*Node)) {
	for _, child := range n.Children {
		child.Traverse(visit)
	}
	visit(n)
}
