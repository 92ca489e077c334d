package catalog

import (
	"context"

	"github.com/bramford/steprunner/internal/step"
)

// NamespaceEnumerator resolves a namespace prefix to the set of candidate
// step classes declared under it. Implementations are not required to
// validate Step conformance; StepCatalog does that once classes are
// returned.
//
// The core ships two enumerators: Registry (in-process, the default) and
// githubsource.Enumerator (a manifest fetched from a GitHub repository).
type NamespaceEnumerator interface {
	Enumerate(ctx context.Context, namespace string) ([]step.Class, error)
}
