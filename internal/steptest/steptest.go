// Package steptest provides a minimal, deterministic step.Class fake shared
// by the scheduling core's tests: catalog, productions, steptree, plan,
// rundata, and executor all exercise the same dependency-graph scenarios
// from SPEC §8, so one fixture type is reused rather than redefined per
// package.
package steptest

import (
	"context"

	"github.com/bramford/steprunner/internal/step"
)

// Class is a step.Class whose Run just records that it ran and stamps a
// caller-supplied timestamp, with dependencies/productions/condition fixed
// at construction time.
type Class struct {
	ClassName      string
	Deps           []string
	Prods          []string
	ConditionExpr  string
	PriorRunTime   float64
	HasPriorRun    bool
	ProducedValues map[string]any
}

func (c *Class) Name() string { return c.ClassName }

func (c *Class) Dependencies() []step.Dependency {
	deps := make([]step.Dependency, len(c.Deps))
	for i, d := range c.Deps {
		deps[i] = step.Dependency{Name: d, Kind: "string"}
	}
	return deps
}

func (c *Class) Productions() []step.Production {
	prods := make([]step.Production, len(c.Prods))
	for i, p := range c.Prods {
		prods[i] = step.Production{Name: p, Kind: "string"}
	}
	return prods
}

func (c *Class) InitArgs() []step.InitArg { return nil }

func (c *Class) Condition() string { return c.ConditionExpr }

func (c *Class) New(args step.Args) (step.Instance, error) {
	return &Instance{class: c, args: args, lastRunTime: c.PriorRunTime, hasRun: c.HasPriorRun}, nil
}

// Instance is the runnable counterpart to Class.
type Instance struct {
	class       *Class
	args        step.Args
	lastRunTime float64
	hasRun      bool
	ranThisTime bool
}

// Args exposes the constructor arguments New received, for assertions.
func (i *Instance) Args() step.Args { return i.args }

func (i *Instance) Run(ctx context.Context) error {
	i.ranThisTime = true
	i.hasRun = true
	return nil
}

func (i *Instance) Ran() bool { return i.ranThisTime }

func (i *Instance) LastRunTime() (float64, bool) {
	return i.lastRunTime, i.hasRun
}

func (i *Instance) ProductionsMap() map[string]any {
	if i.class.ProducedValues != nil {
		return i.class.ProducedValues
	}
	out := make(map[string]any, len(i.class.Prods))
	for _, p := range i.class.Prods {
		out[p] = true
	}
	return out
}
