// Package step defines the capability contract that every user-authored step
// class must satisfy, plus the descriptor types used to declare dependencies
// and productions.
package step

import "context"

// Dependency describes a single named input a step consumes as a
// constructor argument.
type Dependency struct {
	Name string
	Kind string
}

// Production describes a single named output a step makes available once it
// has run.
type Production struct {
	Name string
	Kind string
}

// InitArg describes one named constructor parameter. The InitName is the
// external key that dependency resolution and config projection bind against;
// it need not match the Go field name.
type InitArg struct {
	InitName string
	Kind     string
}

// Args is the constructor-argument mapping passed to New: config values
// projected by init name, overlaid with upstream productions for every
// declared dependency.
type Args map[string]any

// Instance is a constructed, runnable step. Run must leave LastRunTime and
// ProductionsMap consistent with each other: if LastRunTime reports a
// timestamp, ProductionsMap must reflect the values produced during that run.
type Instance interface {
	// Run performs the step's side effect. It must be idempotent from the
	// caller's perspective: calling Run again should simply produce a new
	// observable state, not corrupt the prior one.
	Run(ctx context.Context) error

	// LastRunTime reports the most recent run's timestamp, or ok=false if the
	// step has never run.
	LastRunTime() (t float64, ok bool)

	// ProductionsMap reports the values produced by the most recent run.
	ProductionsMap() map[string]any
}

// Class is the capability every candidate step class in a namespace must
// satisfy to be accepted into a StepCatalog.
type Class interface {
	// Name is the class's fully qualified identity, e.g. "steps/build.Compile".
	Name() string

	// Dependencies lists, in declaration order, the named inputs this class
	// requires.
	Dependencies() []Dependency

	// Productions lists, in declaration order, the named outputs this class
	// provides once run.
	Productions() []Production

	// InitArgs lists the named constructor parameters this class accepts.
	InitArgs() []InitArg

	// New builds a runnable instance from the given arguments. The rundata
	// package builds Args without renaming anything: config values are keyed
	// by the init name they matched, and upstream productions by their
	// dependency name.
	New(args Args) (Instance, error)

	// Condition optionally returns a CEL boolean expression gating whether
	// this step is eligible to run, evaluated over "config" and
	// "productions" variables. An empty string means "always eligible".
	Condition() string
}
