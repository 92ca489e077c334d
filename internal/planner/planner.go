// Package planner exposes the library's top-level public surface: build a
// catalog once, then drive as many Run invocations against it as the caller
// needs.
package planner

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/bramford/steprunner/internal/catalog"
	"github.com/bramford/steprunner/internal/condition"
	"github.com/bramford/steprunner/internal/executor"
	"github.com/bramford/steprunner/internal/logging"
	"github.com/bramford/steprunner/internal/plan"
	"github.com/bramford/steprunner/internal/rundata"
	"github.com/bramford/steprunner/internal/runnererr"
)

// Options configures a Planner at construction time.
type Options struct {
	// StepNamespaces are the namespace prefixes to enumerate, in the order
	// that determines duplicate-production precedence.
	StepNamespaces []string

	// Jobs is the worker-process pool width. 1 means sequential execution
	// in the coordinator process; the core requires Jobs >= 1.
	Jobs int

	// Logger receives the five-level event stream. Defaults to a
	// log/slog-backed stderr logger when nil.
	Logger logging.Logger

	// Enumerator resolves namespaces to candidate step classes. Defaults to
	// a fresh, empty catalog.Registry when nil — callers normally pass
	// their own populated Registry, or a githubsource.Enumerator.
	Enumerator catalog.NamespaceEnumerator

	// WorkerCmd builds the *exec.Cmd used to dispatch one worker process in
	// parallel mode. Defaults to re-invoking os.Args[0] with the
	// "__step-worker" hidden argument, which is what cmd/steprunner wires
	// up; embedders with a different process layout must override this.
	WorkerCmd executor.WorkerCmdFactory

	// OnRunStart, when set, is called once a Run's Plan and RunData have
	// been built but before execution begins. It lets an embedder mount a
	// read-only inspector (internal/inspector) against the live RunData for
	// the duration of the run.
	OnRunStart func(*plan.Plan, *rundata.RunData)

	// OnRunEnd, when set, is called after a Run completes (successfully or
	// not), mirroring OnRunStart for teardown.
	OnRunEnd func()
}

// RunOptions configures one Run invocation.
type RunOptions struct {
	// FinalSteps are the fully qualified class names the plan must satisfy.
	FinalSteps []string

	// Config is forwarded as constructor arguments to every step whose
	// init-arg names match a key in this map.
	Config map[string]any
}

// Planner owns one StepCatalog (built once) and drives any number of Run
// invocations against it, each owning its own Plan and RunData exclusively.
type Planner struct {
	opts    Options
	catalog *catalog.StepCatalog
	builder *plan.Builder
	cond    *condition.Evaluator
}

// New builds the catalog immediately (namespace enumeration and Step
// capability validation both happen here, so a malformed catalog fails
// fast, before any Run call).
func New(ctx context.Context, opts Options) (*Planner, error) {
	if opts.Jobs < 1 {
		return nil, runnererr.New(runnererr.KindArgumentInvalid, "jobs must be >= 1")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewSlog(nil)
	}
	if opts.Enumerator == nil {
		opts.Enumerator = catalog.NewRegistry()
	}
	if opts.WorkerCmd == nil {
		opts.WorkerCmd = defaultWorkerCmd
	}

	cat, err := catalog.Build(ctx, opts.StepNamespaces, opts.Enumerator)
	if err != nil {
		return nil, err
	}

	cond, err := condition.NewEvaluator()
	if err != nil {
		return nil, err
	}

	return &Planner{
		opts:    opts,
		catalog: cat,
		builder: plan.NewBuilder(cat),
		cond:    cond,
	}, nil
}

func defaultWorkerCmd(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, os.Args[0], "__step-worker")
}

// Catalog exposes the planner's resolved catalog, e.g. for a `plan`/
// `validate` CLI subcommand that wants to inspect it without running
// anything.
func (p *Planner) Catalog() *catalog.StepCatalog {
	return p.catalog
}

// Plan builds (without executing) the step-set partition satisfying
// finalSteps, e.g. for a `plan` CLI subcommand.
func (p *Planner) Plan(ctx context.Context, finalSteps []string) (*plan.Plan, error) {
	return p.builder.Build(ctx, finalSteps)
}

// Run builds a Plan for opts.FinalSteps and drives it to completion,
// merging step productions into a fresh, Run-scoped RunData. No value is
// returned on success; the RunData is reachable only through the
// Options.OnRunStart hook, or through side effects the steps themselves
// perform.
func (p *Planner) Run(ctx context.Context, opts RunOptions) error {
	if len(opts.FinalSteps) == 0 {
		return runnererr.New(runnererr.KindArgumentInvalid, "at least one final step is required")
	}

	built, err := p.builder.Build(ctx, opts.FinalSteps)
	if err != nil {
		return err
	}

	rd := rundata.New()
	if p.opts.OnRunStart != nil {
		p.opts.OnRunStart(built, rd)
	}
	if p.opts.OnRunEnd != nil {
		defer p.opts.OnRunEnd()
	}
	ex := &executor.Executor{
		Plan:      built,
		RunData:   rd,
		Condition: p.cond,
		Config:    opts.Config,
		Logger:    p.opts.Logger,
		Jobs:      p.opts.Jobs,
		WorkerCmd: p.opts.WorkerCmd,
	}

	p.opts.Logger.Info("starting run", "final_steps", fmt.Sprint(opts.FinalSteps), "jobs", p.opts.Jobs, "sets", len(built.Sets))
	if err := ex.Run(ctx); err != nil {
		p.opts.Logger.Error("run failed", "error", err)
		return err
	}
	p.opts.Logger.Info("run complete", "productions", len(rd.Productions()))
	return nil
}
