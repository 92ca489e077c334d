// Package executor drives a Plan to completion, either sequentially in the
// coordinator process or by fanning each step set out to a worker-process
// pool of configurable width.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/bramford/steprunner/internal/condition"
	"github.com/bramford/steprunner/internal/logging"
	"github.com/bramford/steprunner/internal/plan"
	"github.com/bramford/steprunner/internal/rundata"
	"github.com/bramford/steprunner/internal/runnererr"
	"github.com/bramford/steprunner/internal/step"
)

// WorkerCmdFactory builds the *exec.Cmd for one worker dispatch. Stdin,
// Stdout, and Stderr are wired by the Executor; the factory only needs to
// set Path/Args/Env/Dir. A typical factory re-invokes the coordinator's own
// binary with a hidden subcommand, e.g.:
//
//	func(ctx context.Context) *exec.Cmd {
//	    return exec.CommandContext(ctx, os.Args[0], "__step-worker")
//	}
type WorkerCmdFactory func(ctx context.Context) *exec.Cmd

// Executor runs one Plan against one RunData. Sequential mode is used when
// Jobs == 1; parallel mode (a worker-process pool of width Jobs) is used
// otherwise.
type Executor struct {
	Plan      *plan.Plan
	RunData   *rundata.RunData
	Condition *condition.Evaluator
	Config    map[string]any
	Logger    logging.Logger
	Jobs      int
	WorkerCmd WorkerCmdFactory
}

// Run drives every set in the Plan to completion in order.
func (e *Executor) Run(ctx context.Context) error {
	if e.Jobs < 1 {
		return runnererr.New(runnererr.KindArgumentInvalid, "jobs must be >= 1")
	}
	for i, set := range e.Plan.Sets {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.Logger.Info("starting step set", "index", i, "size", len(set))
		e.RunData.StartStepSet()

		var err error
		if e.Jobs == 1 {
			err = e.runSequentialSet(ctx, set)
		} else {
			err = e.runParallelSet(ctx, set)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// decision captures what the coordinator decided to do with one step before
// dispatching it, shared between sequential and parallel modes.
type decision struct {
	class       step.Class
	instance    step.Instance
	args        step.Args
	eligible    bool
	upToDate    bool
	lastRunTime float64
	hasLRT      bool
}

func (e *Executor) decide(class step.Class) (decision, error) {
	args, err := e.RunData.Args(class, e.Config)
	if err != nil {
		return decision{}, err
	}
	instance, err := class.New(args)
	if err != nil {
		return decision{}, runnererr.Wrap(err, runnererr.KindArgumentInvalid, fmt.Sprintf("constructing step %q", class.Name()))
	}

	eligible, err := e.Condition.Eligible(class.Condition(), e.Config, e.RunData.Productions())
	if err != nil {
		return decision{}, err
	}

	lastRunTime, hasLRT := instance.LastRunTime()
	upToDate := e.RunData.StepIsUpToDate(lastRunTime, hasLRT, len(class.Dependencies()) > 0)

	return decision{
		class:       class,
		instance:    instance,
		args:        args,
		eligible:    eligible,
		upToDate:    upToDate,
		lastRunTime: lastRunTime,
		hasLRT:      hasLRT,
	}, nil
}

func (e *Executor) runSequentialSet(ctx context.Context, set []step.Class) error {
	for _, class := range set {
		d, err := e.decide(class)
		if err != nil {
			return err
		}

		if !d.eligible {
			e.Logger.Debug("step ineligible, skipping", "step", class.Name())
			e.RunData.RecordRunTime(0, false)
			continue
		}

		if d.upToDate {
			e.Logger.Debug("step up to date, skipping", "step", class.Name())
			e.RunData.RecordRunTime(d.lastRunTime, true)
			e.RunData.RecordProductions(d.instance.ProductionsMap())
			continue
		}

		e.Logger.Notice("running step", "step", class.Name())
		if err := d.instance.Run(ctx); err != nil {
			return runnererr.Wrap(err, runnererr.KindWorkerFailure, fmt.Sprintf("step %q failed", class.Name()))
		}
		lastRunTime, hasLRT := d.instance.LastRunTime()
		e.RunData.RecordRunTime(lastRunTime, hasLRT)
		e.RunData.RecordProductions(d.instance.ProductionsMap())
	}
	return nil
}

func (e *Executor) runParallelSet(ctx context.Context, set []step.Class) error {
	sem := make(chan struct{}, e.Jobs)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	aborted := false

	for _, class := range set {
		mu.Lock()
		stop := aborted
		mu.Unlock()
		if stop {
			break
		}

		d, err := e.decide(class)
		if err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			aborted = true
			mu.Unlock()
			break
		}

		if !d.eligible {
			e.RunData.RecordRunTime(0, false)
			continue
		}
		if d.upToDate {
			e.RunData.RecordRunTime(d.lastRunTime, true)
			e.RunData.RecordProductions(d.instance.ProductionsMap())
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(d decision) {
			defer wg.Done()
			defer func() { <-sem }()

			resp, werr := e.dispatch(ctx, d)

			mu.Lock()
			defer mu.Unlock()
			if werr != nil {
				e.Logger.Error("worker failed", "step", d.class.Name(), "error", werr)
				if firstErr == nil {
					firstErr = werr
				}
				aborted = true
				return
			}
			if aborted {
				// A sibling in this set already failed; per the drain-then-
				// abort contract, this worker's productions are discarded,
				// not merged.
				return
			}
			e.RunData.RecordRunTime(resp.LastRunTime, resp.HasLastRunTime)
			e.RunData.RecordProductions(resp.Productions)
		}(d)
	}

	wg.Wait()
	return firstErr
}

// dispatch spawns one worker process for d, sends it d's class name and
// args as YAML on stdin, and decodes its YAML response from stdout.
func (e *Executor) dispatch(ctx context.Context, d decision) (WorkerResponse, error) {
	cmd := e.WorkerCmd(ctx)

	var stdin bytes.Buffer
	enc := yaml.NewEncoder(&stdin)
	if err := enc.Encode(WorkerRequest{ClassName: d.class.Name(), Args: d.args}); err != nil {
		return WorkerResponse{}, runnererr.Wrap(err, runnererr.KindArgumentInvalid, "encoding worker request")
	}
	enc.Close()
	cmd.Stdin = &stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		pid := 0
		if cmd.Process != nil {
			pid = cmd.Process.Pid
		}
		return WorkerResponse{}, runnererr.Wrap(err, runnererr.KindWorkerFailure,
			fmt.Sprintf("worker pid %d (step %q) failed: %s", pid, d.class.Name(), stderr.String()))
	}

	var resp WorkerResponse
	if err := yaml.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return WorkerResponse{}, runnererr.Wrap(err, runnererr.KindWorkerFailure,
			fmt.Sprintf("decoding response from worker for step %q", d.class.Name()))
	}
	return resp, nil
}
