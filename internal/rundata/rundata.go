// Package rundata holds the per-invocation coordinator state: accumulated
// productions, per-set and prior-max timestamps, and the up-to-date
// predicate the Executor uses to decide skip vs. run.
package rundata

import (
	"fmt"
	"sync"

	"github.com/bramford/steprunner/internal/runnererr"
	"github.com/bramford/steprunner/internal/step"
)

// RunData exists only for the duration of one Run call. It is
// coordinator-private; workers never touch it directly.
type RunData struct {
	mu sync.Mutex

	productions map[string]any

	currentSetTimes    []float64
	currentSetComplete bool // false once any completed step in the set reported no timestamp

	previousMax    float64
	previousMaxSet bool
}

// New returns an empty RunData ready for the first step set.
func New() *RunData {
	return &RunData{
		productions:        make(map[string]any),
		currentSetComplete: true,
	}
}

// StartStepSet folds the current set's timestamps into previousMax and
// clears the per-set timestamp bookkeeping. Call once before processing
// each step set, including the first.
func (r *RunData) StartStepSet() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentSetComplete {
		for _, t := range r.currentSetTimes {
			if !r.previousMaxSet || t > r.previousMax {
				r.previousMax = t
				r.previousMaxSet = true
			}
		}
	} else {
		// A step in the just-finished set reported no timestamp (e.g. it
		// was skipped by a false condition). previousMax can no longer be
		// asserted as "all prior defined", so dependents of this set must
		// see previousMaxSet=false to fail the "all d have defined
		// last_run_time" guard.
		r.previousMaxSet = false
	}

	r.currentSetTimes = nil
	r.currentSetComplete = true
}

// RecordRunTime appends t to the current set's timestamps. If ok is false
// (the step reported no timestamp), the set becomes "incomplete-times" for
// the purposes of the next StartStepSet fold.
func (r *RunData) RecordRunTime(t float64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !ok {
		r.currentSetComplete = false
		return
	}
	r.currentSetTimes = append(r.currentSetTimes, t)
}

// RecordProductions merges m into the accumulated productions map. Later
// calls win on key collision; a valid plan never produces a collision since
// ProductionMap already assigns each production name to exactly one class.
func (r *RunData) RecordProductions(m map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range m {
		r.productions[k] = v
	}
}

// Productions returns a snapshot copy of the accumulated productions map.
func (r *RunData) Productions() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]any, len(r.productions))
	for k, v := range r.productions {
		out[k] = v
	}
	return out
}

// StepIsUpToDate implements the up-to-date predicate of §4.5: a step whose
// own last-run timestamp is defined and strictly exceeds the maximum
// timestamp observed across all prior step sets (equivalently, across its
// dependency producers, which by construction all live in prior sets).
// Equal timestamps are treated as NOT up-to-date.
func (r *RunData) StepIsUpToDate(lastRunTime float64, hasLastRunTime bool, hasDependencies bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !hasLastRunTime {
		return false
	}
	if !hasDependencies {
		return true
	}
	if !r.previousMaxSet {
		return false
	}
	return lastRunTime > r.previousMax
}

// Args projects config entries whose keys match one of class's init-arg
// names, then overlays upstream productions for every dependency class
// declares (productions win over config on key collision). A dependency
// with no recorded production at this point is a defensive-only error:
// plan-time validation should have made this unreachable.
func (r *RunData) Args(class step.Class, config map[string]any) (step.Args, error) {
	r.mu.Lock()
	productionsSnapshot := make(map[string]any, len(r.productions))
	for k, v := range r.productions {
		productionsSnapshot[k] = v
	}
	r.mu.Unlock()

	initNames := make(map[string]bool, len(class.InitArgs()))
	for _, a := range class.InitArgs() {
		initNames[a.InitName] = true
	}

	args := make(step.Args, len(initNames))
	for key, val := range config {
		if initNames[key] {
			args[key] = val
		}
	}

	for _, dep := range class.Dependencies() {
		val, ok := productionsSnapshot[dep.Name]
		if !ok {
			return nil, runnererr.New(runnererr.KindMissingProductionAtConstruct,
				fmt.Sprintf("step %q requires dependency %q but no production was recorded for it", class.Name(), dep.Name))
		}
		args[dep.Name] = val
	}

	return args, nil
}

// MakeStepObject builds a runnable instance of class via Args followed by
// class.New.
func (r *RunData) MakeStepObject(class step.Class, config map[string]any) (step.Instance, error) {
	args, err := r.Args(class, config)
	if err != nil {
		return nil, err
	}
	return class.New(args)
}
