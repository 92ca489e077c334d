package executor_test

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramford/steprunner/internal/condition"
	"github.com/bramford/steprunner/internal/executor"
	"github.com/bramford/steprunner/internal/logging"
	"github.com/bramford/steprunner/internal/plan"
	"github.com/bramford/steprunner/internal/rundata"
	"github.com/bramford/steprunner/internal/runnererr"
	"github.com/bramford/steprunner/internal/step"
	"github.com/bramford/steprunner/internal/steptest"
)

func newEvaluator(t *testing.T) *condition.Evaluator {
	ev, err := condition.NewEvaluator()
	require.NoError(t, err)
	return ev
}

func TestRunSequentialExecutesEligibleSteps(t *testing.T) {
	a := &steptest.Class{ClassName: "A", Prods: []string{"a"}}
	rd := rundata.New()

	exe := &executor.Executor{
		Plan:      &plan.Plan{Sets: [][]step.Class{{a}}},
		RunData:   rd,
		Condition: newEvaluator(t),
		Config:    map[string]any{},
		Logger:    logging.NewSlog(nil),
		Jobs:      1,
	}

	require.NoError(t, exe.Run(context.Background()))
	assert.Equal(t, map[string]any{"a": true}, rd.Productions())
}

func TestRunSequentialSkipsIneligibleStep(t *testing.T) {
	a := &steptest.Class{ClassName: "A", Prods: []string{"a"}, ConditionExpr: `config["go"] == true`}
	rd := rundata.New()

	exe := &executor.Executor{
		Plan:      &plan.Plan{Sets: [][]step.Class{{a}}},
		RunData:   rd,
		Condition: newEvaluator(t),
		Config:    map[string]any{"go": false},
		Logger:    logging.NewSlog(nil),
		Jobs:      1,
	}

	require.NoError(t, exe.Run(context.Background()))
	assert.Empty(t, rd.Productions())
}

func TestRunSequentialSkipsUpToDateStep(t *testing.T) {
	a := &steptest.Class{ClassName: "A", Prods: []string{"a"}, PriorRunTime: 10, HasPriorRun: true}
	rd := rundata.New()

	exe := &executor.Executor{
		Plan:      &plan.Plan{Sets: [][]step.Class{{a}}},
		RunData:   rd,
		Condition: newEvaluator(t),
		Config:    map[string]any{},
		Logger:    logging.NewSlog(nil),
		Jobs:      1,
	}

	require.NoError(t, exe.Run(context.Background()))
	// an up-to-date step's productions still merge into RunData even though
	// Run itself was never invoked.
	assert.Equal(t, map[string]any{"a": true}, rd.Productions())
}

func TestRunRejectsJobsBelowOne(t *testing.T) {
	rd := rundata.New()
	exe := &executor.Executor{
		Plan:      &plan.Plan{},
		RunData:   rd,
		Condition: newEvaluator(t),
		Logger:    logging.NewSlog(nil),
		Jobs:      0,
	}

	err := exe.Run(context.Background())
	require.Error(t, err)
	assert.True(t, runnererr.Is(err, runnererr.KindArgumentInvalid))
}

func TestRunParallelDispatchesToWorkerAndMergesResponse(t *testing.T) {
	a := &steptest.Class{ClassName: "A", Prods: []string{"out"}}
	rd := rundata.New()

	exe := &executor.Executor{
		Plan:      &plan.Plan{Sets: [][]step.Class{{a}}},
		RunData:   rd,
		Condition: newEvaluator(t),
		Config:    map[string]any{},
		Logger:    logging.NewSlog(nil),
		Jobs:      2,
		WorkerCmd: func(ctx context.Context) *exec.Cmd {
			script := "printf 'has_last_run_time: true\\nlast_run_time: 42\\nproductions:\\n  out: ok\\n'"
			return exec.CommandContext(ctx, "sh", "-c", script)
		},
	}

	require.NoError(t, exe.Run(context.Background()))
	assert.Equal(t, map[string]any{"out": "ok"}, rd.Productions())
}

func TestRunParallelAbortsSetOnWorkerFailure(t *testing.T) {
	a := &steptest.Class{ClassName: "A", Prods: []string{"a"}}
	b := &steptest.Class{ClassName: "B", Prods: []string{"b"}}
	rd := rundata.New()

	exe := &executor.Executor{
		Plan:      &plan.Plan{Sets: [][]step.Class{{a, b}}},
		RunData:   rd,
		Condition: newEvaluator(t),
		Config:    map[string]any{},
		Logger:    logging.NewSlog(nil),
		Jobs:      2,
		WorkerCmd: func(ctx context.Context) *exec.Cmd {
			return exec.CommandContext(ctx, "sh", "-c", "exit 1")
		},
	}

	err := exe.Run(context.Background())
	require.Error(t, err)
	assert.True(t, runnererr.Is(err, runnererr.KindWorkerFailure))
}
