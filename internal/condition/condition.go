// Package condition evaluates a step's optional CEL boolean expression,
// gating eligibility to run independent of the up-to-date check.
package condition

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/bramford/steprunner/internal/runnererr"
)

// Evaluator compiles and caches the CEL boolean expressions declared by
// steps' Condition() method. One Evaluator is shared by every step in a
// Planner, since the expression environment (the "config"/"productions"
// variables) is the same for all of them.
type Evaluator struct {
	env          *cel.Env
	programCache sync.Map // expression string -> cel.Program
	cacheMutex   sync.Mutex
}

// NewEvaluator builds the shared CEL environment exposing "config" and
// "productions" as dynamically-typed string-keyed maps.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("config", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("productions", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, runnererr.Wrap(err, runnererr.KindConditionInvalid, "failed to create condition evaluation environment")
	}
	return &Evaluator{env: env}, nil
}

// Eligible evaluates expr over config and productions. An empty expr always
// evaluates to true ("always eligible"), matching §3's "no condition
// declared" default.
func (e *Evaluator) Eligible(expr string, config, productions map[string]any) (bool, error) {
	if expr == "" {
		return true, nil
	}

	program, err := e.getOrCompile(expr)
	if err != nil {
		return false, err
	}

	result, _, err := program.Eval(map[string]any{
		"config":      config,
		"productions": productions,
	})
	if err != nil {
		return false, runnererr.Wrap(err, runnererr.KindConditionInvalid, fmt.Sprintf("evaluating condition %q", expr))
	}
	if result.Type() != types.BoolType {
		return false, runnererr.New(runnererr.KindConditionInvalid, fmt.Sprintf("condition %q must evaluate to a boolean, got %v", expr, result.Type()))
	}
	return result.Value().(bool), nil
}

func (e *Evaluator) getOrCompile(expr string) (cel.Program, error) {
	if cached, ok := e.programCache.Load(expr); ok {
		return cached.(cel.Program), nil
	}

	e.cacheMutex.Lock()
	defer e.cacheMutex.Unlock()

	if cached, ok := e.programCache.Load(expr); ok {
		return cached.(cel.Program), nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, runnererr.Wrap(issues.Err(), runnererr.KindConditionInvalid, fmt.Sprintf("compiling condition %q", expr))
	}
	program, err := e.env.Program(ast)
	if err != nil {
		return nil, runnererr.Wrap(err, runnererr.KindConditionInvalid, fmt.Sprintf("building condition program %q", expr))
	}

	e.programCache.Store(expr, program)
	return program, nil
}
