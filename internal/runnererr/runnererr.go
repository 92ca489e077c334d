// Package runnererr defines the tagged error model the scheduling core uses
// to surface failures uniformly to callers.
package runnererr

import (
	"errors"
	"fmt"
)

// Kind tags the distinct failure categories the core can raise. None are
// retried by the core; the caller decides what to do with a given Kind.
type Kind string

const (
	KindCatalogMalformed             Kind = "CatalogMalformed"
	KindUnresolvedDependency         Kind = "UnresolvedDependency"
	KindSelfDependency               Kind = "SelfDependency"
	KindMissingProductionAtConstruct Kind = "MissingProductionAtConstruct"
	KindWorkerFailure                Kind = "WorkerFailure"
	KindArgumentInvalid              Kind = "ArgumentInvalid"
	KindConditionInvalid             Kind = "ConditionInvalid"
)

// RunnerError is the single error type every failure path in this module
// returns. It carries a Kind for programmatic matching, a human message, and
// an optional wrapped cause.
type RunnerError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *RunnerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RunnerError) Unwrap() error {
	return e.Err
}

// New creates a RunnerError with no wrapped cause.
func New(kind Kind, message string) *RunnerError {
	return &RunnerError{Kind: kind, Message: message}
}

// Wrap creates a RunnerError wrapping err.
func Wrap(err error, kind Kind, message string) *RunnerError {
	return &RunnerError{Kind: kind, Message: message, Err: err}
}

// Is reports whether err is a RunnerError carrying the given Kind.
func Is(err error, kind Kind) bool {
	var re *RunnerError
	if !errors.As(err, &re) {
		return false
	}
	return re.Kind == kind
}
