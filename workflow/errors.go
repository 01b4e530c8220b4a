package workflow

import "fmt"

// GraphError reports a structural problem detected while compiling a graph.
//
// Structural problems never surface at run time: a graph that compiles
// successfully cannot fail on its own shape. Typical causes:
//   - Entry point missing or unregistered
//   - A route referencing a step that was never registered
//   - No terminal step, an unreachable step, or a cycle
type GraphError struct {
	Graph  string
	Detail string
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	return fmt.Sprintf("graph %s: %s", e.Graph, e.Detail)
}

// StepError captures rich context when a step fails during a run.
//
// The run halts at the failing step; no later step executes and the engine
// performs no retries. Fields:
//   - Step: Which step failed
//   - State: State as of the last successful step. Diagnostic only, never a
//     valid final result
//   - Path: Steps executed up to and including the failure
//   - Err: Underlying cause from the step's computation
type StepError[S any] struct {
	Step  string
	State S
	Path  []string
	Err   error
}

// Error implements the error interface.
func (e *StepError[S]) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

// Unwrap enables error unwrapping for errors.Is and errors.As.
func (e *StepError[S]) Unwrap() error {
	return e.Err
}

// BranchError reports a branch decision that could not be routed.
//
// Either the decision function itself failed (Err is set), or it returned a
// label with no destination in the branch table (Label is set). Both are
// fatal to the run.
type BranchError struct {
	Step  string
	Label Label
	Err   error
}

// Error implements the error interface.
func (e *BranchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("branch decision at step %s failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("branch at step %s returned unmapped label %s", e.Step, e.Label)
}

// Unwrap enables error unwrapping for errors.Is and errors.As.
func (e *BranchError) Unwrap() error {
	return e.Err
}
