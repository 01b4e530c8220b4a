package workflow

import "context"

// Step is a unit of work in a workflow graph.
//
// A step receives the current state value and returns the updated one. Steps
// must be additive: slots they do not own are passed through unchanged, so
// downstream steps and branch decisions see everything written before them.
// A step that cannot complete its computation returns an error, which is fatal
// to the run; the engine performs no retries, so any retry policy belongs
// inside the step itself.
//
// Steps must not keep mutable state across runs. Everything a step needs
// beyond the state value is injected at construction time, which keeps a
// compiled graph safe to share across concurrent runs.
type Step[S any] interface {
	// Execute processes the current state and returns the updated state.
	Execute(ctx context.Context, state S) (S, error)
}

// StepFunc adapts an ordinary function to the Step interface.
//
// Example:
//
//	upper := workflow.StepFunc[Doc](func(ctx context.Context, d Doc) (Doc, error) {
//	    d.Title = strings.ToUpper(d.Title)
//	    return d, nil
//	})
type StepFunc[S any] func(ctx context.Context, state S) (S, error)

// Execute implements the Step interface.
func (f StepFunc[S]) Execute(ctx context.Context, state S) (S, error) {
	return f(ctx, state)
}
