package workflow

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/flowkit/observability"
)

// CompiledGraph is a structurally validated, immutable workflow graph.
//
// Compiled graphs hold no per-run state, so a single compiled graph may be
// shared read-only across any number of concurrent runs. Each run threads its
// own state value from the entry point to a terminal step.
type CompiledGraph[S any] struct {
	name      string
	observer  observability.Observer
	steps     map[string]Step[S]
	routes    map[string]route[S]
	order     []string
	entry     string
	terminals []string
}

// Name returns the graph identifier for event metadata.
func (c *CompiledGraph[S]) Name() string {
	return c.name
}

// EntryPoint returns the step a run starts from.
func (c *CompiledGraph[S]) EntryPoint() string {
	return c.entry
}

// Steps returns the registered step names in registration order.
func (c *CompiledGraph[S]) Steps() []string {
	return slices.Clone(c.order)
}

// Terminals returns the names of steps without an outgoing route, in
// registration order. A run completes when one of them finishes.
func (c *CompiledGraph[S]) Terminals() []string {
	return slices.Clone(c.terminals)
}

// Run executes the graph once, from the entry point to a terminal step.
//
// Execution follows this algorithm:
//  1. Start at the entry point with the caller's initial state
//  2. Execute the current step with the current state
//  3. On step failure, halt and return a StepError naming the step
//  4. If the step is terminal, return the final state
//  5. Resolve the step's route: fixed successor, or branch decision
//     through the label table
//  6. Repeat from step 2 with the next step
//
// Each reachable step executes at most once per run; compilation rejected
// cycles, so the loop is bounded by the step count. Context cancellation is
// checked between steps. A step already blocking on an external call is not
// interrupted by the engine; bound those calls with their own deadlines.
//
// On failure the returned state is the state as of the last successful step.
// It is diagnostic only and must not be treated as a final result.
func (c *CompiledGraph[S]) Run(ctx context.Context, initial S) (S, error) {
	runID := uuid.New().String()
	state := initial
	current := c.entry
	path := make([]string, 0, len(c.order))
	runStart := time.Now()

	c.observer.OnEvent(ctx, observability.Event{
		Type:      EventRunStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    c.name,
		Data: map[string]any{
			"run_id":      runID,
			"entry_point": current,
			"steps":       len(c.order),
		},
	})

	for {
		if err := ctx.Err(); err != nil {
			stepErr := &StepError[S]{
				Step:  current,
				State: state,
				Path:  path,
				Err:   fmt.Errorf("run cancelled: %w", err),
			}
			c.emitFail(ctx, runID, current, path, stepErr)
			return state, stepErr
		}

		path = append(path, current)

		c.observer.OnEvent(ctx, observability.Event{
			Type:      EventStepStart,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    c.name,
			Data: map[string]any{
				"run_id":   runID,
				"step":     current,
				"position": len(path),
			},
		})

		stepStart := time.Now()
		next, err := c.steps[current].Execute(ctx, state)

		c.observer.OnEvent(ctx, observability.Event{
			Type:      EventStepComplete,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    c.name,
			Data: map[string]any{
				"run_id":      runID,
				"step":        current,
				"duration_ms": time.Since(stepStart).Milliseconds(),
				"error":       err != nil,
			},
		})

		if err != nil {
			stepErr := &StepError[S]{
				Step:  current,
				State: state,
				Path:  slices.Clone(path),
				Err:   err,
			}
			c.emitFail(ctx, runID, current, path, stepErr)
			return state, stepErr
		}

		state = next

		r, routed := c.routes[current]
		if !routed {
			c.observer.OnEvent(ctx, observability.Event{
				Type:      EventRunComplete,
				Level:     observability.LevelInfo,
				Timestamp: time.Now(),
				Source:    c.name,
				Data: map[string]any{
					"run_id":      runID,
					"terminal":    current,
					"path_length": len(path),
					"duration_ms": time.Since(runStart).Milliseconds(),
				},
			})
			return state, nil
		}

		if r.branch == nil {
			current = r.to
			continue
		}

		c.observer.OnEvent(ctx, observability.Event{
			Type:      EventBranchEvaluate,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    c.name,
			Data: map[string]any{
				"run_id": runID,
				"step":   current,
				"labels": len(r.branch.destinations),
			},
		})

		label, err := r.branch.decide(state)
		if err != nil {
			branchErr := &BranchError{Step: current, Err: err}
			c.emitFail(ctx, runID, current, path, branchErr)
			return state, branchErr
		}

		destination, mapped := r.branch.destinations[label]
		if !mapped {
			branchErr := &BranchError{Step: current, Label: label}
			c.emitFail(ctx, runID, current, path, branchErr)
			return state, branchErr
		}

		c.observer.OnEvent(ctx, observability.Event{
			Type:      EventBranchRoute,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    c.name,
			Data: map[string]any{
				"run_id": runID,
				"step":   current,
				"label":  string(label),
				"next":   destination,
			},
		})

		current = destination
	}
}

func (c *CompiledGraph[S]) emitFail(ctx context.Context, runID, step string, path []string, err error) {
	c.observer.OnEvent(ctx, observability.Event{
		Type:      EventRunFail,
		Level:     observability.LevelError,
		Timestamp: time.Now(),
		Source:    c.name,
		Data: map[string]any{
			"run_id":      runID,
			"step":        step,
			"path_length": len(path),
			"error":       err.Error(),
		},
	})
}
