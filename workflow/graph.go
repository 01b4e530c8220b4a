package workflow

import (
	"fmt"
	"maps"
	"slices"

	"github.com/tailored-agentic-units/flowkit/observability"
)

// Graph is a mutable workflow builder.
//
// Callers register steps, routes, and an entry point, then call Compile to
// obtain an immutable CompiledGraph. Registration methods catch immediate
// misuse (empty names, nil steps, duplicate registrations); everything
// structural is deferred to Compile, so steps and routes may be registered in
// any order, including routes to steps added later.
//
// Example workflow structure:
//
//	graph, err := workflow.NewGraph[State](cfg)
//	graph.AddStep("fetch", fetchStep)
//	graph.AddStep("enrich", enrichStep)
//	graph.AddStep("archive", archiveStep)
//	graph.AddStep("discard", discardStep)
//	graph.AddEdge("fetch", "enrich")
//	graph.AddBranch("enrich", decide, map[workflow.Label]string{
//	    "keep": "archive",
//	    "drop": "discard",
//	})
//	graph.SetEntryPoint("fetch")
//	compiled, err := graph.Compile()
type Graph[S any] struct {
	name     string
	observer observability.Observer
	steps    map[string]Step[S]
	order    []string
	routes   map[string]route[S]
	entry    string
}

// NewGraph creates a graph builder from configuration.
//
// The constructor resolves the observer from the observability registry. An
// empty Observer field selects the no-op observer.
func NewGraph[S any](cfg Config) (*Graph[S], error) {
	if cfg.Observer == "" {
		cfg.Observer = "noop"
	}

	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	return NewGraphWithObserver[S](cfg, observer), nil
}

// NewGraphWithObserver creates a graph builder with an injected observer,
// bypassing the registry. A nil observer falls back to the no-op observer.
func NewGraphWithObserver[S any](cfg Config, observer observability.Observer) *Graph[S] {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	name := cfg.Name
	if name == "" {
		name = "workflow"
	}

	return &Graph[S]{
		name:     name,
		observer: observer,
		steps:    make(map[string]Step[S]),
		routes:   make(map[string]route[S]),
	}
}

// Name returns the graph identifier for event metadata.
func (g *Graph[S]) Name() string {
	return g.name
}

// AddStep registers a computation step in the graph.
//
// Steps must have unique names. Adding a duplicate step returns an error.
func (g *Graph[S]) AddStep(name string, step Step[S]) error {
	if name == "" {
		return fmt.Errorf("step name cannot be empty")
	}

	if step == nil {
		return fmt.Errorf("step %s cannot be nil", name)
	}

	if _, exists := g.steps[name]; exists {
		return fmt.Errorf("step %s already registered", name)
	}

	g.steps[name] = step
	g.order = append(g.order, name)
	return nil
}

// AddEdge registers the unconditional route out of a step.
//
// Each step has at most one outgoing route, so a second AddEdge or AddBranch
// for the same source returns an error. The destination may be registered
// after the edge; Compile resolves references.
func (g *Graph[S]) AddEdge(from, to string) error {
	if from == "" {
		return fmt.Errorf("edge source cannot be empty")
	}

	if to == "" {
		return fmt.Errorf("edge destination cannot be empty")
	}

	if _, exists := g.routes[from]; exists {
		return fmt.Errorf("step %s already has an outgoing route", from)
	}

	g.routes[from] = route[S]{to: to}
	return nil
}

// AddBranch registers the conditional route out of a step.
//
// The decision function is evaluated after the source step completes, and its
// label is resolved through destinations. The table is copied, so later caller
// mutation does not affect the graph.
func (g *Graph[S]) AddBranch(from string, decide BranchFunc[S], destinations map[Label]string) error {
	if from == "" {
		return fmt.Errorf("branch source cannot be empty")
	}

	if decide == nil {
		return fmt.Errorf("branch decision for step %s cannot be nil", from)
	}

	if len(destinations) == 0 {
		return fmt.Errorf("branch for step %s has no destinations", from)
	}

	for label, to := range destinations {
		if label == "" {
			return fmt.Errorf("branch for step %s has an empty label", from)
		}
		if to == "" {
			return fmt.Errorf("branch label %s for step %s has an empty destination", label, from)
		}
	}

	if _, exists := g.routes[from]; exists {
		return fmt.Errorf("step %s already has an outgoing route", from)
	}

	g.routes[from] = route[S]{branch: &branch[S]{
		decide:       decide,
		destinations: maps.Clone(destinations),
	}}
	return nil
}

// SetEntryPoint defines the step a run starts from.
func (g *Graph[S]) SetEntryPoint(name string) error {
	if name == "" {
		return fmt.Errorf("entry point cannot be empty")
	}

	if g.entry != "" {
		return fmt.Errorf("entry point already set to %s", g.entry)
	}

	g.entry = name
	return nil
}

// Compile validates the graph structure and freezes it for execution.
//
// Validation ensures:
//   - At least one step exists and the entry point is set and registered
//   - Every route source and destination names a registered step
//   - At least one terminal step (no outgoing route) exists
//   - Every step is reachable from the entry point
//   - The graph contains no cycles
//
// Compile is the only place structural errors are raised; a compiled graph
// never fails structurally at run time. The returned CompiledGraph holds
// copies of the step and route tables, so the builder may be discarded or
// mutated afterwards without affecting compiled runs.
func (g *Graph[S]) Compile() (*CompiledGraph[S], error) {
	fail := func(format string, args ...any) (*CompiledGraph[S], error) {
		return nil, &GraphError{Graph: g.name, Detail: fmt.Sprintf(format, args...)}
	}

	if len(g.steps) == 0 {
		return fail("graph has no steps")
	}

	if g.entry == "" {
		return fail("entry point not set")
	}

	if _, exists := g.steps[g.entry]; !exists {
		return fail("entry point %s is not a registered step", g.entry)
	}

	for from := range g.routes {
		if _, exists := g.steps[from]; !exists {
			return fail("route source %s is not a registered step", from)
		}
	}

	var terminals []string
	for _, name := range g.order {
		r, routed := g.routes[name]
		if !routed {
			terminals = append(terminals, name)
			continue
		}

		if r.branch == nil {
			if _, exists := g.steps[r.to]; !exists {
				return fail("edge %s -> %s references unregistered step %s", name, r.to, r.to)
			}
			continue
		}

		for _, label := range sortedLabels(r.branch.destinations) {
			to := r.branch.destinations[label]
			if _, exists := g.steps[to]; !exists {
				return fail("branch %s label %s references unregistered step %s", name, label, to)
			}
		}
	}

	if len(terminals) == 0 {
		return fail("no terminal step: every step has an outgoing route")
	}

	visited := make(map[string]bool, len(g.steps))
	if cycle := g.walk(g.entry, visited, make(map[string]bool)); cycle != "" {
		return fail("cycle detected involving step %s", cycle)
	}

	for _, name := range g.order {
		if !visited[name] {
			return fail("step %s is unreachable from entry point %s", name, g.entry)
		}
	}

	return &CompiledGraph[S]{
		name:      g.name,
		observer:  g.observer,
		steps:     maps.Clone(g.steps),
		routes:    cloneRoutes(g.routes),
		order:     slices.Clone(g.order),
		entry:     g.entry,
		terminals: terminals,
	}, nil
}

// walk performs a depth-first traversal marking reachable steps. It returns
// the name of a step participating in a cycle, or "" when the subgraph under
// name is acyclic. The active set tracks the current DFS stack.
func (g *Graph[S]) walk(name string, visited, active map[string]bool) string {
	visited[name] = true
	active[name] = true

	for _, next := range g.successors(name) {
		if active[next] {
			return next
		}
		if visited[next] {
			continue
		}
		if cycle := g.walk(next, visited, active); cycle != "" {
			return cycle
		}
	}

	active[name] = false
	return ""
}

// successors returns the possible next steps after name in deterministic
// order: the fixed successor for an edge, or the branch destinations sorted
// by label.
func (g *Graph[S]) successors(name string) []string {
	r, routed := g.routes[name]
	if !routed {
		return nil
	}

	if r.branch == nil {
		return []string{r.to}
	}

	labels := sortedLabels(r.branch.destinations)
	next := make([]string, 0, len(labels))
	for _, label := range labels {
		next = append(next, r.branch.destinations[label])
	}
	return next
}

func sortedLabels(destinations map[Label]string) []Label {
	return slices.Sorted(maps.Keys(destinations))
}

func cloneRoutes[S any](routes map[string]route[S]) map[string]route[S] {
	cloned := make(map[string]route[S], len(routes))
	for from, r := range routes {
		if r.branch != nil {
			r.branch = &branch[S]{
				decide:       r.branch.decide,
				destinations: maps.Clone(r.branch.destinations),
			}
		}
		cloned[from] = r
	}
	return cloned
}
