// Package workflow provides a compile-validated workflow execution engine for
// Go-native orchestration pipelines.
//
// A workflow is a directed graph of named steps with exactly one outgoing route
// per non-terminal step: either a fixed successor or a branch that selects a
// destination from a label table. The graph is a chain with forks, never a join;
// sibling branches are alternatives, not parallel work.
//
// # Core Components
//
// Step - Interface for computation steps that transform a typed state value
//
// Graph - Mutable builder for registering steps, edges, and branches
//
// CompiledGraph - Immutable, structurally validated graph ready to run
//
// Label - Tagged variant returned by a branch decision and matched through the
// branch's compile-validated lookup table
//
// # Typed State
//
// The engine is generic over the caller's state type. Steps receive the current
// state value and return the updated one; the engine never inspects state
// content, so the schema is whatever struct the caller declares:
//
//	type ReviewState struct {
//	    Document string
//	    Score    *int
//	}
//
//	graph, err := workflow.NewGraph[ReviewState](cfg)
//	graph.AddStep("score", scoreStep)
//	graph.AddStep("publish", publishStep)
//	graph.AddStep("reject", rejectStep)
//	graph.AddBranch("score", decide, map[workflow.Label]string{
//	    "accept":  "publish",
//	    "decline": "reject",
//	})
//	graph.SetEntryPoint("score")
//	compiled, err := graph.Compile()
//	final, err := compiled.Run(ctx, ReviewState{Document: doc})
//
// # Compilation
//
// Compile is the only place structural errors surface. It verifies that the
// entry point is set and registered, that every route destination names a
// registered step, that at least one terminal step exists, that every step is
// reachable from the entry point, and that the graph is acyclic. A compiled
// graph never fails structurally at run time and is safe to share read-only
// across concurrent runs.
//
// # Execution
//
// Run drives a single run from the entry point to a terminal step, executing
// each step at most once. Step failures are fatal to the run: the engine does
// not retry and returns a StepError naming the failing step, with the state as
// of the last successful step attached for diagnostics. Branch decisions are
// evaluated against the just-updated state; a decision returning a label
// missing from the branch table fails the run with a BranchError.
//
// # Observer Integration
//
// Execution milestones are emitted through the observability package, enabling
// structured logs and metrics without retrofit friction. Use NoOpObserver when
// observability is not needed.
package workflow
