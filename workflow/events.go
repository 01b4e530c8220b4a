package workflow

import "github.com/tailored-agentic-units/flowkit/observability"

const (
	// Run lifecycle
	EventRunStart    observability.EventType = "run.start"
	EventRunComplete observability.EventType = "run.complete"
	EventRunFail     observability.EventType = "run.fail"

	// Step execution
	EventStepStart    observability.EventType = "step.start"
	EventStepComplete observability.EventType = "step.complete"

	// Branch routing
	EventBranchEvaluate observability.EventType = "branch.evaluate"
	EventBranchRoute    observability.EventType = "branch.route"
)
