package timeagent

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mitchellh/mapstructure"

	"github.com/tailored-agentic-units/flowkit/agent"
	"github.com/tailored-agentic-units/flowkit/core/config"
	"github.com/tailored-agentic-units/flowkit/observability"
	"github.com/tailored-agentic-units/flowkit/workflow"
)

// Registry names for the pipeline's agents.
const (
	timeAgentName  = "time"
	monthAgentName = "month"
)

// Pipeline is a compiled time-report graph bound to its collaborators.
//
// A Pipeline is immutable after New and safe for concurrent Run calls:
// each run threads its own State value and drives its own agent loop.
type Pipeline struct {
	cfg      Config
	observer observability.Observer
	agents   *agent.Registry
	source   *TimeSource
	client   *http.Client

	timeAgent  agent.Agent
	monthAgent agent.Agent

	graph *workflow.CompiledGraph[State]
}

// Option customizes pipeline construction, mainly to inject test doubles.
type Option func(*Pipeline)

// WithObserver injects an observer, bypassing registry resolution.
func WithObserver(observer observability.Observer) Option {
	return func(p *Pipeline) {
		p.observer = observer
	}
}

// WithAgents injects the time and month agents directly instead of
// building them from configuration. A nil agent keeps the configured one.
func WithAgents(timeAgent, monthAgent agent.Agent) Option {
	return func(p *Pipeline) {
		p.timeAgent = timeAgent
		p.monthAgent = monthAgent
	}
}

// WithTimeSource injects the worldtime data source.
func WithTimeSource(source *TimeSource) Option {
	return func(p *Pipeline) {
		p.source = source
	}
}

// WithHTTPClient sets the HTTP client the default time source uses.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) {
		p.client = client
	}
}

// New builds and compiles the time-report pipeline.
//
// The passed config is overlaid on DefaultConfig. Agents not injected
// through options are registered in an agent registry and instantiated
// from their merged configurations. The graph is compiled once; the
// returned Pipeline is ready for concurrent runs.
func New(cfg *Config, opts ...Option) (*Pipeline, error) {
	merged := DefaultConfig()
	if cfg != nil {
		merged.Merge(cfg)
	}

	p := &Pipeline{
		cfg:    merged,
		agents: agent.NewRegistry(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.observer == nil {
		observer, err := observability.GetObserver(merged.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		p.observer = observer
	}

	if err := p.buildAgents(); err != nil {
		return nil, err
	}

	if p.source == nil {
		p.source = NewTimeSource(merged.WorldTimeURL, p.client)
	}

	graph, err := p.buildGraph()
	if err != nil {
		return nil, err
	}
	p.graph = graph

	return p, nil
}

// buildAgents registers the configured agents and instantiates any that
// construction options did not inject.
func (p *Pipeline) buildAgents() error {
	entries := []struct {
		name string
		cfg  *config.AgentConfig
		dst  *agent.Agent
	}{
		{timeAgentName, p.cfg.TimeAgent, &p.timeAgent},
		{monthAgentName, p.cfg.MonthAgent, &p.monthAgent},
	}

	for _, e := range entries {
		if *e.dst != nil {
			continue
		}

		var agentCfg config.AgentConfig
		if e.cfg != nil {
			agentCfg = *e.cfg
		}

		if err := p.agents.Register(e.name, agentCfg); err != nil {
			return fmt.Errorf("failed to register %s agent: %w", e.name, err)
		}

		built, err := p.agents.Get(e.name)
		if err != nil {
			return err
		}
		*e.dst = built
	}

	return nil
}

func (p *Pipeline) buildGraph() (*workflow.CompiledGraph[State], error) {
	g := workflow.NewGraphWithObserver[State](workflow.Config{Name: p.cfg.Name}, p.observer)

	systemPrompt := ""
	if p.cfg.TimeAgent != nil {
		systemPrompt = p.cfg.TimeAgent.SystemPrompt
	}

	steps := []struct {
		name string
		step workflow.Step[State]
	}{
		{StepGetTime, newGetTimeStep(p.timeAgent, p.source, systemPrompt, p.cfg.MaxIterations, p.observer)},
		{StepGetMonthName, newGetMonthNameStep(p.monthAgent)},
		{StepFormat, workflow.StepFunc[State](formatStep)},
		{StepIsAM, workflow.StepFunc[State](isAMStep)},
		{StepIsPM, workflow.StepFunc[State](isPMStep)},
	}

	for _, s := range steps {
		if err := g.AddStep(s.name, s.step); err != nil {
			return nil, err
		}
	}

	if err := g.AddEdge(StepGetTime, StepGetMonthName); err != nil {
		return nil, err
	}
	if err := g.AddEdge(StepGetMonthName, StepFormat); err != nil {
		return nil, err
	}
	if err := g.AddBranch(StepFormat, meridiem, map[workflow.Label]string{
		LabelAM: StepIsAM,
		LabelPM: StepIsPM,
	}); err != nil {
		return nil, err
	}
	if err := g.SetEntryPoint(StepGetTime); err != nil {
		return nil, err
	}

	return g.Compile()
}

// Run executes the pipeline once for the given inputs.
//
// An empty prompt selects DefaultPrompt; the timezone is required. On
// failure the error carries the failing step: unwrap with errors.As into
// *workflow.StepError[State] or *workflow.BranchError.
func (p *Pipeline) Run(ctx context.Context, inputs Inputs) (State, error) {
	if inputs.Timezone == "" {
		return State{}, ErrEmptyTimezone
	}

	if inputs.Prompt == "" {
		inputs.Prompt = DefaultPrompt
	}

	return p.graph.Run(ctx, State{
		Prompt:   inputs.Prompt,
		Timezone: inputs.Timezone,
	})
}

// RunValues executes the pipeline from a slot name to value mapping.
//
// The schema is closed: values may fill the declared input slots only, so
// an unknown key is an ErrInvalidInputs error rather than a silently
// carried extra.
func (p *Pipeline) RunValues(ctx context.Context, values map[string]any) (State, error) {
	var inputs Inputs

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &inputs,
		ErrorUnused: true,
	})
	if err != nil {
		return State{}, fmt.Errorf("failed to build inputs decoder: %w", err)
	}

	if err := decoder.Decode(values); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidInputs, err)
	}

	return p.Run(ctx, inputs)
}

// Name returns the pipeline's graph name.
func (p *Pipeline) Name() string {
	return p.cfg.Name
}

// Agents lists the agents the pipeline registered from configuration,
// with their protocol capabilities. Injected agents do not appear.
func (p *Pipeline) Agents() []agent.AgentInfo {
	return p.agents.List()
}

// Graph exposes the compiled graph for inspection.
func (p *Pipeline) Graph() *workflow.CompiledGraph[State] {
	return p.graph
}
