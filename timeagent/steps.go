package timeagent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tailored-agentic-units/flowkit/agent"
	"github.com/tailored-agentic-units/flowkit/observability"
	"github.com/tailored-agentic-units/flowkit/tools"
	"github.com/tailored-agentic-units/flowkit/workflow"
)

// Step names in the time-report graph.
const (
	StepGetTime      = "get_time"
	StepGetMonthName = "get_month_name"
	StepFormat       = "format"
	StepIsAM         = "is_AM"
	StepIsPM         = "is_PM"
)

// Labels returned by the meridiem branch decision.
const (
	LabelAM workflow.Label = "AM"
	LabelPM workflow.Label = "PM"
)

// newGetTimeStep builds the tool-augmented step that resolves the current
// time.
//
// Each execution runs a fresh agent loop over a registry holding only the
// get_time tool, bound to the run's timezone, so concurrent runs never see
// each other's binding. The model must answer with a JSON object carrying
// the time and UTC offset; a reply that cannot be decoded fails the step.
func newGetTimeStep(timeAgent agent.Agent, source *TimeSource, systemPrompt string, maxIterations int, observer observability.Observer) workflow.StepFunc[State] {
	return func(ctx context.Context, state State) (State, error) {
		registry := tools.NewRegistry()
		if err := registry.Register(source.Tool(), source.Handler(state.Timezone)); err != nil {
			return state, fmt.Errorf("failed to register %s tool: %w", ToolGetTime, err)
		}

		loop := agent.NewLoop(timeAgent, registry,
			agent.WithSystemPrompt(systemPrompt),
			agent.WithMaxIterations(maxIterations),
			agent.WithObserver(observer),
		)

		prompt := fmt.Sprintf(
			"%s The timezone is %s.\n"+
				`Reply with only a JSON object of the form {"time": "<RFC 3339 datetime>", "utc_offset": "<offset such as -05:00>"}.`,
			state.Prompt, state.Timezone,
		)

		result, err := loop.Run(ctx, prompt)
		if err != nil {
			return state, err
		}

		var reply struct {
			Time      string `json:"time"`
			UTCOffset string `json:"utc_offset"`
		}
		if err := decodeReply(result.Response, &reply); err != nil {
			return state, err
		}

		if reply.Time == "" {
			return state, fmt.Errorf("%w: missing time", ErrMalformedReply)
		}
		if reply.UTCOffset == "" {
			return state, fmt.Errorf("%w: missing utc_offset", ErrMalformedReply)
		}

		parsed, err := time.Parse(time.RFC3339, reply.Time)
		if err != nil {
			return state, fmt.Errorf("%w: unparseable time %q", ErrMalformedReply, reply.Time)
		}

		state.Time = &parsed
		state.UTCOffset = &reply.UTCOffset
		return state, nil
	}
}

// newGetMonthNameStep builds the plain generation step that names the month
// of the resolved time and picks an emoji for it.
func newGetMonthNameStep(monthAgent agent.Agent) workflow.StepFunc[State] {
	return func(ctx context.Context, state State) (State, error) {
		if state.Time == nil {
			return state, fmt.Errorf("%w: time", ErrMissingSlot)
		}

		prompt := fmt.Sprintf(
			"What month is it according to this datetime?: %s\n"+
				`Reply with only a JSON object of the form {"month_name": "<month name>", "month_emoji": "<one emoji>"}.`,
			state.Time.Format(time.RFC3339),
		)

		resp, err := monthAgent.Chat(ctx, prompt)
		if err != nil {
			return state, fmt.Errorf("month agent call failed: %w", err)
		}

		var reply struct {
			MonthName  string `json:"month_name"`
			MonthEmoji string `json:"month_emoji"`
		}
		if err := decodeReply(resp.Content(), &reply); err != nil {
			return state, err
		}

		if reply.MonthName == "" {
			return state, fmt.Errorf("%w: missing month_name", ErrMalformedReply)
		}
		if reply.MonthEmoji == "" {
			return state, fmt.Errorf("%w: missing month_emoji", ErrMalformedReply)
		}

		state.MonthName = &reply.MonthName
		state.MonthEmoji = &reply.MonthEmoji
		return state, nil
	}
}

// formatStep assembles the report from the upstream slots. Every slot must
// be present; the AM and PM flags are set by the terminal steps after the
// meridiem branch routes.
func formatStep(_ context.Context, state State) (State, error) {
	switch {
	case state.Time == nil:
		return state, fmt.Errorf("%w: time", ErrMissingSlot)
	case state.UTCOffset == nil:
		return state, fmt.Errorf("%w: utc_offset", ErrMissingSlot)
	case state.MonthName == nil:
		return state, fmt.Errorf("%w: month_name", ErrMissingSlot)
	case state.MonthEmoji == nil:
		return state, fmt.Errorf("%w: month_emoji", ErrMissingSlot)
	}

	state.Report = &Report{
		CurrentTime: state.Time.Format(time.RFC3339),
		Timezone:    state.Timezone,
		UTCOffset:   *state.UTCOffset,
		MonthName:   *state.MonthName,
		MonthEmoji:  *state.MonthEmoji,
	}
	return state, nil
}

// isAMStep marks the report as morning.
func isAMStep(_ context.Context, state State) (State, error) {
	return flagReport(state, true)
}

// isPMStep marks the report as afternoon.
func isPMStep(_ context.Context, state State) (State, error) {
	return flagReport(state, false)
}

// flagReport sets the AM/PM flags on a copy of the report, so state values
// captured earlier in the run stay unchanged.
func flagReport(state State, am bool) (State, error) {
	if state.Report == nil {
		return state, fmt.Errorf("%w: report", ErrMissingSlot)
	}

	report := *state.Report
	report.AM = am
	report.PM = !am
	state.Report = &report
	return state, nil
}

// meridiem routes on the resolved hour. Noon is afternoon: only hours
// strictly below 12 count as morning.
func meridiem(state State) (workflow.Label, error) {
	if state.Time == nil {
		return "", fmt.Errorf("%w: time", ErrMissingSlot)
	}

	if state.Time.Hour() < 12 {
		return LabelAM, nil
	}
	return LabelPM, nil
}

// decodeReply parses a model reply as JSON, tolerating surrounding
// whitespace and markdown code fences.
func decodeReply(content string, v any) error {
	trimmed := strings.TrimSpace(content)
	if after, found := strings.CutPrefix(trimmed, "```json"); found {
		trimmed = after
	} else if after, found := strings.CutPrefix(trimmed, "```"); found {
		trimmed = after
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	trimmed = strings.TrimSpace(trimmed)

	if err := json.Unmarshal([]byte(trimmed), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return nil
}
