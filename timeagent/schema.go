package timeagent

import "time"

// State is the shared value threaded through the time-report graph.
//
// The schema is closed: runs start from Inputs, and every slot a step may
// write is declared here. Optional slots are pointers with nil meaning the
// slot has not been written yet. Steps copy Report before flagging it, so a
// State value captured mid-run is never mutated by later steps.
type State struct {
	// Prompt is the user question driving the time lookup.
	Prompt string `json:"prompt"`

	// Timezone is the IANA timezone name the report is scoped to.
	Timezone string `json:"timezone"`

	// Time is the resolved current time, written by get_time.
	Time *time.Time `json:"time,omitempty"`

	// UTCOffset is the offset reported alongside Time, written by get_time.
	UTCOffset *string `json:"utc_offset,omitempty"`

	// MonthName is the month's name, written by get_month_name.
	MonthName *string `json:"month_name,omitempty"`

	// MonthEmoji is the month's representative emoji, written by
	// get_month_name.
	MonthEmoji *string `json:"month_emoji,omitempty"`

	// Report is the assembled final answer, written by format and flagged
	// by the terminal steps.
	Report *Report `json:"report,omitempty"`
}

// Report is the final answer handed back to callers.
type Report struct {
	CurrentTime string `json:"current_time"`
	Timezone    string `json:"timezone"`
	UTCOffset   string `json:"utc_offset"`
	MonthName   string `json:"month_name"`
	MonthEmoji  string `json:"month_emoji"`
	AM          bool   `json:"AM"`
	PM          bool   `json:"PM"`
}

// Inputs are the caller-supplied slots a run starts from.
type Inputs struct {
	// Prompt is the user question. Empty selects DefaultPrompt.
	Prompt string `json:"prompt" mapstructure:"prompt"`

	// Timezone is the IANA timezone name to report on. Required.
	Timezone string `json:"timezone" mapstructure:"timezone"`
}
