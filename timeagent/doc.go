// Package timeagent ships the time-report pipeline built on the workflow
// engine.
//
// A tool-calling agent resolves the current time for an IANA timezone
// through a worldtime API, a second agent names the month and picks an
// emoji for it, and a branch marks the assembled report as morning or
// afternoon. The pipeline demonstrates both generation step shapes the
// engine supports: tool-augmented (get_time runs the agent tool loop) and
// plain (get_month_name is a single chat call).
//
// Basic usage:
//
//	pipeline, err := timeagent.New(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	state, err := pipeline.Run(ctx, timeagent.Inputs{
//	    Timezone: "America/New_York",
//	})
//	if err != nil {
//	    var stepErr *workflow.StepError[timeagent.State]
//	    if errors.As(err, &stepErr) {
//	        log.Fatalf("failed at %s: %v", stepErr.Step, stepErr.Err)
//	    }
//	    log.Fatal(err)
//	}
//
//	fmt.Println(state.Report.CurrentTime, state.Report.MonthEmoji)
package timeagent
