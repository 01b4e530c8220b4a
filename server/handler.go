// Package server exposes a compiled pipeline over HTTP.
//
// The serving surface is a chi router mounting a single Connect RPC unary
// procedure plus health and metrics endpoints. The wire contract of the Run
// procedure is the caller-facing API of the engine: a slot name to value
// mapping in, the final state out, with run failures mapped to Connect error
// codes carrying the failing step name.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/flowkit/observability"
	"github.com/tailored-agentic-units/flowkit/timeagent"
	"github.com/tailored-agentic-units/flowkit/workflow"
)

// RunProcedure is the Connect RPC procedure path the workflow runs under.
const RunProcedure = "/flowkit.v1.WorkflowService/Run"

// FailingStepHeader is the response header naming the step a failed run
// stopped at. It is set alongside the Connect error so callers get the step
// name without parsing the error message.
const FailingStepHeader = "Flowkit-Failing-Step"

// Runner executes one workflow run from caller-supplied slot values.
// *timeagent.Pipeline satisfies it.
type Runner interface {
	Name() string
	RunValues(ctx context.Context, values map[string]any) (timeagent.State, error)
}

// Option customizes handler construction.
type Option func(*handler)

// WithObserver injects the observer request events flow through. The default
// is the no-op observer.
func WithObserver(observer observability.Observer) Option {
	return func(h *handler) {
		h.observer = observer
	}
}

// WithRegistry sets the Prometheus registry the /metrics endpoint serves.
// The default is a fresh empty registry; pass the registry a
// PrometheusObserver was built against to expose pipeline metrics.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(h *handler) {
		h.registry = registry
	}
}

type handler struct {
	runner   Runner
	observer observability.Observer
	registry *prometheus.Registry
}

// NewHandler builds the HTTP handler serving the given runner.
//
// Routes:
//   - POST RunProcedure — Connect unary Run: structpb.Struct in, out
//   - GET /healthz — liveness probe
//   - GET /metrics — Prometheus exposition for the configured registry
func NewHandler(runner Runner, opts ...Option) (http.Handler, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner is required")
	}

	h := &handler{runner: runner}
	for _, opt := range opts {
		opt(h)
	}

	if h.observer == nil {
		h.observer = observability.NoOpObserver{}
	}

	if h.registry == nil {
		h.registry = prometheus.NewRegistry()
	}

	router := chi.NewRouter()
	router.Get("/healthz", h.healthz)
	router.Handle("/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
	router.Handle(RunProcedure, connect.NewUnaryHandler(RunProcedure, h.run))
	return router, nil
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// run is the Connect unary procedure driving one workflow run. The request
// struct is the initial slot mapping; the response struct is the final state.
func (h *handler) run(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	start := time.Now()
	values := req.Msg.AsMap()

	h.emit(ctx, EventRequestStart, observability.LevelVerbose, map[string]any{
		"graph": h.runner.Name(),
		"slots": len(values),
	})

	state, err := h.runner.RunValues(ctx, values)
	if err != nil {
		connErr := runError(err)
		h.emit(ctx, EventRequestFail, observability.LevelError, map[string]any{
			"graph":       h.runner.Name(),
			"code":        connErr.Code().String(),
			"step":        connErr.Meta().Get(FailingStepHeader),
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil, connErr
	}

	payload, err := stateStruct(state)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to encode final state: %w", err))
	}

	h.emit(ctx, EventRequestComplete, observability.LevelInfo, map[string]any{
		"graph":       h.runner.Name(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return connect.NewResponse(payload), nil
}

func (h *handler) emit(ctx context.Context, eventType observability.EventType, level observability.Level, data map[string]any) {
	h.observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "server",
		Data:      data,
	})
}

// runError maps a run failure onto a Connect error. Step and branch failures
// carry the failing step name in FailingStepHeader; input validation maps to
// invalid-argument so callers can tell a bad request from a broken run.
func runError(err error) *connect.Error {
	var stepErr *workflow.StepError[timeagent.State]
	var branchErr *workflow.BranchError

	switch {
	case errors.Is(err, timeagent.ErrInvalidInputs), errors.Is(err, timeagent.ErrEmptyTimezone):
		return connect.NewError(connect.CodeInvalidArgument, err)

	case errors.As(err, &stepErr):
		code := connect.CodeInternal
		if errors.Is(err, context.Canceled) {
			code = connect.CodeCanceled
		} else if errors.Is(err, context.DeadlineExceeded) {
			code = connect.CodeDeadlineExceeded
		}
		connErr := connect.NewError(code, err)
		connErr.Meta().Set(FailingStepHeader, stepErr.Step)
		return connErr

	case errors.As(err, &branchErr):
		connErr := connect.NewError(connect.CodeInternal, err)
		connErr.Meta().Set(FailingStepHeader, branchErr.Step)
		return connErr

	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// stateStruct converts the final state into a structpb value through its JSON
// form, so the wire shape matches the state's declared JSON schema exactly.
func stateStruct(state timeagent.State) (*structpb.Struct, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}

	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}

	return structpb.NewStruct(values)
}
