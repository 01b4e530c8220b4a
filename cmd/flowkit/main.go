package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tailored-agentic-units/flowkit/observability"
	"github.com/tailored-agentic-units/flowkit/server"
	"github.com/tailored-agentic-units/flowkit/timeagent"
	"github.com/tailored-agentic-units/flowkit/workflow"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configFile = flag.String("config", "", "Path to pipeline config JSON file")
		timezone   = flag.String("timezone", timeagent.DefaultTimezone, "IANA timezone to report on")
		prompt     = flag.String("prompt", "", "Question driving the time lookup")
		serveAddr  = flag.String("serve", "", "Serve the workflow API on this address instead of running once")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	cfg := timeagent.DefaultConfig()
	if *configFile != "" {
		loaded, err := timeagent.LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			return 2
		}
		cfg = *loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serveAddr != "" {
		return serve(ctx, logger, &cfg, *serveAddr)
	}

	return runOnce(ctx, logger, &cfg, *timezone, *prompt)
}

// runOnce executes the pipeline a single time and prints the report JSON.
func runOnce(ctx context.Context, logger *slog.Logger, cfg *timeagent.Config, timezone, prompt string) int {
	pipeline, err := timeagent.New(cfg, timeagent.WithObserver(observability.NewSlogObserver(logger)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build pipeline: %v\n", err)
		return 2
	}

	state, err := pipeline.Run(ctx, timeagent.Inputs{
		Prompt:   prompt,
		Timezone: timezone,
	})
	if err != nil {
		var stepErr *workflow.StepError[timeagent.State]
		if errors.As(err, &stepErr) {
			fmt.Fprintf(os.Stderr, "Run failed at step %s: %v\n", stepErr.Step, stepErr.Err)
		} else {
			fmt.Fprintf(os.Stderr, "Run failed: %v\n", err)
		}
		return 1
	}

	report, err := json.MarshalIndent(state.Report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode report: %v\n", err)
		return 1
	}

	fmt.Println(string(report))
	return 0
}

// serve runs the workflow API until the context is cancelled by a signal.
func serve(ctx context.Context, logger *slog.Logger, cfg *timeagent.Config, addr string) int {
	registry := prometheus.NewRegistry()
	promObserver, err := observability.NewPrometheusObserver(registry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create metrics observer: %v\n", err)
		return 2
	}

	observer := observability.NewMultiObserver(
		observability.NewSlogObserver(logger),
		promObserver,
	)

	pipeline, err := timeagent.New(cfg, timeagent.WithObserver(observer))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build pipeline: %v\n", err)
		return 2
	}

	handler, err := server.NewHandler(pipeline,
		server.WithObserver(observer),
		server.WithRegistry(registry),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build handler: %v\n", err)
		return 2
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving workflow API", "addr", addr, "graph", pipeline.Name())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Shutdown failed: %v\n", err)
		return 1
	}

	logger.Info("server stopped")
	return 0
}
