// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	apiclient "sanket/monitor/apiClient"
	"sanket/monitor/appcontext"
	"sanket/monitor/config"
	"sanket/monitor/dashboard"
	"sanket/monitor/generative"
	"sanket/monitor/ingest"
	"sanket/monitor/report"
	"sanket/monitor/stress"
	"sanket/monitor/synthetic"
)

const usage = `Usage: monitor <command> [options]

Commands:
  generate-baseline  write the healthy baseline transaction log
  train-model        learn the baseline distribution and store the model
  inject-stress      sample from the model and inject faults
  audit              print the executive audit of the stress log
  dashboard          serve the health dashboard
  pipeline           run generate-baseline, train-model, inject-stress and audit
  ingest             load CSV logs from the ingest directory into MongoDB
  status             print the summary served by a running dashboard`

var errUsage = errors.New("missing command")

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	if err := run(logger, level, command, args); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
		}
		logger.Error("Application terminated with an error", "error", fmt.Sprintf("%+v", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, level *slog.LevelVar, command string, args []string) error {
	ctx := appcontext.WithLogger(context.Background(), logger)

	cfg, err := config.LoadConfig(ctx, logger, "")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	runID := uuid.NewString()
	ctx = appcontext.WithRunID(ctx, runID)
	logger = appcontext.LoggerFromContext(ctx)

	// The dashboard runs until interrupted, so it is not bound by the timeout.
	if command == "dashboard" {
		return dashboard.RunDashboard(ctx, logger, args, cfg)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	logger.DebugContext(ctx, "Running command", "command", command)

	switch command {
	case "generate-baseline":
		return synthetic.RunGenerateSyntheticData(ctx, logger, args, cfg)
	case "train-model":
		return generative.RunTrain(ctx, logger, args, cfg)
	case "inject-stress":
		return stress.RunInject(ctx, logger, args, cfg)
	case "audit":
		return report.RunAudit(ctx, logger, os.Stdout, args, cfg)
	case "pipeline":
		return runPipeline(ctx, logger, cfg)
	case "ingest":
		return ingest.RunIngest(ctx, logger, args, cfg)
	case "status":
		return apiclient.RunStatus(ctx, logger, os.Stdout, args, cfg)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

// runPipeline runs the four batch stages in order with configured defaults.
func runPipeline(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	stages := []struct {
		name string
		run  func() error
	}{
		{"generate-baseline", func() error { return synthetic.RunGenerateSyntheticData(ctx, logger, nil, cfg) }},
		{"train-model", func() error { return generative.RunTrain(ctx, logger, nil, cfg) }},
		{"inject-stress", func() error { return stress.RunInject(ctx, logger, nil, cfg) }},
		{"audit", func() error { return report.RunAudit(ctx, logger, os.Stdout, nil, cfg) }},
	}

	for _, stage := range stages {
		logger.InfoContext(ctx, "Starting stage", "stage", stage.name)
		if err := stage.run(); err != nil {
			return fmt.Errorf("stage %s: %w", stage.name, err)
		}
	}
	logger.InfoContext(ctx, "Pipeline completed")
	return nil
}
