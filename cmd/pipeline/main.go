// Command pipeline runs the full batch: import sources, reconcile the
// macro series, merge the failure panel, fit the prediction models, and
// export the summary artifacts. Fatal errors exit non-zero with the
// missing artifact named; recoverable conditions surface as warning
// counts in the run summary.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"fbpanel/internal/config"
	"fbpanel/internal/operations"
)

func main() {
	configFile := flag.String("config", "pipeline.yaml", "configuration file (optional)")
	sourceDir := flag.String("source", "", "override source directory")
	outputDir := flag.String("output", "", "override output directory")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("configuration failed", "error", err)
		os.Exit(1)
	}
	if *sourceDir != "" {
		cfg.Paths.SourceDir = *sourceDir
	}
	if *outputDir != "" {
		cfg.Paths.OutputDir = *outputDir
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		logger.Error("path resolution failed", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("directory creation failed", "error", err)
		os.Exit(1)
	}

	runID := uuid.NewString()
	startedAt := time.Now()
	logger.Info("pipeline run starting",
		slog.String("run_id", runID),
		slog.String("source_dir", paths.SourceDir),
		slog.String("output_dir", paths.OutputDir))

	state := operations.NewState(cfg, paths)
	manager := operations.NewManager(logger)
	manager.Register(operations.NewImportStep(logger))
	manager.Register(operations.NewReconcileStep(logger))
	manager.Register(operations.NewMergeStep(logger))
	manager.Register(operations.NewModelStep(logger))
	manager.Register(operations.NewSummaryStep(logger))
	manager.Register(operations.NewExportStep(logger))
	manager.Register(operations.NewStoreStep(logger))

	runErr := manager.Run(context.Background(), state)

	summary := manager.Summary(runID, startedAt, state.Warnings)
	if err := operations.WriteSummary(paths.RunSummaryJSON, summary); err != nil {
		logger.Error("run summary write failed", "error", err)
	}

	if runErr != nil {
		logger.Error("pipeline run failed", "error", runErr)
		os.Exit(1)
	}
	logger.Info("pipeline run completed",
		slog.String("run_id", runID),
		slog.Duration("duration", time.Since(startedAt)))
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
