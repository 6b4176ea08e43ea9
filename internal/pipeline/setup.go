package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/srsforge/internal/config"
	"github.com/phrazzld/srsforge/internal/platform/llmclient"
	"github.com/phrazzld/srsforge/internal/provision"
	"github.com/phrazzld/srsforge/internal/srs"
	"github.com/phrazzld/srsforge/internal/store"
	"github.com/phrazzld/srsforge/internal/tracing"
)

// DepsFromConfig builds the pipeline collaborators described by cfg.
// artifacts and traces may be nil. The returned shutdown flushes exported
// spans and must be called once the pipeline is no longer used.
func DepsFromConfig(
	ctx context.Context,
	cfg *config.Config,
	artifacts ArtifactSink,
	traces store.TraceStore,
	logger *slog.Logger,
) (Deps, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if logger == nil {
		logger = slog.Default()
	}

	client, err := llmclient.New(ctx, logger, cfg.LLM)
	if err != nil {
		return Deps{}, noop, fmt.Errorf("failed to create LLM client: %w", err)
	}

	python := provision.NewPython(provision.ExecRunner{}, cfg.Pipeline.PythonBin, logger)
	deps := Deps{
		LLM:       client,
		Analyzer:  srs.NewAnalyzer(client, logger),
		Tests:     python,
		Artifacts: artifacts,
		Logger:    logger,
	}
	if cfg.Pipeline.ProvisionVenv {
		deps.Environment = python
	}
	if cfg.Pipeline.ProvisionDatabase {
		db, err := provision.NewDatabase(provision.DefaultDatabaseConfig(), logger)
		if err != nil {
			// No container engine. Runs go on without a database and
			// log the skip; an Ensure failure still fails the run.
			logger.Warn("database provisioning unavailable", "error", err)
			deps.DatabaseUnavailable = err
		} else {
			deps.Database = db
		}
	}

	var recorders []tracing.Recorder
	if traces != nil && cfg.Tracing.StoreEnabled {
		recorders = append(recorders, tracing.NewStoreRecorder(traces, logger))
	}
	shutdown := noop
	if cfg.Tracing.OTLPEndpoint != "" {
		tp, err := tracing.NewProvider(ctx, cfg.Tracing.ServiceName, cfg.Tracing.OTLPEndpoint)
		if err != nil {
			return Deps{}, noop, fmt.Errorf("failed to create tracer provider: %w", err)
		}
		recorders = append(recorders, tracing.NewOTelRecorder(tp))
		shutdown = tp.Shutdown
	}
	if len(recorders) > 0 {
		deps.Recorder = tracing.Multi(recorders...)
	}

	return deps, shutdown, nil
}

// ExecutorConfigFrom derives an ExecutorConfig from the pipeline settings.
func ExecutorConfigFrom(cfg config.PipelineConfig) ExecutorConfig {
	return ExecutorConfig{
		WorkspaceDir: cfg.WorkspaceDir,
		Concurrency:  cfg.GenerationConcurrency,
		MaxSteps:     cfg.MaxSteps,
	}
}
