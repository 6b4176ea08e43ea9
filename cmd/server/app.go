package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/srsforge/internal/api"
	"github.com/phrazzld/srsforge/internal/config"
	"github.com/phrazzld/srsforge/internal/events"
	"github.com/phrazzld/srsforge/internal/pipeline"
	"github.com/phrazzld/srsforge/internal/platform/postgres"
	"github.com/phrazzld/srsforge/internal/service"
	"github.com/phrazzld/srsforge/internal/service/auth"
	"github.com/phrazzld/srsforge/internal/store"
	"github.com/phrazzld/srsforge/internal/task"
)

// application holds the shared dependencies so they can be released
// together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	runStore      store.RunStore
	artifactStore store.ArtifactStore
	clientStore   store.ClientStore
	traceStore    store.TraceStore
	taskStore     task.TaskStore

	jwtService    auth.JWTService
	authenticator *auth.Authenticator
	runService    service.RunService

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner

	shutdownTracing func(context.Context) error
}

// newApplication wires stores, the pipeline, the task runner and the
// services on top of an open database.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	runStore := postgres.NewPostgresRunStore(db, logger)
	artifactStore := postgres.NewPostgresArtifactStore(db, logger)
	clientStore := postgres.NewPostgresClientStore(db, logger)
	traceStore := postgres.NewPostgresTraceStore(db, logger)
	app.runStore, app.artifactStore, app.clientStore, app.traceStore = runStore, artifactStore, clientStore, traceStore
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	app.authenticator, err = auth.NewAuthenticator(clientStore, auth.NewBcryptVerifier(), app.jwtService, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	deps, shutdown, err := pipeline.DepsFromConfig(ctx, cfg, artifactStore, traceStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up pipeline: %w", err)
	}
	app.shutdownTracing = shutdown
	executor := pipeline.NewExecutor(pipeline.ExecutorConfigFrom(cfg.Pipeline), deps)

	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		QueueSize:    cfg.Task.QueueSize,
		WorkerCount:  cfg.Task.WorkerCount,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
	}, logger)
	taskFactory := task.NewPipelineTaskFactory(runStore, executor, logger)
	app.taskRunner.RegisterFactory(task.TaskTypePipelineRun, taskFactory)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(task.NewTaskFactoryEventHandler(taskFactory, app.taskRunner, logger))

	app.runService, err = service.NewRunService(
		service.NewRunRepositoryAdapter(runStore, db),
		artifactStore,
		app.eventEmitter,
		cfg.Pipeline.ProjectName,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run service: %w", err)
	}

	logger.Info("application initialized",
		"llm_provider", cfg.LLM.Provider,
		"model", cfg.LLM.ModelName,
		"workspace_dir", cfg.Pipeline.WorkspaceDir)
	return app, nil
}

// router builds the HTTP handler tree.
func (app *application) router() http.Handler {
	deps := api.RouterDeps{
		Auth:       api.NewAuthHandler(app.authenticator, app.logger),
		Runs:       api.NewRunHandler(app.runService, app.logger),
		Manifests:  api.NewManifestHandler(app.logger),
		JWTService: app.jwtService,
		Logger:     app.logger,
	}
	if app.db != nil {
		deps.DB = app.db
	}
	return api.NewRouter(deps)
}

// Run starts the task runner, re-queues unfinished tasks and serves HTTP
// until ctx is cancelled. Resources are released before it returns.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}
	if err := app.taskRunner.Recover(ctx); err != nil {
		// Unrecovered tasks are retried by the stuck-task monitor.
		app.logger.Error("failed to recover tasks", "error", err)
	}

	if err := app.startHTTPServer(ctx, app.router()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background work and closes the database.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := app.shutdownTracing(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			app.logger.Error("error flushing traces", "error", err)
		}
		cancel()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
