package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/events"
	"github.com/phrazzld/srsforge/internal/platform/logger"
	"github.com/phrazzld/srsforge/internal/store"
)

// Paging limits for ListRuns.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// RunRepository defines the run persistence the service layer needs.
type RunRepository interface {
	Create(ctx context.Context, run *domain.Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.Run, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RunStatus) error

	// WithTx returns a repository bound to tx.
	WithTx(tx *sql.Tx) RunRepository

	// DB returns the underlying database connection
	DB() *sql.DB
}

// ArtifactLister lists the artifacts recorded for a run.
type ArtifactLister interface {
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*domain.Artifact, error)
}

// RunService accepts SRS documents and reports on the resulting runs.
type RunService interface {
	// CreateRunAndEnqueue stores a pending run for the SRS content and emits
	// a RunRequested event so the pipeline picks it up.
	CreateRunAndEnqueue(ctx context.Context, clientID uuid.UUID, srsName, content string) (*domain.Run, error)

	// GetRun returns the run if it belongs to clientID.
	GetRun(ctx context.Context, clientID, runID uuid.UUID) (*domain.Run, error)

	// ListRuns returns the client's runs, newest first.
	ListRuns(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.Run, error)

	// ListArtifacts returns the files generated by a run the client owns.
	ListArtifacts(ctx context.Context, clientID, runID uuid.UUID) ([]*domain.Artifact, error)
}

type runServiceImpl struct {
	runs         RunRepository
	artifacts    ArtifactLister
	eventEmitter events.EventEmitter
	projectName  string
	logger       *slog.Logger
}

// NewRunService creates a new RunService. projectName names the generated
// project directory of every run.
func NewRunService(
	runs RunRepository,
	artifacts ArtifactLister,
	eventEmitter events.EventEmitter,
	projectName string,
	logger *slog.Logger,
) (RunService, error) {
	if runs == nil {
		return nil, newRunServiceError("create_service", "runs cannot be nil", nil)
	}
	if artifacts == nil {
		return nil, newRunServiceError("create_service", "artifacts cannot be nil", nil)
	}
	if eventEmitter == nil {
		return nil, newRunServiceError("create_service", "eventEmitter cannot be nil", nil)
	}
	if projectName == "" {
		return nil, newRunServiceError("create_service", "projectName cannot be empty", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &runServiceImpl{
		runs:         runs,
		artifacts:    artifacts,
		eventEmitter: eventEmitter,
		projectName:  projectName,
		logger:       logger.With("component", "run_service"),
	}, nil
}

// CreateRunAndEnqueue implements RunService. The run is committed before the
// event is emitted; if emitting fails the run is marked failed.
func (s *runServiceImpl) CreateRunAndEnqueue(
	ctx context.Context,
	clientID uuid.UUID,
	srsName string,
	content string,
) (*domain.Run, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	run, err := domain.NewRun(clientID, srsName, content, s.projectName)
	if err != nil {
		log.Warn("invalid run request", "error", err, "client_id", clientID)
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.runs.DB(), func(ctx context.Context, tx *sql.Tx) error {
		if err := s.runs.WithTx(tx).Create(ctx, run); err != nil {
			log.Error("failed to create run in transaction",
				"error", err,
				"client_id", clientID,
				"run_id", run.ID)
			return newRunServiceError("create_run", "failed to save run to database", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	event, err := events.NewRunRequested(run.ID, clientID)
	if err != nil {
		s.failRun(ctx, run)
		return nil, newRunServiceError("create_run", "failed to create event", err)
	}
	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit run requested event",
			"error", err,
			"run_id", run.ID,
			"event_id", event.ID)
		s.failRun(ctx, run)
		return nil, newRunServiceError("create_run", "failed to enqueue run", err)
	}

	log.Info("run accepted",
		"run_id", run.ID,
		"client_id", clientID,
		"srs_name", srsName,
		"event_id", event.ID)
	return run, nil
}

func (s *runServiceImpl) failRun(ctx context.Context, run *domain.Run) {
	if err := s.runs.UpdateStatus(context.WithoutCancel(ctx), run.ID, domain.RunStatusFailed); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to mark run as failed",
			"error", err,
			"run_id", run.ID)
		return
	}
	run.Status = domain.RunStatusFailed
}

// GetRun implements RunService.
func (s *runServiceImpl) GetRun(ctx context.Context, clientID, runID uuid.UUID) (*domain.Run, error) {
	run, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return nil, ErrRunNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve run", "error", err, "run_id", runID)
		return nil, newRunServiceError("get_run", "failed to retrieve run", err)
	}
	if run.ClientID != clientID {
		logger.FromContextOrDefault(ctx, s.logger).Warn("run requested by another client",
			"run_id", runID,
			"client_id", clientID)
		return nil, ErrNotOwned
	}
	return run, nil
}

// ListRuns implements RunService. A non-positive limit uses DefaultListLimit;
// limits above MaxListLimit are capped.
func (s *runServiceImpl) ListRuns(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.Run, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	runs, err := s.runs.ListByClient(ctx, clientID, limit, offset)
	if err != nil {
		return nil, newRunServiceError("list_runs", "failed to list runs", err)
	}
	return runs, nil
}

// ListArtifacts implements RunService.
func (s *runServiceImpl) ListArtifacts(ctx context.Context, clientID, runID uuid.UUID) ([]*domain.Artifact, error) {
	if _, err := s.GetRun(ctx, clientID, runID); err != nil {
		return nil, err
	}
	artifacts, err := s.artifacts.ListByRun(ctx, runID)
	if err != nil {
		return nil, newRunServiceError("list_artifacts", "failed to list artifacts", err)
	}
	return artifacts, nil
}
