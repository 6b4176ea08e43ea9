package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/platform/logger"
	"github.com/phrazzld/srsforge/internal/store"
)

// PostgresRunStore implements the store.RunStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRunStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRunStore creates a new PostgreSQL implementation of the RunStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresRunStore(db store.DBTX, logger *slog.Logger) *PostgresRunStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRunStore{
		db:     db,
		logger: logger.With(slog.String("component", "run_store")),
	}
}

var _ store.RunStore = (*PostgresRunStore)(nil)

const runColumns = `id, client_id, srs_name, srs_content, project_name, status,
	current_node, logs, errors, created_at, updated_at`

// Create implements store.RunStore.Create.
// Returns store.ErrInvalidEntity if the client does not exist.
func (s *PostgresRunStore) Create(ctx context.Context, run *domain.Run) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := run.Validate(); err != nil {
		log.Warn("run validation failed during create",
			slog.String("error", err.Error()),
			slog.String("run_id", run.ID.String()))
		return err
	}

	logs, errs, err := encodeLines(run.Logs, run.Errors)
	if err != nil {
		return err
	}

	query := `INSERT INTO runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = s.db.ExecContext(ctx, query,
		run.ID,
		run.ClientID,
		run.SRSName,
		run.SRSContent,
		run.ProjectName,
		string(run.Status),
		run.CurrentNode,
		logs,
		errs,
		run.CreatedAt,
		run.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during run creation",
				slog.String("run_id", run.ID.String()),
				slog.String("client_id", run.ClientID.String()))
			return fmt.Errorf("%w: client with ID %s not found", store.ErrInvalidEntity, run.ClientID)
		}
		log.Error("failed to create run",
			slog.String("error", err.Error()),
			slog.String("run_id", run.ID.String()))
		return MapError(err)
	}

	log.Info("run created successfully",
		slog.String("run_id", run.ID.String()),
		slog.String("client_id", run.ClientID.String()))
	return nil
}

// GetByID implements store.RunStore.GetByID.
// Returns store.ErrRunNotFound if the run does not exist.
func (s *PostgresRunStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + runColumns + ` FROM runs WHERE id = $1`
	run, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("run not found", slog.String("run_id", id.String()))
			return nil, store.ErrRunNotFound
		}
		log.Error("failed to get run by ID",
			slog.String("error", err.Error()),
			slog.String("run_id", id.String()))
		return nil, err
	}
	return run, nil
}

// ListByClient implements store.RunStore.ListByClient.
func (s *PostgresRunStore) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.Run, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + runColumns + ` FROM runs
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := s.db.QueryContext(ctx, query, clientID, limit, offset)
	if err != nil {
		log.Error("failed to list runs",
			slog.String("error", err.Error()),
			slog.String("client_id", clientID.String()))
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := []*domain.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// UpdateStatus implements store.RunStore.UpdateStatus.
// Returns store.ErrRunNotFound if the run does not exist.
func (s *PostgresRunStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RunStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.Valid() {
		log.Warn("invalid run status", slog.String("run_id", id.String()), slog.String("status", string(status)))
		return domain.ErrInvalidRunStatus
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update run status",
			slog.String("error", err.Error()),
			slog.String("run_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrRunNotFound); err != nil {
		return err
	}

	log.Debug("run status updated",
		slog.String("run_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// UpdateProgress implements store.RunStore.UpdateProgress.
// Returns store.ErrRunNotFound if the run does not exist.
func (s *PostgresRunStore) UpdateProgress(ctx context.Context, id uuid.UUID, currentNode string, logs, errs []string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	logsJSON, errsJSON, err := encodeLines(logs, errs)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE runs SET current_node = $1, logs = $2, errors = $3, updated_at = $4 WHERE id = $5`,
		currentNode, logsJSON, errsJSON, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update run progress",
			slog.String("error", err.Error()),
			slog.String("run_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrRunNotFound)
}

// WithTx implements store.RunStore.WithTx.
func (s *PostgresRunStore) WithTx(tx *sql.Tx) store.RunStore {
	return &PostgresRunStore{db: tx, logger: s.logger}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.Run, error) {
	var (
		run        domain.Run
		status     string
		logs, errs []byte
	)
	err := row.Scan(
		&run.ID,
		&run.ClientID,
		&run.SRSName,
		&run.SRSContent,
		&run.ProjectName,
		&status,
		&run.CurrentNode,
		&logs,
		&errs,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Status = domain.RunStatus(status)
	if run.Logs, err = decodeLines(logs); err != nil {
		return nil, fmt.Errorf("invalid logs of run %s: %w", run.ID, err)
	}
	if run.Errors, err = decodeLines(errs); err != nil {
		return nil, fmt.Errorf("invalid errors of run %s: %w", run.ID, err)
	}
	return &run, nil
}

// encodeLines renders log and error lines as JSONB text.
func encodeLines(logs, errs []string) (string, string, error) {
	if logs == nil {
		logs = []string{}
	}
	if errs == nil {
		errs = []string{}
	}
	l, err := json.Marshal(logs)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode logs: %w", err)
	}
	e, err := json.Marshal(errs)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode errors: %w", err)
	}
	return string(l), string(e), nil
}

func decodeLines(data []byte) ([]string, error) {
	lines := []string{}
	if len(data) == 0 {
		return lines, nil
	}
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}
