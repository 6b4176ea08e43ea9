package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/store"
)

// PostgresTraceStore implements the store.TraceStore interface.
type PostgresTraceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTraceStore creates a new PostgreSQL implementation of the TraceStore interface.
func NewPostgresTraceStore(db store.DBTX, logger *slog.Logger) *PostgresTraceStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTraceStore{
		db:     db,
		logger: logger.With(slog.String("component", "trace_store")),
	}
}

var _ store.TraceStore = (*PostgresTraceStore)(nil)

// StartTraceRun implements store.TraceStore.StartTraceRun.
func (s *PostgresTraceStore) StartTraceRun(ctx context.Context, tr *domain.TraceRun) error {
	if err := tr.Validate(); err != nil {
		return err
	}
	inputs, err := encodeAttrs(tr.Inputs)
	if err != nil {
		return fmt.Errorf("failed to encode trace inputs: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trace_runs (id, parent_id, run_id, name, inputs, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, tr.ID, tr.ParentID, tr.RunID, tr.Name, inputs, tr.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to insert trace run: %w", MapError(err))
	}
	return nil
}

// EndTraceRun implements store.TraceStore.EndTraceRun.
// Returns store.ErrTraceRunNotFound if the trace run does not exist.
func (s *PostgresTraceStore) EndTraceRun(ctx context.Context, tr *domain.TraceRun) error {
	outputs, err := encodeAttrs(tr.Outputs)
	if err != nil {
		return fmt.Errorf("failed to encode trace outputs: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE trace_runs SET outputs = $1, error = $2, ended_at = $3 WHERE id = $4
	`, outputs, tr.Error, tr.EndedAt, tr.ID)
	if err != nil {
		return fmt.Errorf("failed to update trace run: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrTraceRunNotFound)
}

// ListByRun implements store.TraceStore.ListByRun.
func (s *PostgresTraceStore) ListByRun(ctx context.Context, runID uuid.UUID) ([]*domain.TraceRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, parent_id, run_id, name, inputs, outputs, error, started_at, ended_at
		FROM trace_runs
		WHERE run_id = $1
		ORDER BY started_at ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trace runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := []*domain.TraceRun{}
	for rows.Next() {
		var (
			tr              domain.TraceRun
			parent          uuid.NullUUID
			inputs, outputs []byte
			ended           sql.NullTime
		)
		if err := rows.Scan(&tr.ID, &parent, &tr.RunID, &tr.Name, &inputs, &outputs, &tr.Error, &tr.StartedAt, &ended); err != nil {
			return nil, fmt.Errorf("failed to scan trace run: %w", err)
		}
		if parent.Valid {
			tr.ParentID = &parent.UUID
		}
		if ended.Valid {
			tr.EndedAt = &ended.Time
		}
		if tr.Inputs, err = decodeAttrs(inputs); err != nil {
			return nil, fmt.Errorf("invalid inputs of trace run %s: %w", tr.ID, err)
		}
		if tr.Outputs, err = decodeAttrs(outputs); err != nil {
			return nil, fmt.Errorf("invalid outputs of trace run %s: %w", tr.ID, err)
		}
		runs = append(runs, &tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trace runs: %w", err)
	}
	return runs, nil
}

// encodeAttrs returns nil for an empty map so the column stays NULL.
func encodeAttrs(m map[string]any) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func decodeAttrs(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
