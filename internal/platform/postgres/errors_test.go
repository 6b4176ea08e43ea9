package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/srsforge/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantNil bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "no rows", err: sql.ErrNoRows, wantIs: store.ErrNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: uniqueViolationCode}, wantIs: store.ErrDuplicate},
		{name: "foreign key violation", err: &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "runs_client_id_fkey"}, wantIs: store.ErrInvalidEntity},
		{name: "check violation", err: &pgconn.PgError{Code: checkViolationCode}, wantIs: store.ErrInvalidEntity},
		{name: "not null violation", err: &pgconn.PgError{Code: notNullViolationCode, ColumnName: "name"}, wantIs: store.ErrInvalidEntity},
		{name: "wrapped unique violation", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolationCode}), wantIs: store.ErrDuplicate},
		{name: "unmapped pg error", err: &pgconn.PgError{Code: "42P01"}},
		{name: "plain error", err: plain, wantIs: plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if tt.wantNil {
				assert.NoError(t, got)
				return
			}
			require.Error(t, got)
			if tt.wantIs != nil {
				assert.ErrorIs(t, got, tt.wantIs)
			}
			assert.ErrorIs(t, got, tt.err, "original error should stay reachable")
		})
	}
}

func TestViolationHelpers(t *testing.T) {
	unique := fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: uniqueViolationCode})
	fk := &pgconn.PgError{Code: foreignKeyViolationCode}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(errors.New("other")))
	assert.False(t, IsUniqueViolation(nil))

	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(store.ErrRunNotFound))
	assert.False(t, IsNotFoundError(errors.New("other")))
}

func TestCheckRowsAffected(t *testing.T) {
	tests := []struct {
		name     string
		result   sql.Result
		notFound error
		want     error
		wantErr  bool
	}{
		{name: "one row", result: sqlmock.NewResult(0, 1)},
		{name: "no rows with sentinel", result: sqlmock.NewResult(0, 0), notFound: store.ErrRunNotFound, want: store.ErrRunNotFound, wantErr: true},
		{name: "no rows default", result: sqlmock.NewResult(0, 0), want: store.ErrNotFound, wantErr: true},
		{name: "nil result", result: nil, wantErr: true},
		{name: "rows affected error", result: sqlmock.NewErrorResult(errors.New("boom")), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRowsAffected(tt.result, tt.notFound)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
