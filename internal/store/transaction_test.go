package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransaction(t *testing.T) {
	errWork := errors.New("work failed")
	errBegin := errors.New("begin failed")
	errCommit := errors.New("commit failed")
	errRollback := errors.New("rollback failed")

	tests := []struct {
		name      string
		expect    func(m sqlmock.Sqlmock)
		fn        TxFn
		wantErrIs []error
		wantMsg   string
	}{
		{
			name: "commits on success",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec("INSERT INTO runs").WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectCommit()
			},
			fn: func(ctx context.Context, tx *sql.Tx) error {
				_, err := tx.ExecContext(ctx, "INSERT INTO runs (id) VALUES (1)")
				return err
			},
		},
		{
			name: "rolls back when work fails",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectRollback()
			},
			fn:        func(context.Context, *sql.Tx) error { return errWork },
			wantErrIs: []error{errWork},
		},
		{
			name: "begin failure",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin().WillReturnError(errBegin)
			},
			fn:        func(context.Context, *sql.Tx) error { return nil },
			wantErrIs: []error{errBegin},
			wantMsg:   "failed to begin transaction",
		},
		{
			name: "commit failure",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectCommit().WillReturnError(errCommit)
			},
			fn:        func(context.Context, *sql.Tx) error { return nil },
			wantErrIs: []error{errCommit},
			wantMsg:   "failed to commit transaction",
		},
		{
			name: "rollback failure keeps both errors",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectRollback().WillReturnError(errRollback)
			},
			fn:        func(context.Context, *sql.Tx) error { return errWork },
			wantErrIs: []error{errWork, errRollback},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.expect(mock)

			err = RunInTransaction(context.Background(), db, tt.fn)

			if len(tt.wantErrIs) == 0 {
				assert.NoError(t, err)
			}
			for _, target := range tt.wantErrIs {
				assert.ErrorIs(t, err, target)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunInTransactionPanicRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
