package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T, driver string) (*Pool, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return NewPool(mockDB, driver), mock
}

func TestNilConnectionHandling(t *testing.T) {
	t.Run("Close with nil DB pointer", func(t *testing.T) {
		pool := &Pool{DB: nil}
		pool.Close()
	})

	t.Run("Close with nil pool", func(t *testing.T) {
		var pool *Pool
		pool.Close()
	})
}

func TestGet(t *testing.T) {
	originalDBPool := dbPool
	defer func() {
		dbPool = originalDBPool
	}()

	pool, _ := newMockPool(t, "postgres")
	dbPool = pool

	assert.Equal(t, pool, Get())
}

func TestClose(t *testing.T) {
	pool, mock := newMockPool(t, "postgres")
	mock.ExpectClose()

	pool.Close()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful transaction", func(t *testing.T) {
		pool, mock := newMockPool(t, "postgres")
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM auth_tokens").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err := pool.Transaction(ctx, func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, "DELETE FROM auth_tokens")
			return err
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Begin transaction failure", func(t *testing.T) {
		pool, mock := newMockPool(t, "postgres")
		mock.ExpectBegin().WillReturnError(errors.New("begin error"))

		err := pool.Transaction(ctx, func(tx *sqlx.Tx) error {
			return nil
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Function returns error", func(t *testing.T) {
		pool, mock := newMockPool(t, "postgres")
		mock.ExpectBegin()
		mock.ExpectRollback()

		funcErr := errors.New("function error")
		err := pool.Transaction(ctx, func(tx *sqlx.Tx) error {
			return funcErr
		})

		assert.Equal(t, funcErr, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback failure after function error", func(t *testing.T) {
		pool, mock := newMockPool(t, "postgres")
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(errors.New("rollback error"))

		err := pool.Transaction(ctx, func(tx *sqlx.Tx) error {
			return errors.New("function error")
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to rollback transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Commit failure", func(t *testing.T) {
		pool, mock := newMockPool(t, "postgres")
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("commit error"))

		err := pool.Transaction(ctx, func(tx *sqlx.Tx) error {
			return nil
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Panic in function", func(t *testing.T) {
		pool, mock := newMockPool(t, "postgres")
		mock.ExpectBegin()
		mock.ExpectRollback()

		defer func() {
			r := recover()
			assert.Equal(t, "panic test", r)
			assert.NoError(t, mock.ExpectationsWereMet())
		}()

		_ = pool.Transaction(ctx, func(tx *sqlx.Tx) error {
			panic("panic test")
		})
	})
}

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful health check", func(t *testing.T) {
		pool, mock := newMockPool(t, "postgres")
		mock.ExpectPing()
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

		assert.NoError(t, pool.HealthCheck(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ping failure", func(t *testing.T) {
		pool, mock := newMockPool(t, "postgres")
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		err := pool.HealthCheck(ctx)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database health check failed")
	})

	t.Run("Query failure", func(t *testing.T) {
		pool, mock := newMockPool(t, "postgres")
		mock.ExpectPing()
		mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("query error"))

		err := pool.HealthCheck(ctx)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database query test failed")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unexpected result", func(t *testing.T) {
		pool, mock := newMockPool(t, "postgres")
		mock.ExpectPing()
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(2))

		err := pool.HealthCheck(ctx)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database returned unexpected result")
	})
}
