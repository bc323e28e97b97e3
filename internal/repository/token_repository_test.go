package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/repository"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

func newTestToken(kind models.AccountKind, accountID int64) *models.AuthToken {
	account := &models.Account{ID: accountID, Kind: kind}
	return models.NewAuthToken(account, "hash-of-token", time.Hour)
}

func TestTokenRepository_Create(t *testing.T) {
	pool, mock := newMockPool(t, "mysql")
	repo := repository.NewTokenRepository(pool)
	token := newTestToken(models.KindCustomer, 7)

	mock.ExpectExec("INSERT INTO auth_tokens").
		WithArgs("customer", int64(7), "auth_token", "hash-of-token", nil, *token.ExpiresAt, token.CreatedAt).
		WillReturnResult(sqlmock.NewResult(31, 1))

	err := repo.Create(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, int64(31), token.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_ReplaceForAccount(t *testing.T) {
	t.Run("Locks, revokes and inserts in one transaction", func(t *testing.T) {
		pool, mock := newMockPool(t, "postgres")
		repo := repository.NewTokenRepository(pool)
		token := newTestToken(models.KindAdmin, 2)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM admins WHERE id = $1 FOR UPDATE")).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM auth_tokens WHERE account_kind = $1 AND account_id = $2")).
			WithArgs("admin", int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectQuery("INSERT INTO auth_tokens (.+) RETURNING id").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(40))
		mock.ExpectCommit()

		err := repo.ReplaceForAccount(context.Background(), token)

		require.NoError(t, err)
		assert.Equal(t, int64(40), token.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown account rolls back", func(t *testing.T) {
		pool, mock := newMockPool(t, "mysql")
		repo := repository.NewTokenRepository(pool)
		token := newTestToken(models.KindCustomer, 404)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM customers WHERE id = \\? FOR UPDATE").
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		err := repo.ReplaceForAccount(context.Background(), token)

		assert.True(t, utils.IsNotFoundError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insert failure rolls back the revocation", func(t *testing.T) {
		pool, mock := newMockPool(t, "mysql")
		repo := repository.NewTokenRepository(pool)
		token := newTestToken(models.KindCustomer, 5)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM customers").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
		mock.ExpectExec("DELETE FROM auth_tokens").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO auth_tokens").
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := repo.ReplaceForAccount(context.Background(), token)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create token")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTokenRepository_GetByHash(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		pool, mock := newMockPool(t, "mysql")
		repo := repository.NewTokenRepository(pool)
		now := time.Now().UTC()

		rows := sqlmock.NewRows([]string{"id", "account_kind", "account_id", "name", "token_hash", "last_used_at", "expires_at", "created_at"}).
			AddRow(9, "customer", 7, "auth_token", "abc", nil, nil, now)

		mock.ExpectQuery("SELECT (.+) FROM auth_tokens WHERE token_hash = \\? AND account_kind = \\?").
			WithArgs("abc", "customer").
			WillReturnRows(rows)

		token, err := repo.GetByHash(context.Background(), models.KindCustomer, "abc")

		require.NoError(t, err)
		assert.Equal(t, int64(9), token.ID)
		assert.Equal(t, models.KindCustomer, token.AccountKind)
		assert.Equal(t, int64(7), token.AccountID)
		assert.Nil(t, token.ExpiresAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		pool, mock := newMockPool(t, "mysql")
		repo := repository.NewTokenRepository(pool)

		mock.ExpectQuery("SELECT (.+) FROM auth_tokens").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		token, err := repo.GetByHash(context.Background(), models.KindCustomer, "missing")

		assert.Nil(t, token)
		assert.True(t, utils.IsNotFoundError(err))
	})
}

func TestTokenRepository_Touch(t *testing.T) {
	pool, mock := newMockPool(t, "mysql")
	repo := repository.NewTokenRepository(pool)
	usedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE auth_tokens SET last_used_at = ? WHERE id = ?")).
		WithArgs(usedAt, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Touch(context.Background(), 9, usedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_DeleteByHash(t *testing.T) {
	pool, mock := newMockPool(t, "mysql")
	repo := repository.NewTokenRepository(pool)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM auth_tokens WHERE token_hash = ? AND account_kind = ?")).
		WithArgs("abc", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM auth_tokens WHERE token_hash = ? AND account_kind = ?")).
		WithArgs("abc", "admin").
		WillReturnResult(sqlmock.NewResult(0, 0))

	count, err := repo.DeleteByHash(context.Background(), models.KindAdmin, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// A second delete of the same token is a no-op
	count, err = repo.DeleteByHash(context.Background(), models.KindAdmin, "abc")
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_DeleteByAccount(t *testing.T) {
	pool, mock := newMockPool(t, "mysql")
	repo := repository.NewTokenRepository(pool)

	mock.ExpectExec("DELETE FROM auth_tokens WHERE account_kind = \\? AND account_id = \\?").
		WithArgs("customer", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	count, err := repo.DeleteByAccount(context.Background(), models.KindCustomer, 3)

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_DeleteExpired(t *testing.T) {
	pool, mock := newMockPool(t, "mysql")
	repo := repository.NewTokenRepository(pool)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM auth_tokens WHERE expires_at IS NOT NULL AND expires_at <= ?")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	count, err := repo.DeleteExpired(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	mock.ExpectExec("DELETE FROM auth_tokens").WillReturnError(errors.New("timeout"))
	_, err = repo.DeleteExpired(context.Background(), now)
	assert.Error(t, err)
}
