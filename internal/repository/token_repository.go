package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
	"github.com/yasinhessnawi1/backoffice-auth/internal/database"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

// TokenRepository defines methods for the hashed bearer tokens of both
// account kinds.
type TokenRepository interface {
	// Create stores an additional token for the account.
	Create(ctx context.Context, token *models.AuthToken) error

	// ReplaceForAccount deletes every token of the account and stores token,
	// holding a lock on the account row so concurrent logins of the same
	// account are applied one after the other.
	ReplaceForAccount(ctx context.Context, token *models.AuthToken) error

	// GetByHash returns a NotFoundError when no token has the hash.
	GetByHash(ctx context.Context, kind models.AccountKind, tokenHash string) (*models.AuthToken, error)

	Touch(ctx context.Context, id int64, usedAt time.Time) error

	// DeleteByHash removes one token. Deleting an absent token is not an error.
	DeleteByHash(ctx context.Context, kind models.AccountKind, tokenHash string) (int64, error)

	DeleteByAccount(ctx context.Context, kind models.AccountKind, accountID int64) (int64, error)

	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SQLTokenRepository implements TokenRepository for PostgreSQL and MySQL.
type SQLTokenRepository struct {
	db *database.Pool
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *database.Pool) TokenRepository {
	return &SQLTokenRepository{
		db: db,
	}
}

const insertTokenQuery = `INSERT INTO ` + constants.TableAuthTokens + ` (account_kind, account_id, name, token_hash, last_used_at, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

// Create adds a token
func (r *SQLTokenRepository) Create(ctx context.Context, token *models.AuthToken) error {
	if err := insertToken(ctx, r.db, token); err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

// ReplaceForAccount revokes the account's tokens and stores the new one in a single transaction
func (r *SQLTokenRepository) ReplaceForAccount(ctx context.Context, token *models.AuthToken) error {
	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		startTime := time.Now()

		lockQuery := fmt.Sprintf("SELECT id FROM %s WHERE id = ? FOR UPDATE", token.AccountKind.TableName())
		var lockedID int64
		err := tx.GetContext(ctx, &lockedID, tx.Rebind(lockQuery), token.AccountID)
		utils.LogDBQuery(lockQuery, []interface{}{token.AccountID}, time.Since(startTime), err)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.NewNotFoundError(token.AccountKind.String(), token.AccountID)
			}
			return fmt.Errorf("failed to lock account: %w", err)
		}

		if _, err := deleteTokens(ctx, tx, "account_kind = ? AND account_id = ?", token.AccountKind, token.AccountID); err != nil {
			return fmt.Errorf("failed to revoke tokens: %w", err)
		}

		if err := insertToken(ctx, tx, token); err != nil {
			return fmt.Errorf("failed to create token: %w", err)
		}

		return nil
	})
}

// GetByHash retrieves a token by the hash of its bearer value
func (r *SQLTokenRepository) GetByHash(ctx context.Context, kind models.AccountKind, tokenHash string) (*models.AuthToken, error) {
	startTime := time.Now()

	query := `SELECT id, account_kind, account_id, name, token_hash, last_used_at, expires_at, created_at
		FROM ` + constants.TableAuthTokens + ` WHERE token_hash = ? AND account_kind = ?`

	token := &models.AuthToken{}
	err := r.db.GetContext(ctx, token, r.db.Rebind(query), tokenHash, kind)

	utils.LogDBQuery(query, []interface{}{tokenHash, kind}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Token", kind)
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

// Touch records the last use of a token
func (r *SQLTokenRepository) Touch(ctx context.Context, id int64, usedAt time.Time) error {
	startTime := time.Now()

	query := "UPDATE " + constants.TableAuthTokens + " SET last_used_at = ? WHERE id = ?"
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), usedAt.UTC(), id)

	utils.LogDBQuery(query, []interface{}{usedAt, id}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to touch token: %w", err)
	}
	return nil
}

// DeleteByHash removes the token with the given hash
func (r *SQLTokenRepository) DeleteByHash(ctx context.Context, kind models.AccountKind, tokenHash string) (int64, error) {
	count, err := deleteTokens(ctx, r.db, "token_hash = ? AND account_kind = ?", tokenHash, kind)
	if err != nil {
		return 0, fmt.Errorf("failed to delete token: %w", err)
	}
	return count, nil
}

// DeleteByAccount removes every token of an account
func (r *SQLTokenRepository) DeleteByAccount(ctx context.Context, kind models.AccountKind, accountID int64) (int64, error) {
	count, err := deleteTokens(ctx, r.db, "account_kind = ? AND account_id = ?", kind, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tokens of account %d: %w", accountID, err)
	}
	return count, nil
}

// DeleteExpired removes tokens whose expiry has passed
func (r *SQLTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	count, err := deleteTokens(ctx, r.db, "expires_at IS NOT NULL AND expires_at <= ?", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return count, nil
}

func insertToken(ctx context.Context, q sqlx.ExtContext, token *models.AuthToken) error {
	startTime := time.Now()

	id, err := database.InsertReturningID(ctx, q, insertTokenQuery,
		token.AccountKind,
		token.AccountID,
		token.Name,
		token.TokenHash,
		token.LastUsedAt,
		token.ExpiresAt,
		token.CreatedAt,
	)

	utils.LogDBQuery(insertTokenQuery, []interface{}{token.AccountKind, token.AccountID, token.Name}, time.Since(startTime), err)

	if err != nil {
		return err
	}

	token.ID = id
	return nil
}

func deleteTokens(ctx context.Context, q sqlx.ExtContext, where string, args ...interface{}) (int64, error) {
	startTime := time.Now()

	query := "DELETE FROM " + constants.TableAuthTokens + " WHERE " + where
	result, err := q.ExecContext(ctx, q.Rebind(query), args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
