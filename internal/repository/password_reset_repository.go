package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
	"github.com/yasinhessnawi1/backoffice-auth/internal/database"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

// PasswordResetRepository handles database operations for password reset tickets.
// At most one ticket exists per account kind and email.
type PasswordResetRepository interface {
	// Replace stores ticket in place of any earlier ticket for the same email.
	Replace(ctx context.Context, ticket *models.PasswordResetTicket) error

	// Get returns a NotFoundError when the email has no ticket.
	Get(ctx context.Context, kind models.AccountKind, email string) (*models.PasswordResetTicket, error)

	// Redeem deletes the ticket if it still has tokenHash and sets the account
	// password in the same transaction. It returns false, leaving the
	// password untouched, when another request consumed or replaced the ticket first.
	Redeem(ctx context.Context, kind models.AccountKind, email, tokenHash string, accountID int64, passwordHash string) (bool, error)

	Delete(ctx context.Context, kind models.AccountKind, email string) error

	// DeleteCreatedBefore removes tickets of the kind created at or before cutoff.
	DeleteCreatedBefore(ctx context.Context, kind models.AccountKind, cutoff time.Time) (int64, error)
}

// SQLPasswordResetRepository implements PasswordResetRepository for PostgreSQL and MySQL.
type SQLPasswordResetRepository struct {
	db *database.Pool
}

// NewPasswordResetRepository creates a new PasswordResetRepository.
func NewPasswordResetRepository(db *database.Pool) PasswordResetRepository {
	return &SQLPasswordResetRepository{db: db}
}

// Replace deletes the previous ticket and inserts the new one.
func (r *SQLPasswordResetRepository) Replace(ctx context.Context, ticket *models.PasswordResetTicket) error {
	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := deleteTickets(ctx, tx, "account_kind = ? AND email = ?", ticket.AccountKind, ticket.Email); err != nil {
			return err
		}

		startTime := time.Now()
		query := "INSERT INTO " + constants.TablePasswordResetTokens + " (account_kind, email, token_hash, created_at) VALUES (?, ?, ?, ?)"
		_, err := tx.ExecContext(ctx, tx.Rebind(query), ticket.AccountKind, ticket.Email, ticket.TokenHash, ticket.CreatedAt)

		utils.LogDBQuery(query, []interface{}{ticket.AccountKind, ticket.Email, constants.LogRedactedValue, ticket.CreatedAt}, time.Since(startTime), err)

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to store password reset ticket: %w", err)
	}
	return nil
}

// Get retrieves the ticket of an email.
func (r *SQLPasswordResetRepository) Get(ctx context.Context, kind models.AccountKind, email string) (*models.PasswordResetTicket, error) {
	startTime := time.Now()

	query := "SELECT account_kind, email, token_hash, created_at FROM " + constants.TablePasswordResetTokens +
		" WHERE account_kind = ? AND email = ?"

	ticket := &models.PasswordResetTicket{}
	err := r.db.GetContext(ctx, ticket, r.db.Rebind(query), kind, email)

	utils.LogDBQuery(query, []interface{}{kind, email}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Password reset ticket", email)
		}
		return nil, fmt.Errorf("failed to query password reset ticket: %w", err)
	}

	return ticket, nil
}

// Redeem consumes the ticket with a compare-and-delete, then updates the password.
func (r *SQLPasswordResetRepository) Redeem(ctx context.Context, kind models.AccountKind, email, tokenHash string, accountID int64, passwordHash string) (bool, error) {
	consumed := false

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		count, err := deleteTickets(ctx, tx, "account_kind = ? AND email = ? AND token_hash = ?", kind, email, tokenHash)
		if err != nil {
			return err
		}
		if count != 1 {
			return nil
		}

		startTime := time.Now()
		query := fmt.Sprintf("UPDATE %s SET password_hash = ?, updated_at = ? WHERE id = ?", kind.TableName())
		result, err := tx.ExecContext(ctx, tx.Rebind(query), passwordHash, time.Now().UTC(), accountID)

		utils.LogDBQuery(query, []interface{}{constants.LogRedactedValue, accountID}, time.Since(startTime), err)

		if err != nil {
			return err
		}
		if rows, err := result.RowsAffected(); err != nil {
			return err
		} else if rows == 0 {
			return utils.NewNotFoundError(kind.String(), accountID)
		}

		consumed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to redeem password reset ticket: %w", err)
	}

	return consumed, nil
}

// Delete removes the ticket of an email, if any.
func (r *SQLPasswordResetRepository) Delete(ctx context.Context, kind models.AccountKind, email string) error {
	if _, err := deleteTickets(ctx, r.db, "account_kind = ? AND email = ?", kind, email); err != nil {
		return fmt.Errorf("failed to delete password reset ticket: %w", err)
	}
	return nil
}

// DeleteCreatedBefore removes the expired tickets of a kind.
func (r *SQLPasswordResetRepository) DeleteCreatedBefore(ctx context.Context, kind models.AccountKind, cutoff time.Time) (int64, error) {
	count, err := deleteTickets(ctx, r.db, "account_kind = ? AND created_at <= ?", kind, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired password reset tickets: %w", err)
	}

	if count > 0 {
		log.Info().
			Str(constants.AccountKindContextKey, kind.String()).
			Int64("count", count).
			Msg("Deleted expired password reset tickets")
	}

	return count, nil
}

func deleteTickets(ctx context.Context, q sqlx.ExtContext, where string, args ...interface{}) (int64, error) {
	startTime := time.Now()

	query := "DELETE FROM " + constants.TablePasswordResetTokens + " WHERE " + where
	result, err := q.ExecContext(ctx, q.Rebind(query), args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
