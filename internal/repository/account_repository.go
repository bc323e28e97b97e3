// Package repository provides the data access layer of the service. Queries
// are written once with `?` placeholders and rebound for the configured driver.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
	"github.com/yasinhessnawi1/backoffice-auth/internal/database"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

// AccountRepository defines methods for interacting with customer and
// administrator accounts. Every method is scoped to one account kind.
type AccountRepository interface {
	// Create inserts the account and sets its ID. A taken email yields
	// utils.ErrDuplicateEmail.
	Create(ctx context.Context, account *models.Account) error

	// GetByID returns a NotFoundError when no account has the ID.
	GetByID(ctx context.Context, kind models.AccountKind, id int64) (*models.Account, error)

	// GetByEmail returns a NotFoundError when no account has the email.
	GetByEmail(ctx context.Context, kind models.AccountKind, email string) (*models.Account, error)

	ExistsByEmail(ctx context.Context, kind models.AccountKind, email string) (bool, error)

	UpdatePassword(ctx context.Context, kind models.AccountKind, id int64, passwordHash string) error
}

// SQLAccountRepository implements AccountRepository for PostgreSQL and MySQL.
type SQLAccountRepository struct {
	db *database.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *database.Pool) AccountRepository {
	return &SQLAccountRepository{
		db: db,
	}
}

const accountColumns = "id, name, email, password_hash, avatar_url, email_verified_at, created_at, updated_at"

// Create adds a new account to the table of its kind
func (r *SQLAccountRepository) Create(ctx context.Context, account *models.Account) error {
	startTime := time.Now()

	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO %s (name, email, password_hash, avatar_url, email_verified_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, account.Kind.TableName())

	id, err := database.InsertReturningID(ctx, r.db, query,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.AvatarURL,
		account.EmailVerifiedAt,
		account.CreatedAt,
		account.UpdatedAt,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{account.Name, account.Email, constants.LogRedactedValue, account.CreatedAt},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if utils.IsUniqueViolation(err) {
			return utils.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create %s: %w", account.Kind, err)
	}

	account.ID = id

	log.Info().
		Int64(constants.AccountIDContextKey, account.ID).
		Str(constants.AccountKindContextKey, account.Kind.String()).
		Str(constants.EmailContextKey, utils.MaskEmail(account.Email)).
		Msg("Account created")

	return nil
}

// GetByID retrieves an account by ID
func (r *SQLAccountRepository) GetByID(ctx context.Context, kind models.AccountKind, id int64) (*models.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", accountColumns, kind.TableName())
	return r.getOne(ctx, kind, query, id)
}

// GetByEmail retrieves an account by email, ignoring case
func (r *SQLAccountRepository) GetByEmail(ctx context.Context, kind models.AccountKind, email string) (*models.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE LOWER(email) = LOWER(?)", accountColumns, kind.TableName())
	return r.getOne(ctx, kind, query, email)
}

func (r *SQLAccountRepository) getOne(ctx context.Context, kind models.AccountKind, query string, arg interface{}) (*models.Account, error) {
	startTime := time.Now()

	account := &models.Account{}
	err := r.db.GetContext(ctx, account, r.db.Rebind(query), arg)

	utils.LogDBQuery(query, []interface{}{arg}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError(kind.String(), arg)
		}
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}

	account.Kind = kind
	return account, nil
}

// ExistsByEmail checks whether an account of the kind uses the email
func (r *SQLAccountRepository) ExistsByEmail(ctx context.Context, kind models.AccountKind, email string) (bool, error) {
	startTime := time.Now()

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE LOWER(email) = LOWER(?)", kind.TableName())

	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(query), email)

	utils.LogDBQuery(query, []interface{}{email}, time.Since(startTime), err)

	if err != nil {
		return false, fmt.Errorf("failed to check %s email: %w", kind, err)
	}

	return count > 0, nil
}

// UpdatePassword replaces the stored password hash
func (r *SQLAccountRepository) UpdatePassword(ctx context.Context, kind models.AccountKind, id int64, passwordHash string) error {
	startTime := time.Now()

	query := fmt.Sprintf("UPDATE %s SET password_hash = ?, updated_at = ? WHERE id = ?", kind.TableName())

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), passwordHash, time.Now().UTC(), id)

	utils.LogDBQuery(query, []interface{}{constants.LogRedactedValue, id}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to update %s password: %w", kind, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return utils.NewNotFoundError(kind.String(), id)
	}

	return nil
}
