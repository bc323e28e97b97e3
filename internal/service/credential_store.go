package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/backoffice-auth/internal/auth"
	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/repository"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

// CredentialStore owns account records and their password hashes.
type CredentialStore struct {
	accounts    repository.AccountRepository
	passwordCfg *auth.PasswordConfig
}

// NewCredentialStore creates a new CredentialStore
func NewCredentialStore(accounts repository.AccountRepository, passwordCfg *auth.PasswordConfig) *CredentialStore {
	return &CredentialStore{
		accounts:    accounts,
		passwordCfg: passwordCfg,
	}
}

// Create hashes the password and stores a new account. A taken email yields
// utils.ErrDuplicateEmail.
func (s *CredentialStore) Create(ctx context.Context, kind models.AccountKind, name, email, password string) (*models.Account, error) {
	passwordHash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := models.NewAccount(kind, name, utils.NormalizeEmail(email))
	account.PasswordHash = passwordHash

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// FindByEmail returns nil without an error when no account of the kind has the email.
func (s *CredentialStore) FindByEmail(ctx context.Context, kind models.AccountKind, email string) (*models.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, kind, utils.NormalizeEmail(email))
	if err != nil {
		if utils.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// EmailExists reports whether an account of the kind uses the email.
func (s *CredentialStore) EmailExists(ctx context.Context, kind models.AccountKind, email string) (bool, error) {
	return s.accounts.ExistsByEmail(ctx, kind, utils.NormalizeEmail(email))
}

// VerifyPassword compares password with the account's stored hash in constant time.
func (s *CredentialStore) VerifyPassword(account *models.Account, password string) bool {
	match, err := auth.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		log.Error().
			Err(err).
			Int64(constants.AccountIDContextKey, account.ID).
			Str(constants.AccountKindContextKey, account.Kind.String()).
			Msg("Stored password hash could not be verified")
		return false
	}
	return match
}

// HashPassword hashes a plaintext password with the configured parameters.
func (s *CredentialStore) HashPassword(password string) (string, error) {
	passwordHash, err := auth.HashPassword(password, s.passwordCfg)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return passwordHash, nil
}

// UpdatePassword rehashes and stores a new password.
func (s *CredentialStore) UpdatePassword(ctx context.Context, account *models.Account, password string) error {
	passwordHash, err := s.HashPassword(password)
	if err != nil {
		return err
	}

	if err := s.accounts.UpdatePassword(ctx, account.Kind, account.ID, passwordHash); err != nil {
		return err
	}

	account.PasswordHash = passwordHash
	return nil
}

// RehashIfNeeded upgrades a legacy or outdated hash after a successful login.
// Failures are logged and otherwise ignored.
func (s *CredentialStore) RehashIfNeeded(ctx context.Context, account *models.Account, password string) {
	if !auth.NeedsRehash(account.PasswordHash, s.passwordCfg) {
		return
	}

	if err := s.UpdatePassword(ctx, account, password); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Warn().
				Err(err).
				Int64(constants.AccountIDContextKey, account.ID).
				Str(constants.AccountKindContextKey, account.Kind.String()).
				Msg("Failed to upgrade password hash")
		}
		return
	}

	log.Info().
		Int64(constants.AccountIDContextKey, account.ID).
		Str(constants.AccountKindContextKey, account.Kind.String()).
		Msg("Password hash upgraded")
}
