// Package scripts provides utility scripts for database and system management.
//
// Seeding populates the records the service needs before it can be used,
// currently the first back-office administrator. Every seed checks for its
// data first, so running it again on an existing database changes nothing.
package scripts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/backoffice-auth/internal/config"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/service"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

// ErrAdminPasswordRequired is returned when an admin email is configured
// without a password.
var ErrAdminPasswordRequired = errors.New("admin password is required")

// Seeder handles database seeding.
type Seeder struct {
	credentials *service.CredentialStore
}

// NewSeeder creates a new seeder backed by the credential store.
func NewSeeder(credentials *service.CredentialStore) *Seeder {
	return &Seeder{
		credentials: credentials,
	}
}

// SeedDatabase runs every seed against the configuration.
func (s *Seeder) SeedDatabase(ctx context.Context, cfg *config.AppConfig) error {
	log.Info().Msg("Seeding database")
	startTime := time.Now()

	if _, _, err := s.SeedAdmin(ctx, &cfg.Admin); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Database seeding completed")

	return nil
}

// SeedAdmin creates the configured administrator unless an admin with the
// email already exists. It returns the account and whether it was created.
// An empty email skips the seed.
func (s *Seeder) SeedAdmin(ctx context.Context, settings *config.AdminSeedSettings) (*models.Account, bool, error) {
	if settings.Email == "" {
		log.Debug().Msg("No admin email configured, skipping admin seed")
		return nil, false, nil
	}

	existing, err := s.credentials.FindByEmail(ctx, models.KindAdmin, settings.Email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		log.Info().Str("email", existing.Email).Msg("Admin already exists")
		return existing, false, nil
	}

	return s.CreateAdmin(ctx, settings.Name, settings.Email, settings.Password)
}

// CreateAdmin stores a new administrator. A taken email is reported as
// utils.ErrDuplicateEmail.
func (s *Seeder) CreateAdmin(ctx context.Context, name, email, password string) (*models.Account, bool, error) {
	if password == "" {
		return nil, false, ErrAdminPasswordRequired
	}
	if name == "" {
		name = "Administrator"
	}
	if err := utils.GetValidator().Var(email, "required,email"); err != nil {
		return nil, false, fmt.Errorf("invalid admin email %q", email)
	}

	account, err := s.credentials.Create(ctx, models.KindAdmin, name, email, password)
	if err != nil {
		return nil, false, err
	}

	log.Info().
		Int64("admin_id", account.ID).
		Str("email", account.Email).
		Msg("Admin account created")

	return account, true, nil
}
