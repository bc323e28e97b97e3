// Package server provides the HTTP server of the auth API.
// It wires the repositories, services and handlers, owns the router and
// manages the server lifecycle, including graceful shutdown and the
// background maintenance sweep.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/backoffice-auth/internal/auth"
	"github.com/yasinhessnawi1/backoffice-auth/internal/config"
	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
	"github.com/yasinhessnawi1/backoffice-auth/internal/database"
	"github.com/yasinhessnawi1/backoffice-auth/internal/handlers"
	"github.com/yasinhessnawi1/backoffice-auth/internal/middleware"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/repository"
	"github.com/yasinhessnawi1/backoffice-auth/internal/service"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils/ratelimit"
	"github.com/yasinhessnawi1/backoffice-auth/migrations"
	"github.com/yasinhessnawi1/backoffice-auth/scripts"
)

// Handlers contains the HTTP handlers, one auth handler per account kind.
type Handlers struct {
	CustomerAuth *handlers.AuthHandler
	AdminAuth    *handlers.AuthHandler
}

// AuthProviders contains the token and password primitives shared by the services.
type AuthProviders struct {
	// JWTService signs and validates bearer tokens
	JWTService *auth.JWTService

	// PasswordCfg holds the Argon2id parameters
	PasswordCfg *auth.PasswordConfig
}

type repositories struct {
	accounts repository.AccountRepository
	tokens   repository.TokenRepository
	resets   repository.PasswordResetRepository
}

type services struct {
	credentials  *service.CredentialStore
	tokens       *service.TokenIssuer
	customerAuth *service.AuthService
	adminAuth    *service.AuthService
	brokers      []*service.PasswordResetBroker
}

// Server represents the API server.
type Server struct {
	// Config contains application configuration
	Config *config.AppConfig

	// Db provides database access
	Db *database.Pool

	// Handlers contains all HTTP request handlers
	Handlers *Handlers

	router        chi.Router
	authProviders *AuthProviders
	repositories  *repositories
	services      *services
	rateLimiter   *ratelimit.Store
	httpServer    *http.Server

	stopBackground context.CancelFunc
	background     sync.WaitGroup
}

// NewServer connects to the database, brings the schema up to date, seeds the
// configured admin and builds the server around the connection.
func NewServer(cfg *config.AppConfig) (*Server, error) {
	db, err := setupDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	s, err := NewServerWithDB(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	if err := s.Seeder().SeedDatabase(context.Background(), cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	return s, nil
}

// NewServerWithDB builds the server on an open connection pool without
// touching the schema.
func NewServerWithDB(cfg *config.AppConfig, db *database.Pool) (*Server, error) {
	s := &Server{
		Config: cfg,
		Db:     db,
	}

	s.setupAuthProviders()
	s.setupRepositories()

	if err := s.setupServices(); err != nil {
		return nil, fmt.Errorf("failed to set up services: %w", err)
	}

	s.setupHandlers()
	s.setupRateLimiter()
	s.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  constants.DefaultIdleTimeout,
	}

	return s, nil
}

// setupDatabase opens the pool and runs the pending migrations.
func setupDatabase(cfg *config.AppConfig) (*database.Pool, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	if err := migrations.NewMigrator(db).RunMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return db, nil
}

func (s *Server) setupAuthProviders() {
	s.authProviders = &AuthProviders{
		JWTService:  auth.NewJWTService(&s.Config.Tokens),
		PasswordCfg: auth.ConfigFromAppConfig(s.Config),
	}
}

func (s *Server) setupRepositories() {
	s.repositories = &repositories{
		accounts: repository.NewAccountRepository(s.Db),
		tokens:   repository.NewTokenRepository(s.Db),
		resets:   repository.NewPasswordResetRepository(s.Db),
	}
}

// setupServices builds one auth service and one reset broker per account
// kind. Both kinds share the credential store, token issuer and mailer.
func (s *Server) setupServices() error {
	notifier, err := service.NewResetNotifier(&s.Config.Mail)
	if err != nil {
		return fmt.Errorf("failed to create reset notifier: %w", err)
	}

	credentials := service.NewCredentialStore(s.repositories.accounts, s.authProviders.PasswordCfg)
	tokens := service.NewTokenIssuer(s.repositories.tokens, s.repositories.accounts, s.authProviders.JWTService)

	newAuthService := func(kind models.AccountKind) (*service.AuthService, *service.PasswordResetBroker) {
		broker := service.NewPasswordResetBroker(kind, credentials, s.repositories.resets, notifier, &s.Config.PasswordReset)
		return service.NewAuthService(kind, credentials, tokens, broker), broker
	}

	customerAuth, customerBroker := newAuthService(models.KindCustomer)
	adminAuth, adminBroker := newAuthService(models.KindAdmin)

	s.services = &services{
		credentials:  credentials,
		tokens:       tokens,
		customerAuth: customerAuth,
		adminAuth:    adminAuth,
		brokers:      []*service.PasswordResetBroker{customerBroker, adminBroker},
	}

	return nil
}

func (s *Server) setupHandlers() {
	s.Handlers = &Handlers{
		CustomerAuth: handlers.NewAuthHandler(s.services.customerAuth),
		AdminAuth:    handlers.NewAuthHandler(s.services.adminAuth),
	}
}

func (s *Server) setupRateLimiter() {
	if !s.Config.RateLimit.Enabled {
		return
	}

	s.rateLimiter = ratelimit.NewStore(ratelimit.Rate{
		RequestsPerSecond: s.Config.RateLimit.RequestsPerSecond,
		Burst:             s.Config.RateLimit.Burst,
	}, constants.RateLimitIdleExpiry)
}

// Seeder returns a seeder writing through the server's credential store.
func (s *Server) Seeder() *scripts.Seeder {
	return scripts.NewSeeder(s.services.credentials)
}

// Start starts the HTTP server and blocks until it fails or a shutdown
// signal is received.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.Config.Server.ServerAddress()).
			Msg("Starting server")

		serverErrors <- s.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	s.SetupMaintenanceTasks()

	select {
	case err := <-serverErrors:
		s.stopBackgroundTasks()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info().
			Str("signal", sig.String()).
			Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			if closeErr := s.httpServer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// Shutdown stops the background tasks, waits for in-flight requests and
// closes the database connection.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopBackgroundTasks()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info().Msg("Server stopped gracefully")

	s.Db.Close()
	log.Info().Msg("Database connection closed")

	return nil
}

// SetupMaintenanceTasks starts the periodic sweep of expired reset tickets
// and tokens, and the eviction of idle rate limiters.
func (s *Server) SetupMaintenanceTasks() {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopBackground = cancel

	interval := s.Config.Maintenance.Interval
	if interval <= 0 {
		interval = constants.DBMaintenanceInterval
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runCtx, runCancel := context.WithTimeout(ctx, 5*time.Minute)
				s.RunMaintenance(runCtx)
				runCancel()
			}
		}
	}()

	if s.rateLimiter != nil {
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			s.rateLimiter.RunCleanup(ctx, constants.RateLimitCleanupInterval)
		}()
	}
}

func (s *Server) stopBackgroundTasks() {
	if s.stopBackground != nil {
		s.stopBackground()
		s.background.Wait()
		s.stopBackground = nil
	}
}

// RunMaintenance performs one sweep. Failures are logged and do not stop the
// remaining steps.
func (s *Server) RunMaintenance(ctx context.Context) {
	_, err := s.PruneExpiredResets(ctx)
	middleware.LogAndContinueOnError(err, "Failed to clean up expired password reset tickets")

	if count, err := s.services.tokens.PruneExpired(ctx); err != nil {
		utils.LogError(err, map[string]interface{}{"task": "prune_expired_tokens"})
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("Cleaned up expired tokens")
	}
}

// PruneExpiredResets deletes the expired reset tickets of the given account
// kinds, or of every kind when none is given, and returns how many were removed.
func (s *Server) PruneExpiredResets(ctx context.Context, kinds ...models.AccountKind) (int64, error) {
	var total int64
	for _, broker := range s.services.brokers {
		if len(kinds) > 0 && !slices.Contains(kinds, broker.Kind()) {
			continue
		}
		count, err := broker.PruneExpired(ctx)
		if err != nil {
			return total, fmt.Errorf("%s: %w", broker.Kind(), err)
		}
		total += count
	}
	return total, nil
}
