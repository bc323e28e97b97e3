package server

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/yasinhessnawi1/backoffice-auth/internal/database"
)

// Lifecycle is the part of the server used by the entry points and tests.
type Lifecycle interface {
	// SetupRoutes configures the HTTP routes for the server
	SetupRoutes()

	// GetRouter returns the configured router for request handling
	GetRouter() chi.Router

	// Start begins listening for HTTP requests
	Start() error

	// Shutdown gracefully stops the server
	Shutdown(ctx context.Context) error

	// SetupMaintenanceTasks starts the background sweep
	SetupMaintenanceTasks()

	// RunMaintenance performs one sweep immediately
	RunMaintenance(ctx context.Context)
}

// DBHealthChecker abstracts the connectivity check behind /health.
type DBHealthChecker interface {
	HealthCheck(ctx context.Context) error
	Close()
}

var (
	_ Lifecycle       = (*Server)(nil)
	_ DBHealthChecker = (*database.Pool)(nil)
)
