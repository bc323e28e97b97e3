// Package migrations provides a framework for database schema management.
//
// Executed migrations are tracked in a dedicated migrations table, so running
// the migrator again only applies what is missing. Every migration renders
// its DDL for the active driver, PostgreSQL or MySQL.
package migrations

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
	"github.com/yasinhessnawi1/backoffice-auth/internal/database"
)

// Migration represents a database migration.
// Each migration performs a specific schema change and is tracked
// to ensure it runs exactly once.
type Migration struct {
	// Name is a unique identifier for the migration
	Name string
	// Description is a human-readable explanation of what the migration does
	Description string
	// TableName is the table created by this migration, used for existence checks
	TableName string
	// RunSQL executes the migration within a transaction
	RunSQL func(ctx context.Context, tx *sqlx.Tx) error
}

// Migrator handles database migrations.
type Migrator struct {
	db *database.Pool
}

// NewMigrator creates a new migrator.
func NewMigrator(db *database.Pool) *Migrator {
	return &Migrator{
		db: db,
	}
}

// GetMigrations returns all migrations in the order they must run.
func GetMigrations() []Migration {
	return []Migration{
		createAccountsTable(constants.TableCustomers, constants.ConstraintCustomersEmail),
		createAccountsTable(constants.TableAdmins, constants.ConstraintAdminsEmail),
		createAuthTokensTable(),
		createPasswordResetTokensTable(),
	}
}

// RunMigrations runs all pending database migrations.
// A migration whose table already exists is recorded without running it.
func (m *Migrator) RunMigrations(ctx context.Context) error {
	log.Info().Msg("Running database migrations")
	startTime := time.Now()

	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	executedMigrations, err := m.getExecutedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed migrations: %w", err)
	}

	migrations := GetMigrations()
	migrationsRun := 0
	migrationsRecorded := 0

	for _, migration := range migrations {
		if executedMigrations[migration.Name] {
			continue
		}

		exists, err := m.tableExists(ctx, migration.TableName)
		if err != nil {
			return fmt.Errorf("failed to check if table %s exists: %w", migration.TableName, err)
		}

		if exists {
			log.Info().
				Str("migration", migration.Name).
				Str("table", migration.TableName).
				Msg("Table already exists, recording migration as completed")

			if err := m.recordMigration(ctx, m.db, migration); err != nil {
				return err
			}
			migrationsRecorded++
			continue
		}

		log.Info().
			Str("migration", migration.Name).
			Str("table", migration.TableName).
			Msg("Running migration")

		if err := m.runMigration(ctx, migration); err != nil {
			return err
		}
		migrationsRun++
	}

	log.Info().
		Int("migrations_run", migrationsRun).
		Int("migrations_recorded", migrationsRecorded).
		Int("total_migrations", len(migrations)).
		Dur("duration", time.Since(startTime)).
		Msg("Database migrations completed")

	return nil
}

// DropAll drops every application table and the migrations table.
func (m *Migrator) DropAll(ctx context.Context) error {
	migrations := GetMigrations()

	tables := make([]string, 0, len(migrations)+1)
	for i := len(migrations) - 1; i >= 0; i-- {
		tables = append(tables, migrations[i].TableName)
	}
	tables = append(tables, constants.TableMigrations)

	for _, table := range tables {
		query := "DROP TABLE IF EXISTS " + database.QuoteIdentifier(m.db, table)
		if _, err := m.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
		log.Info().Str("table", table).Msg("Dropped table")
	}

	return nil
}

// Fresh drops all tables and runs every migration again.
func (m *Migrator) Fresh(ctx context.Context) error {
	if err := m.DropAll(ctx); err != nil {
		return err
	}
	return m.RunMigrations(ctx)
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS ` + constants.TableMigrations + ` (
			name VARCHAR(255) PRIMARY KEY,
			description TEXT,
			executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`
	_, err := m.db.ExecContext(ctx, query)
	return err
}

// getExecutedMigrations returns the names of the migrations already applied.
func (m *Migrator) getExecutedMigrations(ctx context.Context) (map[string]bool, error) {
	var names []string
	if err := m.db.SelectContext(ctx, &names, `SELECT name FROM `+constants.TableMigrations); err != nil {
		return nil, err
	}

	executed := make(map[string]bool, len(names))
	for _, name := range names {
		executed[name] = true
	}
	return executed, nil
}

// runMigration runs a migration and records it in the same transaction.
func (m *Migrator) runMigration(ctx context.Context, migration Migration) error {
	return m.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := migration.RunSQL(ctx, tx); err != nil {
			return fmt.Errorf("migration %s failed: %w", migration.Name, err)
		}
		return m.recordMigration(ctx, tx, migration)
	})
}

func (m *Migrator) recordMigration(ctx context.Context, q sqlx.ExtContext, migration Migration) error {
	query := q.Rebind(`INSERT INTO ` + constants.TableMigrations + ` (name, description) VALUES (?, ?)`)
	if _, err := q.ExecContext(ctx, query, migration.Name, migration.Description); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", migration.Name, err)
	}
	return nil
}

// tableExists checks if a table exists in the current database schema.
func (m *Migrator) tableExists(ctx context.Context, tableName string) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, database.TableExistsQuery(m.db), tableName).Scan(&exists)
	return exists, err
}
