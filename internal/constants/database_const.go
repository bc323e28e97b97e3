// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file defines table names, column names and driver
// identifiers used by the repositories and migrations.
package constants

// Table Names define the names of database tables used in the application.
const (
	// TableCustomers stores customer accounts.
	TableCustomers = "customers"

	// TableAdmins stores back-office administrator accounts.
	TableAdmins = "admins"

	// TableAuthTokens stores hashed bearer tokens for both account kinds.
	TableAuthTokens = "auth_tokens"

	// TablePasswordResetTokens stores the live password reset ticket per email and kind.
	TablePasswordResetTokens = "password_reset_tokens"

	// TableMigrations records applied schema migrations.
	TableMigrations = "migrations"
)

// Common Column Names define frequently used database column names.
const (
	ColumnID           = "id"
	ColumnEmail        = "email"
	ColumnAccountKind  = "account_kind"
	ColumnAccountID    = "account_id"
	ColumnTokenHash    = "token_hash"
	ColumnPasswordHash = "password_hash"
	ColumnCreatedAt    = "created_at"
)

// Constraint names, shared by the migrations and the duplicate-key mapping.
const (
	ConstraintCustomersEmail = "uq_customers_email"
	ConstraintAdminsEmail    = "uq_admins_email"
	ConstraintTokenHash      = "uq_auth_tokens_token_hash"
)

// Supported database drivers. The names match the registered database/sql drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// PostgreSQL SSL connection string parameters
const (
	PostgresSSLDisable = "disable"
)

// Driver error codes mapped to domain errors.
const (
	// PGErrorDuplicateConstraint is the PostgreSQL unique_violation SQLSTATE.
	PGErrorDuplicateConstraint = "23505"

	// PGErrorForeignKeyConstraint is the PostgreSQL foreign_key_violation SQLSTATE.
	PGErrorForeignKeyConstraint = "23503"

	// MySQLErrorDuplicateEntry is ER_DUP_ENTRY.
	MySQLErrorDuplicateEntry = 1062

	// DBErrorDuplicateKey is matched against error text when the driver error type is unknown.
	DBErrorDuplicateKey = "duplicate key"
)
