package migrations

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
	"github.com/yasinhessnawi1/backoffice-auth/internal/database"
)

// dialect holds the column types that differ between PostgreSQL and MySQL.
type dialect struct {
	primaryKey string
	timestamp  string
	tableOpts  string
	postgres   bool
}

func dialectOf(tx *sqlx.Tx) dialect {
	if database.IsPostgres(tx) {
		return dialect{
			primaryKey: "BIGSERIAL PRIMARY KEY",
			timestamp:  "TIMESTAMP",
			postgres:   true,
		}
	}
	return dialect{
		primaryKey: "BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY",
		timestamp:  "DATETIME(6)",
		tableOpts:  " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci",
	}
}

func execAll(ctx context.Context, tx *sqlx.Tx, statements ...string) error {
	for _, statement := range statements {
		if _, err := tx.ExecContext(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}

// createAccountsTable creates a table of accounts. Customers and admins share
// the layout; the unique constraint on email is per table.
func createAccountsTable(table, emailConstraint string) Migration {
	return Migration{
		Name:        fmt.Sprintf("create_%s_table", table),
		Description: fmt.Sprintf("Creates the %s table", table),
		TableName:   table,
		RunSQL: func(ctx context.Context, tx *sqlx.Tx) error {
			d := dialectOf(tx)
			query := fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					id %s,
					name VARCHAR(255) NOT NULL,
					email VARCHAR(255) NOT NULL,
					password_hash VARCHAR(255) NOT NULL,
					avatar_url VARCHAR(2048) NULL,
					email_verified_at %s NULL,
					created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT %s UNIQUE (email)
				)%s`,
				table, d.primaryKey, d.timestamp, d.timestamp, d.timestamp, emailConstraint, d.tableOpts)
			return execAll(ctx, tx, query)
		},
	}
}

// createAuthTokensTable creates the auth_tokens table
func createAuthTokensTable() Migration {
	return Migration{
		Name:        "create_auth_tokens_table",
		Description: "Creates the auth_tokens table",
		TableName:   constants.TableAuthTokens,
		RunSQL: func(ctx context.Context, tx *sqlx.Tx) error {
			d := dialectOf(tx)

			index := ""
			if !d.postgres {
				index = ",\n\t\t\t\t\tINDEX idx_auth_tokens_account (account_kind, account_id)"
			}

			statements := []string{fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS auth_tokens (
					id %s,
					account_kind VARCHAR(16) NOT NULL,
					account_id BIGINT NOT NULL,
					name VARCHAR(255) NOT NULL,
					token_hash VARCHAR(64) NOT NULL,
					last_used_at %s NULL,
					expires_at %s NULL,
					created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT uq_auth_tokens_token_hash UNIQUE (token_hash)%s
				)%s`,
				d.primaryKey, d.timestamp, d.timestamp, d.timestamp, index, d.tableOpts)}

			if d.postgres {
				statements = append(statements,
					`CREATE INDEX IF NOT EXISTS idx_auth_tokens_account ON auth_tokens (account_kind, account_id)`)
			}

			return execAll(ctx, tx, statements...)
		},
	}
}

// createPasswordResetTokensTable creates the password_reset_tokens table.
// An email has at most one live ticket per account kind.
func createPasswordResetTokensTable() Migration {
	return Migration{
		Name:        "create_password_reset_tokens_table",
		Description: "Creates the password_reset_tokens table",
		TableName:   constants.TablePasswordResetTokens,
		RunSQL: func(ctx context.Context, tx *sqlx.Tx) error {
			d := dialectOf(tx)
			query := fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS password_reset_tokens (
					account_kind VARCHAR(16) NOT NULL,
					email VARCHAR(255) NOT NULL,
					token_hash VARCHAR(64) NOT NULL,
					created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (account_kind, email)
				)%s`,
				d.timestamp, d.tableOpts)
			return execAll(ctx, tx, query)
		},
	}
}
