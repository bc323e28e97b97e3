package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
)

// IsPostgres reports whether q talks to a PostgreSQL server.
func IsPostgres(q sqlx.ExtContext) bool {
	return sqlx.BindType(q.DriverName()) == sqlx.DOLLAR
}

// InsertReturningID runs an INSERT written with `?` placeholders and returns
// the generated primary key. PostgreSQL uses RETURNING, MySQL reports it
// through the driver's LastInsertId.
func InsertReturningID(ctx context.Context, q sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	if IsPostgres(q) {
		var id int64
		err := q.QueryRowxContext(ctx, q.Rebind(query+" RETURNING "+constants.ColumnID), args...).Scan(&id)
		return id, err
	}

	result, err := q.ExecContext(ctx, q.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// TableExistsQuery returns the catalog query used to check for a table in the
// current schema. It takes the table name as its only argument.
func TableExistsQuery(q sqlx.ExtContext) string {
	if IsPostgres(q) {
		return q.Rebind(`SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = ?
		)`)
	}
	return `SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = DATABASE() AND table_name = ?
		)`
}

// QuoteIdentifier quotes a table or column name for the active driver.
func QuoteIdentifier(q sqlx.ExtContext, name string) string {
	if IsPostgres(q) {
		return fmt.Sprintf(`"%s"`, name)
	}
	return fmt.Sprintf("`%s`", name)
}
