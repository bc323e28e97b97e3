package repository_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/backoffice-auth/internal/database"
)

// newMockPool creates a pool backed by sqlmock for the given driver name.
// Queries are matched as regular expressions.
func newMockPool(t *testing.T, driver string) (*database.Pool, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return database.NewPool(db, driver), mock
}
