package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupTestDB creates a migrated in-memory SQLite database that is closed when the test ends
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Connect(context.Background(), ":memory:")
	require.NoError(t, err, "Failed to create test database")

	t.Cleanup(func() {
		require.NoError(t, db.Close(), "Failed to close test database")
	})
	return db
}
