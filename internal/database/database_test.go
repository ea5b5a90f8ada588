package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesTables(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "nested", "erp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	// A second run has nothing left to apply.
	require.NoError(t, Migrate(ctx, db))

	for _, table := range []string{"users", "products", "customers", "events", "revoked_tokens"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_RoleConstraint(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "erp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(context.Background(), db))

	_, err = db.Exec("INSERT INTO users (username, email, password_hash, role) VALUES ('x', 'x@example.com', 'h', 'root')")
	assert.Error(t, err)
}
