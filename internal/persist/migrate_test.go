package persist

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/flowstate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_NoneBackend(t *testing.T) {
	err := Migrate(context.Background(), schema.NoneBackend, "", -1, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrate_UnknownBackend(t *testing.T) {
	err := Migrate(context.Background(), schema.DatabaseBackend("oracle"), "", -1, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestMigrate_SQLite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	var out bytes.Buffer

	require.NoError(t, Migrate(ctx, schema.SQLiteBackend, dbPath, -1, &out))
	assert.Contains(t, out.String(), "to version 3")
	_, err := os.Stat(dbPath)
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, Migrate(ctx, schema.SQLiteBackend, dbPath, -1, &out))
	assert.Contains(t, out.String(), "already at the latest version")

	out.Reset()
	require.NoError(t, Migrate(ctx, schema.SQLiteBackend, dbPath, 1, &out))
	assert.Contains(t, out.String(), "from version 3 to version 1")

	out.Reset()
	require.NoError(t, Migrate(ctx, schema.SQLiteBackend, dbPath, 0, &out))
	assert.Contains(t, out.String(), "rolled back from version 1")

	out.Reset()
	require.NoError(t, Migrate(ctx, schema.SQLiteBackend, dbPath, 0, &out))
	assert.Contains(t, out.String(), "already at version 0")

	require.NoError(t, Migrate(ctx, schema.SQLiteBackend, dbPath, 3, &bytes.Buffer{}))

	// Stores open cleanly on a migrated schema
	mgr, err := NewStoreManager(ctx, schema.SQLiteBackend, dbPath, nil)
	require.NoError(t, err)
	defer func() { _ = mgr.Close() }()
	status, err := mgr.GetStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Connected)
}

func TestMigrate_SQLiteInMemory(t *testing.T) {
	require.NoError(t, Migrate(context.Background(), schema.SQLiteBackend, ":memory:", -1, &bytes.Buffer{}))
}

func TestMigrationDir(t *testing.T) {
	dir, err := migrationDir(schema.PostgreSQLBackend)
	require.NoError(t, err)
	entries, err := migrationsFS.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 6)

	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend} {
		dir, err := migrationDir(backend)
		require.NoError(t, err)
		entries, err := migrationsFS.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 6, backend)
	}
}
