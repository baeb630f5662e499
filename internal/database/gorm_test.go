package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStorage_SQLite(t *testing.T) {
	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	storage := NewKVStorage(db)
	ctx := context.Background()

	_, ok, err := storage.GetItem(ctx, "automation-flows")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, storage.SetItem(ctx, "automation-flows", "[]"))
	require.NoError(t, storage.SetItem(ctx, "automation-flows", `[{"id":"1"}]`))

	value, ok, err := storage.GetItem(ctx, "automation-flows")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, value)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "")
	assert.Error(t, err)
}
