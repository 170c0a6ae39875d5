package iocache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/huangsam/deadreck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetManager() {
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
}

func TestInitStores(t *testing.T) {
	t.Run("both stores", func(t *testing.T) {
		resetManager()
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		runsPath := filepath.Join(dir, "runs.db")

		err := InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, runsPath)
		require.NoError(t, err)
		assert.NotNil(t, Manager.GetParseStore())
		assert.NotNil(t, Manager.GetRunStore())

		CloseStores()
		CloseStores() // idempotent

		_, err = os.Stat(cachePath)
		assert.NoError(t, err)
		_, err = os.Stat(runsPath)
		assert.NoError(t, err)
	})

	t.Run("idempotent", func(t *testing.T) {
		resetManager()
		assert.NoError(t, InitStores(schema.NoneBackend, "", schema.NoneBackend, ""))
		assert.NoError(t, InitStores(schema.SQLiteBackend, "/nonexistent/dir/x.db", "", ""))
		CloseStores()
	})

	t.Run("empty backends", func(t *testing.T) {
		resetManager()
		require.NoError(t, InitStores("", "", "", ""))
		assert.Nil(t, Manager.GetParseStore())
		assert.Nil(t, Manager.GetRunStore())
		CloseStores()
	})

	t.Run("bad backend", func(t *testing.T) {
		resetManager()
		err := InitStores(schema.DatabaseBackend("oracle"), "", "", "")
		assert.ErrorContains(t, err, "failed to initialize parse caching")
	})
}

func TestClearCacheAndRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("x"), 0o644))

	require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
	_, err := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))

	// Missing file is fine
	assert.NoError(t, ClearRuns(schema.SQLiteBackend, dbPath, ""))
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.Error(t, ClearRuns(schema.DatabaseBackend("oracle"), "", ""))
}
