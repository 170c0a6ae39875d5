package iocache

import (
	"database/sql"
	"testing"
	"time"

	"github.com/huangsam/deadreck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStore_SQLite(t *testing.T) {
	store, err := NewCacheStore(ParseCacheTable, schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	t.Run("miss", func(t *testing.T) {
		_, _, _, err := store.Get("missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("set then get", func(t *testing.T) {
		now := time.Now().Unix()
		require.NoError(t, store.Set("k1", []byte("v1"), 1, now))

		value, version, ts, err := store.Get("k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), value)
		assert.Equal(t, 1, version)
		assert.Equal(t, now, ts)
	})

	t.Run("set replaces", func(t *testing.T) {
		require.NoError(t, store.Set("k1", []byte("v2"), 2, 42))

		value, version, ts, err := store.Get("k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), value)
		assert.Equal(t, 2, version)
		assert.Equal(t, int64(42), ts)
	})

	t.Run("status", func(t *testing.T) {
		require.NoError(t, store.Set("k2", []byte("v"), 1, 100))

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.True(t, status.Connected)
		assert.Equal(t, 2, status.TotalEntries)
		assert.Equal(t, time.Unix(42, 0), status.OldestEntryTime)
		assert.Equal(t, time.Unix(100, 0), status.LastEntryTime)
		assert.Greater(t, status.TableSizeBytes, int64(0))
	})
}

func TestCacheStore_NoneBackend(t *testing.T) {
	store, err := NewCacheStore(ParseCacheTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestCacheStore_InvalidInputs(t *testing.T) {
	_, err := NewCacheStore("bad-name; DROP", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)

	_, err = NewCacheStore(ParseCacheTable, schema.DatabaseBackend("oracle"), "")
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"parse_cache", false},
		{"_private", false},
		{"Table1", false},
		{"", true},
		{"1table", true},
		{"bad-name", true},
		{"name; DROP TABLE x", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQueryHelpers(t *testing.T) {
	assert.Equal(t, "`runs`", quoteTableName("runs", schema.MySQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.PostgreSQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.SQLiteBackend))

	assert.Equal(t, "$1, $2, $3", placeholders(schema.PostgreSQLBackend, 3))
	assert.Equal(t, "?, ?", placeholders(schema.MySQLBackend, 2))

	ts := time.Date(2024, 3, 1, 12, 0, 0, 500, time.UTC)
	assert.Equal(t, ts.Format(time.RFC3339Nano), formatTime(ts, schema.SQLiteBackend))
	assert.Equal(t, ts, formatTime(ts, schema.PostgreSQLBackend))
}
