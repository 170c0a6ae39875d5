package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/deadreck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExecuteRunsExport(t *testing.T) {
	t.Run("requires output file", func(t *testing.T) {
		err := ExecuteRunsExport(&bytes.Buffer{}, &MockRunStore{}, "")
		assert.ErrorContains(t, err, "--output-file is required")
	})

	t.Run("no data", func(t *testing.T) {
		store := &MockRunStore{}
		store.On("GetStatus").Return(schema.RunStoreStatus{Backend: "sqlite"}, nil)
		err := ExecuteRunsExport(&bytes.Buffer{}, store, "out")
		assert.ErrorContains(t, err, "no run data")
		store.AssertExpectations(t)
	})

	t.Run("writes both files", func(t *testing.T) {
		store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		runID, err := store.BeginRun(time.Now(), "u", "tr.log", schema.RotationStrategy, nil)
		require.NoError(t, err)
		require.NoError(t, store.RecordStage(schema.StageSummaryRecord{RunID: runID, Stage: "posi_nog", Samples: 3}))
		require.NoError(t, store.EndRun(runID, time.Now(), 3, nil))

		base := filepath.Join(t.TempDir(), "history")
		var out bytes.Buffer
		require.NoError(t, ExecuteRunsExport(&out, store, base))
		assert.Contains(t, out.String(), "Exported 1 runs")

		for _, suffix := range []string{".runs.parquet", ".stage_summaries.parquet"} {
			info, err := os.Stat(base + suffix)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		}
	})

	t.Run("store error", func(t *testing.T) {
		store := &MockRunStore{}
		store.On("GetStatus").Return(schema.RunStoreStatus{TotalRuns: 1}, nil)
		store.On("GetAllRuns").Return(nil, assert.AnError)
		err := ExecuteRunsExport(&bytes.Buffer{}, store, "out")
		assert.ErrorIs(t, err, assert.AnError)
		store.AssertNotCalled(t, "GetAllStages", mock.Anything)
	})
}
