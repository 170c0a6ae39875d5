package iocache

import (
	"testing"
	"time"

	"github.com/huangsam/deadreck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStore_NoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), "uuid", "tr.log", schema.RotationStrategy, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	assert.NoError(t, store.RecordStage(schema.StageSummaryRecord{RunID: 1, Stage: "posi_nog"}))
	assert.NoError(t, store.EndRun(1, time.Now(), 10, nil))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, store.Close())
}

func TestRunStore_SQLite(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun(start, "0b7c1c7e-7a2b-4f7e-9c55-5d1f7f1d2a10", "/logs/tr.log", schema.RotationStrategy,
		map[string]any{"trim": 2.0})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	summary := schema.StageSummary{
		Stage:   schema.PosiNoGStage,
		Samples: 100,
		Start:   2,
		End:     12,
		Final:   schema.Vec3{X: 1.5, Y: -2, Z: 0.25},
	}
	require.NoError(t, store.RecordStage(schema.NewStageSummaryRecord(runID, summary)))

	// Recording the same stage again replaces it
	summary.Samples = 101
	require.NoError(t, store.RecordStage(schema.NewStageSummaryRecord(runID, summary)))

	drift := &schema.DriftReport{Samples: 101, RMSError: 1.25, MaxError: 3, FinalError: 2.5}
	require.NoError(t, store.EndRun(runID, start.Add(1500*time.Millisecond), 303, drift))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.Equal(t, "/logs/tr.log", run.Source)
	assert.Equal(t, "rotation", run.Strategy)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int32(303), run.TotalSamples)
	require.NotNil(t, run.RMSError)
	assert.InDelta(t, 1.25, *run.RMSError, 1e-12)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"trim":2}`, *run.ConfigParams)

	stages, err := store.GetAllStages()
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, "posi_nog", stages[0].Stage)
	assert.Equal(t, int32(101), stages[0].Samples)
	assert.InDelta(t, -2.0, stages[0].FinalB, 1e-12)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.Equal(t, 303, status.TotalSamples)
	assert.Equal(t, int64(1), status.TableSizes[runsTable])
	assert.Equal(t, int64(1), status.TableSizes[stageSummariesTable])
}

func TestRunStore_EndRunWithoutDrift(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun(time.Now(), "u", "a.log", schema.MeanStrategy, nil)
	require.NoError(t, err)
	require.NoError(t, store.EndRun(runID, time.Now(), 5, nil))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].RMSError)
	assert.Nil(t, runs[0].FinalError)
}

func TestRunStore_EndRunUnknownID(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Error(t, store.EndRun(999, time.Now(), 0, nil))
}
