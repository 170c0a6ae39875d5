package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/internal/iocache"
	"github.com/huangsam/deadreck/internal/synth"
	"github.com/huangsam/deadreck/schema"
)

// writeLog writes a synthetic log into dir and returns its path.
func writeLog(t *testing.T, dir, name string, opts synth.Options) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, synth.Write(f, synth.Generate(path, opts)))
	return path
}

func testConfig(inputs ...string) *contract.Config {
	return &contract.Config{
		Inputs:          inputs,
		Strategy:        schema.RotationStrategy,
		Gravity:         contract.DefaultGravity,
		TruthFrame:      schema.LocalFrame,
		Workers:         2,
		Precision:       contract.DefaultPrecision,
		Output:          schema.JSONOut,
		Sink:            schema.NoSink,
		DriftThresholds: contract.DefaultDriftThresholds,
	}
}

func noStores() *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetParseStore").Return(nil)
	mgr.On("GetRunStore").Return(nil)
	return mgr
}

// TestExecuteRun tests the main run entry point end to end.
func TestExecuteRun(t *testing.T) {
	dir := t.TempDir()
	a := writeLog(t, dir, "a.log", synth.DefaultOptions())
	b := writeLog(t, dir, "b.log", synth.DefaultOptions())

	cfg := testConfig(a, b)
	cfg.OutputFile = filepath.Join(dir, "out.json")
	mgr := noStores()

	require.NoError(t, ExecuteRun(WithSuppressHeader(context.Background()), cfg, mgr))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "a"`)
	assert.Contains(t, string(data), `"name": "b"`)
	mgr.AssertExpectations(t)
}

// TestRunLogsKeepsInputOrder tests that results follow the input order regardless of worker scheduling.
func TestRunLogsKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	var inputs []string
	for _, name := range []string{"d.log", "c.log", "b.log", "a.log", "e.log"} {
		inputs = append(inputs, writeLog(t, dir, name, synth.DefaultOptions()))
	}
	cfg := testConfig(inputs...)
	cfg.Workers = 3

	results, err := RunLogs(context.Background(), cfg, noStores())
	require.NoError(t, err)
	require.Len(t, results, len(inputs))
	for i, r := range results {
		assert.Equal(t, inputs[i], r.Source)
		assert.NotEmpty(t, r.RunID)
	}
	assert.NotEqual(t, results[0].RunID, results[1].RunID)
}

// TestRunLogsReportsEveryFailure tests that one bad log does not hide another.
func TestRunLogsReportsEveryFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeLog(t, dir, "good.log", synth.DefaultOptions())
	cfg := testConfig(good, filepath.Join(dir, "missing1.log"), filepath.Join(dir, "missing2.log"))

	_, err := RunLogs(context.Background(), cfg, noStores())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing1.log")
	assert.Contains(t, err.Error(), "missing2.log")
}

// TestRunLogsCanceled tests that a canceled context stops the run.
func TestRunLogsCanceled(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(writeLog(t, dir, "a.log", synth.DefaultOptions()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunLogs(ctx, cfg, noStores())
	assert.ErrorIs(t, err, context.Canceled)
}

// TestRunLogsRendersPNG tests that stages reach the configured sink.
func TestRunLogsRendersPNG(t *testing.T) {
	dir := t.TempDir()
	opts := synth.DefaultOptions()
	opts.Duration = 2
	cfg := testConfig(writeLog(t, dir, "walk.log", opts))
	cfg.Sink = schema.PNGSink
	cfg.SinkDir = dir

	_, err := RunLogs(context.Background(), cfg, noStores())
	require.NoError(t, err)
	for _, st := range []schema.Stage{schema.AcceRawStage, schema.PosiNoGStage, schema.PosiOrgStage} {
		_, err := os.Stat(filepath.Join(dir, "walk_"+string(st)+".png"))
		assert.NoError(t, err, "stage %s", st)
	}
}

// TestRunLogsSameBaseName tests that logs sharing a file name get separate plots.
func TestRunLogsSameBaseName(t *testing.T) {
	dir := t.TempDir()
	opts := synth.DefaultOptions()
	opts.Duration = 2
	var inputs []string
	for _, day := range []string{"day1", "day2"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, day), 0o755))
		inputs = append(inputs, writeLog(t, dir, filepath.Join(day, "trip.log"), opts))
	}
	plots := filepath.Join(dir, "plots")
	require.NoError(t, os.MkdirAll(plots, 0o755))

	cfg := testConfig(inputs...)
	cfg.Sink = schema.PNGSink
	cfg.SinkDir = plots

	results, err := RunLogs(context.Background(), cfg, noStores())
	require.NoError(t, err)
	require.Len(t, results, 2)
	for i, want := range []string{"trip_1", "trip_2"} {
		assert.Equal(t, want, results[i].Name)
		for _, st := range results[i].Stages {
			assert.Equal(t, want, st.Name)
		}
	}

	entries, err := os.ReadDir(plots)
	require.NoError(t, err)
	assert.Len(t, entries, 16)
	_, err = os.Stat(filepath.Join(plots, "trip_2_posi_org.png"))
	assert.NoError(t, err)
}

// TestRunLogsTracksRuns tests begin, stage and end calls against the run store.
func TestRunLogsTracksRuns(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(writeLog(t, dir, "walk.log", synth.DefaultOptions()))
	cfg.Workers = 1

	runs := &iocache.MockRunStore{}
	runs.On("BeginRun", mock.Anything, mock.AnythingOfType("string"), cfg.Inputs[0], schema.RotationStrategy, mock.Anything).Return(int64(7), nil)
	runs.On("RecordStage", mock.MatchedBy(func(r schema.StageSummaryRecord) bool { return r.RunID == 7 })).Return(nil)
	runs.On("EndRun", int64(7), mock.Anything, 1001, mock.AnythingOfType("*schema.DriftReport")).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetParseStore").Return(nil)
	mgr.On("GetRunStore").Return(runs)

	results, err := RunLogs(context.Background(), cfg, mgr)
	require.NoError(t, err)
	runs.AssertNumberOfCalls(t, "RecordStage", len(results[0].Stages))
	runs.AssertExpectations(t)
}

// TestCompareStrategies tests that both strategies run and the best one is picked.
func TestCompareStrategies(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "walk.log", synth.DefaultOptions())
	cfg := testConfig(path)

	result, err := CompareStrategies(context.Background(), cfg, noStores(), path)
	require.NoError(t, err)
	require.Len(t, result.Results, len(schema.AllStrategies))
	assert.Equal(t, schema.RotationStrategy, result.Best)
	assert.Equal(t, schema.MeanStrategy, result.Results[schema.MeanStrategy].Strategy)
}

// TestCompareStrategiesWithoutTruth tests that no best strategy is named without ground truth.
func TestCompareStrategiesWithoutTruth(t *testing.T) {
	dir := t.TempDir()
	opts := synth.DefaultOptions()
	opts.PosiRate = 0
	path := writeLog(t, dir, "walk.log", opts)

	result, err := CompareStrategies(context.Background(), testConfig(path), noStores(), path)
	require.NoError(t, err)
	assert.Empty(t, result.Best)
}

// TestExecuteCompareNoInput tests that compare needs a log.
func TestExecuteCompareNoInput(t *testing.T) {
	err := ExecuteCompare(context.Background(), testConfig(), noStores())
	assert.Error(t, err)
}

// TestLoadPipelineOptionsTruthFile tests the external truth override.
func TestLoadPipelineOptionsTruthFile(t *testing.T) {
	dir := t.TempDir()
	truth := writeLog(t, dir, "truth.log", synth.DefaultOptions())

	cfg := testConfig()
	cfg.Truth = truth
	opts, err := loadPipelineOptions(cfg)
	require.NoError(t, err)
	assert.Len(t, opts.Truth, 21)
	assert.Equal(t, schema.LocalFrame, opts.TruthFrame)

	cfg.Truth = filepath.Join(dir, "nope.nmea")
	_, err = loadPipelineOptions(cfg)
	assert.Error(t, err)
}
