package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	dparquet "github.com/huangsam/deadreck/internal/parquet"
)

func testConfig(output schema.OutputMode) *contract.Config {
	return &contract.Config{
		Output:          output,
		Precision:       2,
		Workers:         2,
		Width:           200,
		CacheBackend:    schema.NoneBackend,
		DriftThresholds: contract.DefaultDriftThresholds,
	}
}

func testRun(name string, strategy schema.GravityStrategy, drift *schema.DriftReport) schema.RunResult {
	stages := []schema.LabeledSeries{
		{Name: name, Stage: schema.AcceNoGStage, Labels: schema.AcceLabels, Series: schema.TimeSeries{{Time: 0}, {Time: 1, A: 1}}},
		{Name: name, Stage: schema.PosiNoGStage, Labels: schema.PosiLabels, Series: schema.TimeSeries{{Time: 0}, {Time: 1, A: 3.5, B: -1.25}}},
	}
	return schema.RunResult{
		RunID:    "run-" + name,
		Source:   "/logs/" + name + ".log",
		Name:     name,
		Strategy: strategy,
		Stages:   stages,
		Drift:    drift,
		Summary:  schema.Summarize(stages),
	}
}

func TestWriteRunResults_Table(t *testing.T) {
	results := []schema.RunResult{
		testRun("tr", schema.RotationStrategy, &schema.DriftReport{RMSError: 12.5, MaxError: 20, FinalError: 15}),
		testRun("walk", schema.RotationStrategy, nil),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRunResults(&buf, results, testConfig(schema.TextOut), time.Second))

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "STRATEGY")
	assert.Contains(t, out, "3.50")
	assert.Contains(t, out, "-1.25")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, contract.HighValue)
	assert.Contains(t, out, "Processed 2 logs (4 samples)")
	assert.NotContains(t, out, "Stages for")
}

func TestWriteRunResults_TableDetail(t *testing.T) {
	cfg := testConfig(schema.TextOut)
	cfg.Detail = true

	var buf bytes.Buffer
	require.NoError(t, WriteRunResults(&buf, []schema.RunResult{testRun("tr", schema.MeanStrategy, nil)}, cfg, 0))

	out := buf.String()
	assert.Contains(t, out, "Stages for tr (mean)")
	assert.Contains(t, out, "posi_nog")
	assert.Contains(t, out, "acce_nog")
}

func TestWriteRunResults_CSV(t *testing.T) {
	results := []schema.RunResult{
		testRun("tr", schema.RotationStrategy, &schema.DriftReport{RMSError: 1, MaxError: 2, FinalError: 1.5}),
		testRun("walk", schema.MeanStrategy, nil),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRunResults(&buf, results, testConfig(schema.CSVOut), 0))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "rank", records[0][0])
	assert.Equal(t, []string{"1", "tr", "run-tr", "rotation", "0.00", "2", "3.50", "-1.25", "0.00", "1.00", "2.00", "1.50", "", contract.LowValue}, records[1])
	assert.Equal(t, "", records[2][9], "no drift without truth")
	assert.Equal(t, "", records[2][13])
}

func TestWriteRunResults_JSON(t *testing.T) {
	results := []schema.RunResult{testRun("tr", schema.RotationStrategy, &schema.DriftReport{RMSError: 60})}

	var buf bytes.Buffer
	require.NoError(t, WriteRunResults(&buf, results, testConfig(schema.JSONOut), 0))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, contract.CriticalValue, decoded[0]["label"])
	assert.Equal(t, "tr", decoded[0]["name"])
	assert.Equal(t, "rotation", decoded[0]["strategy"])
	assert.NotContains(t, decoded[0], "Stages", "series are only written to Parquet")
}

func TestWriteRunResults_YAML(t *testing.T) {
	results := []schema.RunResult{testRun("tr", schema.MeanStrategy, nil)}

	var buf bytes.Buffer
	require.NoError(t, WriteRunResults(&buf, results, testConfig(schema.YAMLOut), 0))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "tr", decoded[0]["name"])
	assert.Equal(t, "mean", decoded[0]["strategy"])
	assert.NotContains(t, decoded[0], "label")
}

func TestWriteRunResults_Parquet(t *testing.T) {
	results := []schema.RunResult{testRun("tr", schema.RotationStrategy, nil), testRun("walk", schema.MeanStrategy, nil)}

	var buf bytes.Buffer
	require.NoError(t, WriteRunResults(&buf, results, testConfig(schema.ParquetOut), 0))

	reader := parquet.NewGenericReader[dparquet.Sample](bytes.NewReader(buf.Bytes()))
	defer func() { _ = reader.Close() }()
	assert.Equal(t, int64(8), reader.NumRows())
}

func TestWriteComparisonResults(t *testing.T) {
	cmp := schema.ComparisonResult{
		Source: "/logs/tr.log",
		Results: map[schema.GravityStrategy]schema.RunResult{
			schema.MeanStrategy:     testRun("tr", schema.MeanStrategy, &schema.DriftReport{RMSError: 30}),
			schema.RotationStrategy: testRun("tr", schema.RotationStrategy, &schema.DriftReport{RMSError: 3}),
		},
		Best: schema.RotationStrategy,
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteComparisonResults(&buf, cmp, testConfig(schema.TextOut), time.Second))
		out := buf.String()
		assert.Contains(t, out, "Compared 2 strategies on /logs/tr.log")
		assert.Contains(t, out, "✓")
		assert.Less(t, strings.Index(out, "mean"), strings.Index(out, "rotation"), "strategies print in fixed order")
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteComparisonResults(&buf, cmp, testConfig(schema.CSVOut), 0))
		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "mean", records[1][1])
		assert.Equal(t, "false", records[1][9])
		assert.Equal(t, "true", records[2][9])
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteComparisonResults(&buf, cmp, testConfig(schema.JSONOut), 0))
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "rotation", decoded["best"])
	})

	t.Run("no truth", func(t *testing.T) {
		noTruth := schema.ComparisonResult{
			Source:  "x.log",
			Results: map[schema.GravityStrategy]schema.RunResult{schema.MeanStrategy: testRun("x", schema.MeanStrategy, nil)},
		}
		var buf bytes.Buffer
		require.NoError(t, WriteComparisonResults(&buf, noTruth, testConfig(schema.TextOut), 0))
		assert.Contains(t, buf.String(), "No ground truth available")
	})
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{width: 80, want: 12},
		{width: 130, want: 30},
		{width: 400, want: 60},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetMaxTableNameWidth(&contract.Config{Width: tt.width}))
	}
}

func TestCreateFormatters(t *testing.T) {
	fmtFloat, intFmt := createFormatters(3)
	assert.Equal(t, "1.235", fmtFloat(1.23456))
	assert.Equal(t, "%d", intFmt)
}
