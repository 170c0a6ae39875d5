package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/deadreck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation as-is.
func validInput(paths ...string) *ConfigRawInput {
	return &ConfigRawInput{
		InputPaths:   paths,
		Output:       "text",
		Precision:    2,
		Workers:      2,
		CacheBackend: "none",
		RunsBackend:  "none",
		Color:        "yes",
		Strategy:     "rotation",
		Gravity:      9.8,
		Sink:         "none",
	}
}

func writeLog(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("ACCE;0.0;0;0;0;9.8\n"), 0o644))
	return path
}

func TestProcessAndValidate(t *testing.T) {
	dir := t.TempDir()
	logPath := writeLog(t, dir, "test_tr.log")

	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "mean strategy mixed case", mutate: func(in *ConfigRawInput) { in.Strategy = "MEAN" }},
		{name: "invalid strategy", mutate: func(in *ConfigRawInput) { in.Strategy = "kalman" }, expectError: true},
		{name: "zero gravity", mutate: func(in *ConfigRawInput) { in.Gravity = 0 }, expectError: true},
		{name: "negative trim", mutate: func(in *ConfigRawInput) { in.Trim = -1 }, expectError: true},
		{name: "invalid truth frame", mutate: func(in *ConfigRawInput) { in.TruthFrame = "polar" }, expectError: true},
		{name: "zero workers", mutate: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: true},
		{name: "precision too high", mutate: func(in *ConfigRawInput) { in.Precision = 5 }, expectError: true},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "parquet needs file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: true},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: true},
		{name: "invalid sink", mutate: func(in *ConfigRawInput) { in.Sink = "svg" }, expectError: true},
		{name: "mqtt needs broker", mutate: func(in *ConfigRawInput) { in.Sink = "mqtt" }, expectError: true},
		{name: "mqtt with broker", mutate: func(in *ConfigRawInput) {
			in.Sink = "mqtt"
			in.MQTTBroker = "tcp://localhost:1883"
		}},
		{name: "missing truth file", mutate: func(in *ConfigRawInput) { in.Truth = filepath.Join(dir, "nope.nmea") }, expectError: true},
		{name: "missing input", mutate: func(in *ConfigRawInput) { in.InputPaths = []string{filepath.Join(dir, "nope.log")} }, expectError: true},
		{name: "invalid cache backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: true},
		{name: "mysql without connection", mutate: func(in *ConfigRawInput) { in.RunsBackend = "mysql" }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(logPath)
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{logPath}, cfg.Inputs)
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	dir := t.TempDir()
	logPath := writeLog(t, dir, "walk.log")

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput(logPath)))

	assert.Equal(t, schema.RotationStrategy, cfg.Strategy)
	assert.Equal(t, schema.LocalFrame, cfg.TruthFrame)
	assert.Equal(t, schema.NoSink, cfg.Sink)
	assert.Equal(t, DefaultSinkDir, cfg.SinkDir)
	assert.Equal(t, DefaultMQTTTopic, cfg.MQTTTopic)
	assert.Equal(t, DefaultDriftThresholds, cfg.DriftThresholds)
	assert.Equal(t, schema.Vec3{Z: 9.8}, cfg.GravityVector())
	assert.True(t, cfg.UseColors)
}

func TestResolveInputPathsExpandsDirectories(t *testing.T) {
	dir := t.TempDir()
	b := writeLog(t, dir, "b.log")
	a := writeLog(t, dir, "a.LOG")
	writeLog(t, dir, "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.log"), 0o755))

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput(dir)))
	assert.Equal(t, []string{a, b}, cfg.Inputs)
}

func TestResolveInputPathsEmptyDirectory(t *testing.T) {
	cfg := &Config{}
	err := ProcessAndValidate(cfg, validInput(t.TempDir()))
	assert.Error(t, err)
}

func TestValidateBackendConfigsSameSQLiteFile(t *testing.T) {
	input := validInput()
	input.CacheBackend = "sqlite"
	input.RunsBackend = "sqlite"
	input.CacheDBConnect = "/tmp/shared.db"
	input.RunsDBConnect = "/tmp/shared.db"

	err := validateBackendConfigs(&Config{}, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different SQLite database files")
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		backend     schema.DatabaseBackend
		conn        string
		expectError bool
	}{
		{schema.SQLiteBackend, "", false},
		{schema.NoneBackend, "", false},
		{schema.MySQLBackend, "root:pw@tcp(localhost:3306)/deadreck", false},
		{schema.MySQLBackend, "root:pw@localhost", true},
		{schema.MySQLBackend, "", true},
		{schema.PostgreSQLBackend, "host=localhost dbname=deadreck", false},
		{schema.PostgreSQLBackend, "host=localhost", true},
	}
	for _, tt := range tests {
		err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
		if tt.expectError {
			assert.Error(t, err, "%s %q", tt.backend, tt.conn)
		} else {
			assert.NoError(t, err, "%s %q", tt.backend, tt.conn)
		}
	}
}

func TestProcessDriftThresholds(t *testing.T) {
	high := 20.0
	input := validInput()
	input.Thresholds.High = &high
	input.ThresholdsOverride = "critical:100, moderate:5"

	cfg := &Config{}
	require.NoError(t, processDriftThresholds(cfg, input))
	assert.Equal(t, DriftThresholds{Critical: 100, High: 20, Moderate: 5}, cfg.DriftThresholds)

	input.ThresholdsOverride = "high:200"
	assert.Error(t, processDriftThresholds(cfg, input))

	input.ThresholdsOverride = "extreme:1"
	assert.Error(t, processDriftThresholds(cfg, input))

	input.ThresholdsOverride = "high=1"
	assert.Error(t, processDriftThresholds(cfg, input))
}

func TestProcessMaxRMS(t *testing.T) {
	input := validInput()
	cfg := &Config{}
	require.NoError(t, processDriftThresholds(cfg, input))
	assert.Equal(t, DefaultDriftThresholds.High, cfg.MaxRMS)

	input.MaxRMS = 2.5
	require.NoError(t, processDriftThresholds(cfg, input))
	assert.Equal(t, 2.5, cfg.MaxRMS)

	input.MaxRMS = -1
	assert.Error(t, processDriftThresholds(cfg, input))
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Inputs: []string{"a.log"}, Strategy: schema.MeanStrategy}
	clone := cfg.Clone()
	clone.Inputs[0] = "b.log"
	clone.Strategy = schema.RotationStrategy

	assert.Equal(t, "a.log", cfg.Inputs[0])
	assert.Equal(t, schema.MeanStrategy, cfg.Strategy)
}

func TestRevalidateRun(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "walk.log")
	require.NoError(t, os.WriteFile(logPath, []byte("ACCE;0;0;0;0;9.8\n"), 0o644))

	base := &Config{Strategy: schema.RotationStrategy, Gravity: DefaultGravity, TruthFrame: schema.LocalFrame}

	cfg := base.Clone()
	require.NoError(t, RevalidateRun(cfg, logPath, "mean", 1.5, 0))
	assert.Equal(t, schema.MeanStrategy, cfg.Strategy)
	assert.Equal(t, DefaultGravity, cfg.Gravity)
	assert.Equal(t, 1.5, cfg.TrimSeconds)
	assert.Equal(t, []string{logPath}, cfg.Inputs)
	assert.Equal(t, schema.RotationStrategy, base.Strategy)

	tests := []struct {
		name     string
		path     string
		strategy string
		trim     float64
		gravity  float64
		want     string
	}{
		{"missing path", "", "", 0, 0, "path is required"},
		{"unreadable", filepath.Join(dir, "nope.log"), "", 0, 0, "not readable"},
		{"directory", dir, "", 0, 0, "is a directory"},
		{"bad strategy", logPath, "kalman", 0, 0, "invalid strategy"},
		{"negative trim", logPath, "", -1, 0, "trim must not be negative"},
		{"negative gravity", logPath, "", 0, -9.8, "gravity must be greater than 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RevalidateRun(base.Clone(), tt.path, tt.strategy, tt.trim, tt.gravity)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
