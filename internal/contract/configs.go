package contract

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/huangsam/deadreck/schema"
)

// Default values for configuration.
const (
	DefaultGravity    = 9.8
	DefaultPrecision  = 2
	MaxPrecision      = 4
	DefaultMQTTTopic  = "deadreck/series"
	DefaultSinkDir    = "."
	DefaultMQTTClient = "deadreck"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ThresholdsRawInput holds drift threshold definitions from the YAML config file.
type ThresholdsRawInput struct {
	Critical *float64 `mapstructure:"critical"`
	High     *float64 `mapstructure:"high"`
	Moderate *float64 `mapstructure:"moderate"`
}

// Config holds the runtime configuration for a dead-reckoning run.
// This struct remains the "final, validated" config.
type Config struct {
	Inputs      []string // Absolute paths to the sensor logs
	Truth       string   // Optional external ground truth (.nmea or log), overrides POSI
	Strategy    schema.GravityStrategy
	Gravity     float64 // Gravity magnitude in m/s²
	TrimSeconds float64
	TruthFrame  schema.TruthFrame
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Detail      bool // Print per-stage summaries
	Width       int  // Terminal width override (0 = auto-detect)

	Sink       schema.SinkKind
	SinkDir    string
	SinkPrefix string
	MQTTBroker string
	MQTTTopic  string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	DriftThresholds DriftThresholds
	MaxRMS          float64 // RMS drift limit of the check command, in metres

	UseColors bool // Enable colored labels in table output
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPaths []string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile     string `mapstructure:"output-file"`
	Output         string `mapstructure:"output"`
	Precision      int    `mapstructure:"precision"`
	Workers        int    `mapstructure:"workers"`
	Width          int    `mapstructure:"width"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunsBackend    string `mapstructure:"runs-backend"`
	RunsDBConnect  string `mapstructure:"runs-db-connect"`
	Color          string `mapstructure:"color"`

	// --- Fields from pipeline command flags ---
	Truth              string  `mapstructure:"truth"`
	Strategy           string  `mapstructure:"strategy"`
	Gravity            float64 `mapstructure:"gravity"`
	Trim               float64 `mapstructure:"trim"`
	TruthFrame         string  `mapstructure:"truth-frame"`
	Detail             bool    `mapstructure:"detail"`
	Sink               string  `mapstructure:"sink"`
	SinkDir            string  `mapstructure:"sink-dir"`
	SinkPrefix         string  `mapstructure:"sink-prefix"`
	MQTTBroker         string  `mapstructure:"mqtt-broker"`
	MQTTTopic          string  `mapstructure:"mqtt-topic"`
	ThresholdsOverride string  `mapstructure:"thresholds-override"`
	MaxRMS             float64 `mapstructure:"max-rms"`

	// --- Drift thresholds from config file ---
	Thresholds ThresholdsRawInput `mapstructure:"thresholds"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Inputs != nil {
		clone.Inputs = make([]string, len(c.Inputs))
		copy(clone.Inputs, c.Inputs)
	}
	return &clone
}

// GravityVector returns the configured gravity as a world-frame vector.
func (c *Config) GravityVector() schema.Vec3 {
	return schema.Vec3{Z: c.Gravity}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processPipeline(cfg, input); err != nil {
		return err
	}
	if err := processSink(cfg, input); err != nil {
		return err
	}
	if err := processDriftThresholds(cfg, input); err != nil {
		return err
	}
	if err := resolveInputPaths(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run store backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Runs Backend Validation ---
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return err
	}

	// Cache and run history must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		runsDBPath := cfg.RunsDBConnect
		if runsDBPath == "" {
			runsDBPath = GetRunsDBFilePath()
		}
		if cacheDBPath == runsDBPath {
			return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and storage fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Detail = input.Detail

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 3. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processPipeline validates the parameters that feed the dead-reckoning math.
func processPipeline(cfg *Config, input *ConfigRawInput) error {
	cfg.Strategy = schema.GravityStrategy(strings.ToLower(input.Strategy))
	if _, ok := schema.ValidStrategies[cfg.Strategy]; !ok {
		return fmt.Errorf("invalid strategy '%s'. must be mean, rotation", input.Strategy)
	}

	if input.Gravity <= 0 {
		return fmt.Errorf("gravity must be greater than 0 (received %g)", input.Gravity)
	}
	cfg.Gravity = input.Gravity

	if input.Trim < 0 {
		return fmt.Errorf("trim must not be negative (received %g)", input.Trim)
	}
	cfg.TrimSeconds = input.Trim

	cfg.TruthFrame = schema.TruthFrame(strings.ToLower(input.TruthFrame))
	if cfg.TruthFrame == "" {
		cfg.TruthFrame = schema.LocalFrame
	}
	if _, ok := schema.ValidTruthFrames[cfg.TruthFrame]; !ok {
		return fmt.Errorf("invalid truth frame '%s'. must be local, geodetic", input.TruthFrame)
	}

	cfg.Truth = strings.TrimSpace(input.Truth)
	if cfg.Truth != "" {
		abs, err := filepath.Abs(cfg.Truth)
		if err != nil {
			return err
		}
		if _, err := os.Stat(abs); err != nil {
			return fmt.Errorf("truth file %q is not readable: %w", cfg.Truth, err)
		}
		cfg.Truth = abs
	}
	return nil
}

// processSink validates the render sink selection and its destination.
func processSink(cfg *Config, input *ConfigRawInput) error {
	cfg.Sink = schema.SinkKind(strings.ToLower(input.Sink))
	if cfg.Sink == "" {
		cfg.Sink = schema.NoSink
	}
	if _, ok := schema.ValidSinkKinds[cfg.Sink]; !ok {
		return fmt.Errorf("invalid sink '%s'. must be none, png, mqtt", input.Sink)
	}

	cfg.SinkDir = input.SinkDir
	if cfg.SinkDir == "" {
		cfg.SinkDir = DefaultSinkDir
	}
	cfg.SinkPrefix = input.SinkPrefix
	cfg.MQTTBroker = input.MQTTBroker
	cfg.MQTTTopic = input.MQTTTopic
	if cfg.MQTTTopic == "" {
		cfg.MQTTTopic = DefaultMQTTTopic
	}

	if cfg.Sink == schema.MQTTSink && cfg.MQTTBroker == "" {
		return fmt.Errorf("mqtt sink requires --mqtt-broker (e.g. tcp://localhost:1883)")
	}
	return nil
}

// processDriftThresholds builds the final drift thresholds from defaults, the
// config file and the --thresholds-override flag, in that order of precedence.
func processDriftThresholds(cfg *Config, input *ConfigRawInput) error {
	th := DefaultDriftThresholds

	if input.Thresholds.Critical != nil {
		th.Critical = *input.Thresholds.Critical
	}
	if input.Thresholds.High != nil {
		th.High = *input.Thresholds.High
	}
	if input.Thresholds.Moderate != nil {
		th.Moderate = *input.Thresholds.Moderate
	}

	if input.ThresholdsOverride != "" {
		parsed, err := parseDriftThresholdsString(input.ThresholdsOverride, th)
		if err != nil {
			return fmt.Errorf("invalid --thresholds-override format: %w", err)
		}
		th = parsed
	}

	if th.Moderate < 0 || th.High < th.Moderate || th.Critical < th.High {
		return fmt.Errorf("drift thresholds must satisfy 0 <= moderate <= high <= critical (received %.2f, %.2f, %.2f)",
			th.Moderate, th.High, th.Critical)
	}

	cfg.DriftThresholds = th

	// The check gate defaults to the start of the High label.
	if input.MaxRMS < 0 {
		return fmt.Errorf("max-rms must not be negative (received %g)", input.MaxRMS)
	}
	cfg.MaxRMS = input.MaxRMS
	if cfg.MaxRMS == 0 {
		cfg.MaxRMS = th.High
	}
	return nil
}

// parseDriftThresholdsString parses a string like "critical:50,high:10,moderate:2"
// on top of the given base thresholds.
func parseDriftThresholdsString(s string, base DriftThresholds) (DriftThresholds, error) {
	th := base

	parts := strings.SplitSeq(s, ",")
	for part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		keyValue := strings.Split(part, ":")
		if len(keyValue) != 2 {
			return th, fmt.Errorf("invalid threshold format '%s', expected 'level:value'", part)
		}

		level := strings.ToLower(strings.TrimSpace(keyValue[0]))
		value, err := strconv.ParseFloat(strings.TrimSpace(keyValue[1]), 64)
		if err != nil {
			return th, fmt.Errorf("invalid threshold value '%s' for level %s: %w", keyValue[1], level, err)
		}

		switch level {
		case "critical":
			th.Critical = value
		case "high":
			th.High = value
		case "moderate":
			th.Moderate = value
		default:
			return th, fmt.Errorf("invalid level '%s', must be critical, high, or moderate", level)
		}
	}

	return th, nil
}

// resolveInputPaths turns positional arguments into absolute log file paths.
// Directories expand to the log files directly inside them.
func resolveInputPaths(cfg *Config, input *ConfigRawInput) error {
	cfg.Inputs = nil
	for _, p := range input.InputPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("input %q is not readable: %w", p, err)
		}
		if !info.IsDir() {
			cfg.Inputs = append(cfg.Inputs, abs)
			continue
		}

		found, err := listLogFiles(abs)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return fmt.Errorf("no %s files found in %q", schema.DefaultLogExtension, p)
		}
		cfg.Inputs = append(cfg.Inputs, found...)
	}
	return nil
}

// listLogFiles returns the sorted log files directly under dir.
func listLogFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type()&fs.ModeType != 0 {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), schema.DefaultLogExtension) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// RevalidateRun applies per-request overrides to a cloned config and validates them.
// Empty strategy and zero gravity keep the configured values.
func RevalidateRun(cfg *Config, path, strategy string, trim, gravity float64) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("log %q is not readable: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("log %q is a directory", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	input := &ConfigRawInput{
		Strategy:   string(cfg.Strategy),
		Gravity:    cfg.Gravity,
		Trim:       trim,
		TruthFrame: string(cfg.TruthFrame),
		Truth:      cfg.Truth,
	}
	if strategy != "" {
		input.Strategy = strategy
	}
	if gravity != 0 {
		input.Gravity = gravity
	}
	if err := processPipeline(cfg, input); err != nil {
		return err
	}
	cfg.Inputs = []string{abs}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
