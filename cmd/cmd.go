// Package cmd defines the command-line interface for deadreck.
package cmd

import (
	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("strategy", string(schema.RotationStrategy), "Gravity compensation: mean or rotation")
	rootCmd.PersistentFlags().Float64("gravity", contract.DefaultGravity, "Gravity magnitude in m/s²")
	rootCmd.PersistentFlags().Float64("trim", 0, "Drop samples recorded before this log time, in seconds")
	rootCmd.PersistentFlags().String("truth", "", "External ground truth (.nmea or sensor log) replacing the POSI stream")
	rootCmd.PersistentFlags().String("truth-frame", string(schema.LocalFrame), "Ground truth coordinates: local or geodetic")
	rootCmd.PersistentFlags().Bool("detail", false, "Print per-stage summaries under each run")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Parse cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("thresholds-override", "", "Drift label thresholds in metres (format: 'critical:50,high:10,moderate:2')")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug messages to stderr")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runCmd to Viper
	runCmd.Flags().String("sink", string(schema.NoSink), "Where to send stage series: none or png or mqtt")
	runCmd.Flags().String("sink-dir", contract.DefaultSinkDir, "Directory for png plots")
	runCmd.Flags().String("sink-prefix", "", "File name prefix prepended to <log>_<stage>.png plots")
	runCmd.Flags().String("mqtt-broker", "", "MQTT broker URL for the mqtt sink (e.g., tcp://localhost:1883)")
	runCmd.Flags().String("mqtt-topic", contract.DefaultMQTTTopic, "Base MQTT topic for the mqtt sink")
	if err := viper.BindPFlags(runCmd.Flags()); err != nil {
		contract.LogFatal("Error binding run flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().Float64("max-rms", 0, "RMS drift limit in metres (0 = the high drift threshold)")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
