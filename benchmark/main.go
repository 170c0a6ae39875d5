// Package main provides a performance benchmarking tool for the deadreck CLI.
// It generates synthetic sensor logs of increasing length, measures execution times
// of the run and compare commands, running each test multiple times, treating the
// first successful run as cold and averaging the rest as warm, and writes CSV output
// for performance analysis and documentation.
//
// Prerequisites:
// - deadreck binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic logs are written
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/deadreck/internal/synth"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Datasets    []string
	Durations   map[string]float64 // Seconds of recording per log
	LogsPerSet  int
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Datasets:    []string{"short", "walk", "commute", "day"},
		Durations: map[string]float64{
			"short":   60,
			"walk":    15 * 60,
			"commute": 60 * 60,
			"day":     8 * 60 * 60,
		},
		LogsPerSet: 4,
	}

	if err := checkPrerequisites(); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}
	if err := generateDatasets(config); err != nil {
		fmt.Printf("Failed to generate datasets: %v\n", err)
		os.Exit(1)
	}

	// Clear the cache using deadreck cache clear
	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("deadreck", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the deadreck binary exists
func checkPrerequisites() error {
	if _, err := exec.LookPath("deadreck"); err != nil {
		return fmt.Errorf("deadreck binary not found in PATH")
	}
	return nil
}

// generateDatasets writes LogsPerSet synthetic logs per dataset under WorkDir
func generateDatasets(config BenchmarkConfig) error {
	for _, name := range config.Datasets {
		dir := filepath.Join(config.WorkDir, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		for i := range config.LogsPerSet {
			opts := synth.DefaultOptions()
			opts.Duration = config.Durations[name]
			opts.Noise = 0.05
			opts.Seed = uint64(i + 1)

			path := filepath.Join(dir, fmt.Sprintf("%s_%02d.log", name, i))
			if err := writeLog(path, opts); err != nil {
				return err
			}
		}
		fmt.Printf("Generated %d logs of %.0fs in %s\n", config.LogsPerSet, config.Durations[name], dir)
	}
	return nil
}

func writeLog(path string, opts synth.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := synth.Write(f, synth.Generate(path, opts)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// runBenchmarks executes all benchmark tests across configured datasets
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Datasets), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, name := range config.Datasets {
		fmt.Printf("Benchmarking %s\n", name)
		dir := filepath.Join(config.WorkDir, name)

		// Every log in the dataset
		result := runBenchmarkSuite(config, name, "run", "run over all logs", []string{dir})
		results = append(results, result)

		// Both strategies on the first log
		first := filepath.Join(dir, fmt.Sprintf("%s_00.log", name))
		result = runBenchmarkSuite(config, name, "compare", "strategy comparison", []string{first})
		results = append(results, result)
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, dataset, command, description string, extraArgs []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, dataset)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, extraArgs, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     dataset,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a deadreck command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command string, extraArgs []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	// Prepare command arguments
	args := []string{command, "--cache-backend", cacheBackend, "--workers", fmt.Sprint(config.Workers)}
	args = append(args, extraArgs...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("deadreck", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)
	if command == "compare" {
		return strings.Contains(outputStr, "Comparison completed in")
	}
	return strings.Contains(outputStr, "Runs completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("deadreck_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"dataset", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "run", "Run:")
	printCommandSummary(results, "compare", "Compare:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
