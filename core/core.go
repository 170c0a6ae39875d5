// Package core has core logic for running and comparing dead-reckoning pipelines.
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/huangsam/deadreck/core/ingest"
	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/internal/outwriter"
	"github.com/huangsam/deadreck/internal/render"
	"github.com/huangsam/deadreck/schema"
)

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteRun runs the pipeline over every input log and prints the results.
// It serves as the main entry point for the 'run' command.
func ExecuteRun(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		logRunHeader(cfg)
	}
	results, err := RunLogs(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteRuns(results, cfg, time.Since(start))
}

// ExecuteCompare runs every gravity strategy over the first input log and prints
// the side-by-side drift. It serves as the main entry point for the 'compare' command.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	if len(cfg.Inputs) == 0 {
		return errors.New("no input log given")
	}
	if !shouldSuppressHeader(ctx) {
		logCompareHeader(cfg, cfg.Inputs[0])
	}
	result, err := CompareStrategies(ctx, cfg, mgr, cfg.Inputs[0])
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteComparison(result, cfg, time.Since(start))
}

// RunLogs runs the pipeline over every input log with a bounded worker pool.
// Results come back in input order. Every failed log is reported in the error.
func RunLogs(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.RunResult, error) {
	if len(cfg.Inputs) == 0 {
		return nil, errors.New("no input logs given")
	}
	opts, err := loadPipelineOptions(cfg)
	if err != nil {
		return nil, err
	}
	sink, err := render.NewSink(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = sink.Close() }()

	// Add cache manager to context for use in worker goroutines
	ctx = contextWithCacheManager(ctx, mgr)

	type job struct {
		index int
		path  string
		name  string
	}
	type outcome struct {
		index  int
		result schema.RunResult
		err    error
	}

	jobCh := make(chan job, len(cfg.Inputs))
	outCh := make(chan outcome, len(cfg.Inputs))
	var wg sync.WaitGroup

	workers := max(cfg.Workers, 1)
	for range min(workers, len(cfg.Inputs)) {
		wg.Go(func() {
			for j := range jobCh {
				jobOpts := opts
				jobOpts.Name = j.name
				result, err := runLog(ctx, cfg, j.path, jobOpts, sink)
				outCh <- outcome{index: j.index, result: result, err: err}
			}
		})
	}

	// Names key plot files and topics and must differ per log.
	names := contract.UniqueLogNames(cfg.Inputs)
	for i, path := range cfg.Inputs {
		jobCh <- job{index: i, path: path, name: names[i]}
	}
	close(jobCh)

	wg.Wait()
	close(outCh)

	results := make([]schema.RunResult, len(cfg.Inputs))
	failed := make([]error, len(cfg.Inputs))
	for o := range outCh {
		results[o.index] = o.result
		failed[o.index] = o.err
	}
	if err := errors.Join(failed...); err != nil {
		return nil, err
	}
	return results, nil
}

// CompareStrategies runs every gravity strategy concurrently over one log.
// Best is the strategy with the lowest RMS drift, left empty without truth.
func CompareStrategies(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, path string) (schema.ComparisonResult, error) {
	comparison := schema.ComparisonResult{Source: path, Results: make(map[schema.GravityStrategy]schema.RunResult)}
	opts, err := loadPipelineOptions(cfg)
	if err != nil {
		return comparison, err
	}
	ctx = contextWithCacheManager(ctx, mgr)

	log, err := ingest.LoadLog(ctx, path, parseStoreFromContext(ctx))
	if err != nil {
		return comparison, fmt.Errorf("failed to load %s: %w", path, err)
	}

	results := make([]schema.RunResult, len(schema.AllStrategies))
	errs := make([]error, len(schema.AllStrategies))
	var wg sync.WaitGroup
	for i, strategy := range schema.AllStrategies {
		wg.Go(func() {
			strategyOpts := opts
			strategyOpts.Strategy = strategy
			results[i], errs[i] = runTracked(ctx, cfg, log, strategyOpts)
		})
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return comparison, err
	}

	bestRMS := 0.0
	for _, r := range results {
		comparison.Results[r.Strategy] = r
		if r.Drift == nil {
			continue
		}
		if comparison.Best == "" || r.Drift.RMSError < bestRMS {
			comparison.Best, bestRMS = r.Strategy, r.Drift.RMSError
		}
	}
	return comparison, nil
}

// loadPipelineOptions builds run options and reads the external truth file if one is set.
func loadPipelineOptions(cfg *contract.Config) (PipelineOptions, error) {
	opts := NewPipelineOptions(cfg)
	if cfg.Truth == "" {
		return opts, nil
	}
	truth, frame, err := ingest.ParseTruthFile(cfg.Truth)
	if err != nil {
		return opts, fmt.Errorf("failed to load truth %s: %w", cfg.Truth, err)
	}
	opts.Truth = truth
	if frame != "" {
		opts.TruthFrame = frame
	}
	return opts, nil
}

// runLog loads one log, runs the pipeline on it and hands the stages to the sink.
// A failed render is logged and does not fail the run.
func runLog(ctx context.Context, cfg *contract.Config, path string, opts PipelineOptions, sink contract.RenderSink) (schema.RunResult, error) {
	log, err := ingest.LoadLog(ctx, path, parseStoreFromContext(ctx))
	if err != nil {
		return schema.RunResult{Source: path}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	result, err := runTracked(ctx, cfg, log, opts)
	if err != nil {
		return result, err
	}
	_ = render.RenderAll(ctx, sink, result.Stages)
	return result, nil
}

// runTracked runs the pipeline and records it in the run store when one is configured.
func runTracked(ctx context.Context, cfg *contract.Config, log schema.SensorLog, opts PipelineOptions) (schema.RunResult, error) {
	if err := ctx.Err(); err != nil {
		return schema.RunResult{Source: log.Source}, err
	}
	start := time.Now()
	runUUID := uuid.NewString()

	// --- 0. Begin Run Tracking (if configured) ---
	var runID int64
	runs := runStoreFromContext(ctx)
	if runs != nil {
		configParams := map[string]any{
			"gravity":      opts.Gravity.Z,
			"trim_seconds": opts.TrimSeconds,
			"truth":        cfg.Truth,
			"truth_frame":  string(opts.TruthFrame),
			"sink":         string(cfg.Sink),
		}
		var err error
		runID, err = runs.BeginRun(start, runUUID, log.Source, opts.Strategy, configParams)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		}
	}

	// --- 1. Pipeline ---
	result, err := RunPipeline(log, opts)
	result.RunID = runUUID
	result.Duration = time.Since(start)

	// --- 2. End Run Tracking ---
	if runs != nil && runID > 0 {
		recordRun(runs, runID, result, err == nil)
	}
	if err != nil {
		return result, fmt.Errorf("%s (%s): %w", log.Source, opts.Strategy, err)
	}
	contract.LogDebug("Pipeline finished", map[string]any{
		"source":   log.Source,
		"strategy": opts.Strategy,
		"stages":   len(result.Stages),
	})
	return result, nil
}

// recordRun stores stage summaries and closes the run row.
func recordRun(runs contract.RunStore, runID int64, result schema.RunResult, ok bool) {
	total := 0
	if ok {
		for _, st := range result.Summary.Stages {
			if err := runs.RecordStage(schema.NewStageSummaryRecord(runID, st)); err != nil {
				logTrackingError("RecordStage", result.Source, err)
			}
		}
		if ls, found := result.Stage(schema.AcceRawStage); found {
			total = ls.Series.Len()
		}
	}
	if err := runs.EndRun(runID, time.Now(), total, result.Drift); err != nil {
		logTrackingError("EndRun", result.Source, err)
	}
}

// logTrackingError logs run store errors to stderr without disrupting the run.
func logTrackingError(operation, source string, err error) {
	contract.LogWarn(fmt.Sprintf("Run tracking failed for %s on %s", operation, source), err)
}

func parseStoreFromContext(ctx context.Context) contract.CacheStore {
	if mgr := cacheManagerFromContext(ctx); mgr != nil {
		return mgr.GetParseStore()
	}
	return nil
}

func runStoreFromContext(ctx context.Context) contract.RunStore {
	if mgr := cacheManagerFromContext(ctx); mgr != nil {
		return mgr.GetRunStore()
	}
	return nil
}
