// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/deadreck/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetParseStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking pipeline runs and their stage summaries.
type RunStore interface {
	// BeginRun creates a new run row and returns its unique ID
	BeginRun(startTime time.Time, runUUID, source string, strategy schema.GravityStrategy, configParams map[string]any) (int64, error)

	// RecordStage stores the summary of one pipeline stage
	RecordStage(record schema.StageSummaryRecord) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalSamples int, drift *schema.DriftReport) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStoreStatus, error)

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllStages returns every recorded stage summary
	GetAllStages() ([]schema.StageSummaryRecord, error)

	// Close closes the underlying connection
	Close() error
}

// RenderSink receives finished pipeline stages.
// Every Render call owns its own drawing resources and releases them before returning.
type RenderSink interface {
	Render(ctx context.Context, series schema.LabeledSeries) error
	Close() error
}
