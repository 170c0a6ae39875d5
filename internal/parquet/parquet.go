// Package parquet provides data structures and functions for exporting deadreck
// run history and stage series to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/deadreck/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single pipeline run with metadata.
// This struct maps to the deadreck_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the identifier printed to the user and published to sinks
	RunUUID string `parquet:"run_uuid,snappy"`

	// Source is the path of the log that was processed
	Source string `parquet:"source,snappy"`

	// Strategy is the gravity compensation strategy
	Strategy string `parquet:"strategy,snappy,dict"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalSamples is the number of samples across every stage
	TotalSamples int32 `parquet:"total_samples,snappy"`

	// RMSError is the RMS horizontal drift against ground truth (nullable)
	RMSError *float64 `parquet:"rms_error,optional,snappy"`

	// MaxError is the largest horizontal drift against ground truth (nullable)
	MaxError *float64 `parquet:"max_error,optional,snappy"`

	// FinalError is the drift at the last estimate sample (nullable)
	FinalError *float64 `parquet:"final_error,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// StageSummary represents the compact view of one stage in a run.
// This struct maps to the deadreck_stage_summaries database table.
type StageSummary struct {
	RunID       int64   `parquet:"run_id,snappy"`
	Stage       string  `parquet:"stage,snappy,dict"`
	Samples     int32   `parquet:"samples,snappy"`
	SeriesStart float64 `parquet:"series_start,snappy"`
	SeriesEnd   float64 `parquet:"series_end,snappy"`
	FinalA      float64 `parquet:"final_a,snappy"`
	FinalB      float64 `parquet:"final_b,snappy"`
	FinalC      float64 `parquet:"final_c,snappy"`
}

// Sample is one row of a stage series in long format.
type Sample struct {
	Source   string  `parquet:"source,snappy,dict"`
	Strategy string  `parquet:"strategy,snappy,dict"`
	Stage    string  `parquet:"stage,snappy,dict"`
	Time     float64 `parquet:"time,snappy"`
	A        float64 `parquet:"a,snappy"`
	B        float64 `parquet:"b,snappy"`
	C        float64 `parquet:"c,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteStageSummariesParquet writes a slice of StageSummary structs to a Parquet file.
func WriteStageSummariesParquet(data []StageSummary, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteSamples writes sample rows to w. The schema is derived from the Sample struct tags.
func WriteSamples(w io.Writer, data []Sample) error {
	return write(w, data)
}

func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			RunUUID:       record.RunUUID,
			Source:        record.Source,
			Strategy:      record.Strategy,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalSamples:  record.TotalSamples,
			RMSError:      record.RMSError,
			MaxError:      record.MaxError,
			FinalError:    record.FinalError,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertStageSummaryRecords converts schema.StageSummaryRecord to StageSummary for Parquet export.
func ConvertStageSummaryRecords(records []schema.StageSummaryRecord) []StageSummary {
	result := make([]StageSummary, len(records))
	for i, record := range records {
		result[i] = StageSummary(record)
	}
	return result
}

// ConvertStages flattens the stages of a run into sample rows, stage by stage.
func ConvertStages(source string, strategy schema.GravityStrategy, stages []schema.LabeledSeries) []Sample {
	total := 0
	for _, ls := range stages {
		total += ls.Series.Len()
	}
	result := make([]Sample, 0, total)
	for _, ls := range stages {
		for _, s := range ls.Series {
			result = append(result, Sample{
				Source:   source,
				Strategy: string(strategy),
				Stage:    string(ls.Stage),
				Time:     s.Time,
				A:        s.A,
				B:        s.B,
				C:        s.C,
			})
		}
	}
	return result
}
