package schema

import "time"

// RunRecord represents a row from the deadreck_runs table.
type RunRecord struct {
	RunID         int64
	RunUUID       string
	Source        string
	Strategy      string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalSamples  int32
	RMSError      *float64
	MaxError      *float64
	FinalError    *float64
	ConfigParams  *string
}

// StageSummaryRecord represents a row from the deadreck_stage_summaries table.
type StageSummaryRecord struct {
	RunID       int64
	Stage       string
	Samples     int32
	SeriesStart float64 // Log time of the first sample, seconds
	SeriesEnd   float64 // Log time of the last sample, seconds
	FinalA      float64
	FinalB      float64
	FinalC      float64
}

// NewStageSummaryRecord converts a stage summary into its storage row.
func NewStageSummaryRecord(runID int64, st StageSummary) StageSummaryRecord {
	return StageSummaryRecord{
		RunID:       runID,
		Stage:       string(st.Stage),
		Samples:     int32(st.Samples),
		SeriesStart: st.Start,
		SeriesEnd:   st.End,
		FinalA:      st.Final.X,
		FinalB:      st.Final.Y,
		FinalC:      st.Final.Z,
	}
}
