package schema

import (
	"sort"
	"time"
)

// SensorLog is the parsed form of one sensor log file.
type SensorLog struct {
	Source  string                    `json:"source" yaml:"source"`
	Streams map[StreamKind]TimeSeries `json:"streams" yaml:"streams"`
}

// NewSensorLog returns an empty log for the given source.
func NewSensorLog(source string) SensorLog {
	return SensorLog{Source: source, Streams: make(map[StreamKind]TimeSeries)}
}

// Stream returns the series for a kind, or nil if the log has none.
func (l SensorLog) Stream(kind StreamKind) TimeSeries {
	return l.Streams[kind]
}

// Has reports whether the log carries at least one sample of a kind.
func (l SensorLog) Has(kind StreamKind) bool {
	return len(l.Streams[kind]) > 0
}

// Acce returns the linear acceleration stream.
func (l SensorLog) Acce() TimeSeries { return l.Streams[AccelerationStream] }

// Ahrs returns the orientation stream.
func (l SensorLog) Ahrs() TimeSeries { return l.Streams[OrientationStream] }

// Posi returns the ground-truth position stream.
func (l SensorLog) Posi() TimeSeries { return l.Streams[PositionStream] }

// Kinds returns the record kinds present in the log, sorted by name.
func (l SensorLog) Kinds() []StreamKind {
	kinds := make([]StreamKind, 0, len(l.Streams))
	for k, ts := range l.Streams {
		if len(ts) > 0 {
			kinds = append(kinds, k)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// TotalSamples returns the sample count across every stream.
func (l SensorLog) TotalSamples() int {
	total := 0
	for _, ts := range l.Streams {
		total += len(ts)
	}
	return total
}

// LabeledSeries is one pipeline stage handed to a render sink or writer.
type LabeledSeries struct {
	Name   string     `json:"name" yaml:"name"`     // Input name, e.g. "tr" for tr.log
	Stage  Stage      `json:"stage" yaml:"stage"`   // Pipeline stage, e.g. "posi_nog"
	Labels [3]string  `json:"labels" yaml:"labels"` // Axis labels, e.g. AcceX, AcceY, AcceZ
	Series TimeSeries `json:"series" yaml:"series"`
}

// Final returns the last sample of the stage as a vector, or zero when empty.
func (ls LabeledSeries) Final() Vec3 {
	if ls.Series.Empty() {
		return Vec3{}
	}
	return ls.Series.Last().Vec()
}

// DriftReport quantifies how far an estimated trajectory strays from ground truth.
// All distances are horizontal (A, B plane) in metres.
type DriftReport struct {
	Samples          int     `json:"samples" yaml:"samples"`
	RMSError         float64 `json:"rms_error" yaml:"rms_error"`
	MaxError         float64 `json:"max_error" yaml:"max_error"`
	FinalError       float64 `json:"final_error" yaml:"final_error"`
	TruthDistance    float64 `json:"truth_distance" yaml:"truth_distance"`
	EstimateDistance float64 `json:"estimate_distance" yaml:"estimate_distance"`
}

// StageSummary is the compact view of one stage kept in run summaries and history.
type StageSummary struct {
	Stage   Stage   `json:"stage" yaml:"stage"`
	Samples int     `json:"samples" yaml:"samples"`
	Start   float64 `json:"start" yaml:"start"`
	End     float64 `json:"end" yaml:"end"`
	Final   Vec3    `json:"final" yaml:"final"`
}

// RunSummary collects the per-stage summaries of a run.
type RunSummary struct {
	Stages []StageSummary `json:"stages" yaml:"stages"`
}

// Lookup returns the summary for a stage and whether it exists.
func (s RunSummary) Lookup(stage Stage) (StageSummary, bool) {
	for _, st := range s.Stages {
		if st.Stage == stage {
			return st, true
		}
	}
	return StageSummary{}, false
}

// RunResult is everything a single pipeline run over one log produces.
type RunResult struct {
	RunID       string          `json:"run_id" yaml:"run_id"`
	Source      string          `json:"source" yaml:"source"`
	Name        string          `json:"name" yaml:"name"`
	Strategy    GravityStrategy `json:"strategy" yaml:"strategy"`
	TrimSeconds float64         `json:"trim_seconds" yaml:"trim_seconds"`
	Gravity     Vec3            `json:"gravity" yaml:"gravity"`
	Stages      []LabeledSeries `json:"-" yaml:"-"`
	RawDrift    *DriftReport    `json:"raw_drift,omitempty" yaml:"raw_drift,omitempty"`
	Drift       *DriftReport    `json:"drift,omitempty" yaml:"drift,omitempty"`
	Summary     RunSummary      `json:"summary" yaml:"summary"`
	Duration    time.Duration   `json:"duration_ns" yaml:"duration_ns"`
}

// Stage returns the labeled series for a stage and whether it exists.
func (r RunResult) Stage(stage Stage) (LabeledSeries, bool) {
	for _, ls := range r.Stages {
		if ls.Stage == stage {
			return ls, true
		}
	}
	return LabeledSeries{}, false
}

// ComparisonResult holds the outcome of running every strategy over the same log.
type ComparisonResult struct {
	Source  string                        `json:"source" yaml:"source"`
	Results map[GravityStrategy]RunResult `json:"results" yaml:"results"`
	Best    GravityStrategy               `json:"best,omitempty" yaml:"best,omitempty"` // Lowest RMS drift, empty without truth
}

// Summarize builds the compact stage summaries for a list of stages.
func Summarize(stages []LabeledSeries) RunSummary {
	out := RunSummary{Stages: make([]StageSummary, 0, len(stages))}
	for _, ls := range stages {
		st := StageSummary{Stage: ls.Stage, Samples: ls.Series.Len(), Final: ls.Final()}
		if !ls.Series.Empty() {
			st.Start = ls.Series.First().Time
			st.End = ls.Series.Last().Time
		}
		out.Stages = append(out.Stages, st)
	}
	return out
}
