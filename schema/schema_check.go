package schema

// CheckResult holds the outcome of a drift policy check over a set of logs.
type CheckResult struct {
	Passed     bool
	MaxRMS     float64 // RMS drift limit in metres
	TotalLogs  int
	Violations []CheckViolation
	Worst      *CheckViolation // Highest RMS drift among the scored logs
	AvgRMS     float64         // Mean RMS drift over the scored logs
}

// CheckViolation describes a log that failed the policy check.
// A log without ground truth cannot be scored and always fails.
type CheckViolation struct {
	Name     string
	Source   string
	RMSError float64
	NoTruth  bool
}
