package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/schema"
)

// ErrCheckFailed is returned by ExecuteCheck when at least one log violates the drift policy.
var ErrCheckFailed = errors.New("drift policy check failed")

// ExecuteCheck runs the pipeline over every input and gates on RMS drift.
// It serves as the main entry point for the 'check' command and returns
// ErrCheckFailed when any log exceeds cfg.MaxRMS or has no ground truth.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeCheck(ctx, os.Stdout, cfg, mgr)
}

func executeCheck(ctx context.Context, w io.Writer, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		logRunHeader(cfg)
	}
	results, err := RunLogs(ctx, cfg, mgr)
	if err != nil {
		return err
	}

	result := CheckRuns(results, cfg.MaxRMS)
	if err := printCheckResult(w, result, time.Since(start)); err != nil {
		return err
	}
	if !result.Passed {
		return fmt.Errorf("%w: %d violation(s) found", ErrCheckFailed, len(result.Violations))
	}
	return nil
}

// CheckRuns scores run results against an RMS drift limit.
// Violations are sorted by RMS drift, worst first, with unscored logs last.
func CheckRuns(results []schema.RunResult, maxRMS float64) schema.CheckResult {
	check := schema.CheckResult{MaxRMS: maxRMS, TotalLogs: len(results)}

	scored := 0
	var sum float64
	for _, r := range results {
		if r.Drift == nil {
			check.Violations = append(check.Violations, schema.CheckViolation{Name: r.Name, Source: r.Source, NoTruth: true})
			continue
		}
		scored++
		sum += r.Drift.RMSError
		v := schema.CheckViolation{Name: r.Name, Source: r.Source, RMSError: r.Drift.RMSError}
		if check.Worst == nil || v.RMSError > check.Worst.RMSError {
			worst := v
			check.Worst = &worst
		}
		if r.Drift.RMSError > maxRMS {
			check.Violations = append(check.Violations, v)
		}
	}
	if scored > 0 {
		check.AvgRMS = sum / float64(scored)
	}

	sort.SliceStable(check.Violations, func(i, j int) bool {
		a, b := check.Violations[i], check.Violations[j]
		if a.NoTruth != b.NoTruth {
			return !a.NoTruth
		}
		return a.RMSError > b.RMSError
	})
	check.Passed = len(check.Violations) == 0
	return check
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(w io.Writer, result schema.CheckResult, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "Policy Check Results:\n  Max RMS: %.3f m\n\nChecked %d logs in %v\n\n", result.MaxRMS, result.TotalLogs, duration); err != nil {
		return err
	}

	if result.Passed {
		if _, err := fmt.Fprintf(w, "✅ All logs passed the drift policy\n"); err != nil {
			return err
		}
		if result.Worst == nil {
			return nil
		}
		_, err := fmt.Fprintf(w, "  rms: max=%.3f (%s), avg=%.3f\n", result.Worst.RMSError, result.Worst.Name, result.AvgRMS)
		return err
	}

	if _, err := fmt.Fprintf(w, "❌ Policy check failed: %d violation(s) found across %d logs\n\n", len(result.Violations), result.TotalLogs); err != nil {
		return err
	}

	// Show top 5 violations, with "+X more" if needed
	const maxToShow = 5
	for i, v := range result.Violations {
		if i == maxToShow {
			_, err := fmt.Fprintf(w, "  ... and %d more\n", len(result.Violations)-maxToShow)
			return err
		}
		var err error
		if v.NoTruth {
			_, err = fmt.Fprintf(w, "  - %s (no ground truth)\n", v.Name)
		} else {
			_, err = fmt.Fprintf(w, "  - %s (rms: %.3f > limit: %.3f)\n", v.Name, v.RMSError, result.MaxRMS)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
