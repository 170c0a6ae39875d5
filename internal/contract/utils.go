package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Drift label constants.
const (
	CriticalValue = "Critical" // Critical value
	HighValue     = "High"     // High value
	ModerateValue = "Moderate" // Moderate value
	LowValue      = "Low"      // Low value
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // criticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // highColor represents strong, distinct warning.
	ModerateColor = color.New(color.FgYellow)              // moderateColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // lowColor represents informational / low-priority signal.
)

// DriftThresholds holds the RMS drift limits, in metres, at which each label starts.
type DriftThresholds struct {
	Critical float64
	High     float64
	Moderate float64
}

// DefaultDriftThresholds are used when no thresholds are configured.
var DefaultDriftThresholds = DriftThresholds{Critical: 50, High: 10, Moderate: 2}

// GetPlainLabel returns a plain text label indicating how severe a drift is.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(drift float64, th DriftThresholds) string {
	switch {
	case drift >= th.Critical:
		return CriticalValue
	case drift >= th.High:
		return HighValue
	case drift >= th.Moderate:
		return ModerateValue
	default:
		return LowValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(drift float64, th DriftThresholds) string {
	text := GetPlainLabel(drift, th)

	switch text {
	case CriticalValue:
		return CriticalColor.Sprint(text)
	case HighValue:
		return HighColor.Sprint(text)
	case ModerateValue:
		return ModerateColor.Sprint(text)
	default: // "Low"
		return LowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the parse cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".deadreck_cache.db"
	}
	return filepath.Join(homeDir, ".deadreck_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run history.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".deadreck_runs.db"
	}
	return filepath.Join(homeDir, ".deadreck_runs.db")
}

// LogName returns the short name of a log file, its base name without extension.
// "data/test_tr.log" becomes "test_tr".
func LogName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// UniqueLogNames returns one LogName per path, in order. Logs sharing a base
// name are told apart by their position among the duplicates, so
// "day1/trip.log" and "day2/trip.log" become "trip_1" and "trip_2".
func UniqueLogNames(paths []string) []string {
	counts := make(map[string]int, len(paths))
	for _, p := range paths {
		counts[LogName(p)]++
	}
	taken := make(map[string]bool, len(paths))
	for name, n := range counts {
		if n == 1 {
			taken[name] = true
		}
	}

	next := make(map[string]int)
	names := make([]string, len(paths))
	for i, p := range paths {
		name := LogName(p)
		if counts[name] == 1 {
			names[i] = name
			continue
		}
		for {
			next[name]++
			candidate := fmt.Sprintf("%s_%d", name, next[name])
			if !taken[candidate] {
				taken[candidate] = true
				names[i] = candidate
				break
			}
		}
	}
	return names
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave space for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
