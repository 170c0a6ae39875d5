package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteComparisonResults outputs a strategy comparison, dispatching based on the output format configured.
func WriteComparisonResults(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, result); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.YAMLOut:
		if err := writeYAML(w, result); err != nil {
			return fmt.Errorf("error writing YAML output: %w", err)
		}
	case schema.CSVOut:
		if err := writeComparisonCSV(w, result, cfg, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return writeParquetSamples(w, orderedResults(result))
	default:
		return writeComparisonTable(w, result, cfg, fmtFloat, intFmt, duration)
	}
	return nil
}

// orderedResults returns the per-strategy results in strategy order.
func orderedResults(result schema.ComparisonResult) []schema.RunResult {
	out := make([]schema.RunResult, 0, len(result.Results))
	for _, s := range schema.AllStrategies {
		if r, ok := result.Results[s]; ok {
			out = append(out, r)
		}
	}
	return out
}

// writeComparisonTable writes one row per strategy, marking the best one.
func writeComparisonTable(writer io.Writer, result schema.ComparisonResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(writer)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Strategy", "Samples", "East", "North", "RMS", "Max", "Final", "Label", "Best"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range orderedResults(result) {
		pos := estimatedPosition(r)
		row := []string{
			string(r.Strategy),
			fmt.Sprintf(intFmt, sampleCount(r)),
			fmtFloat(pos.X),
			fmtFloat(pos.Y),
		}
		row = append(row, driftColumns(r.Drift, fmtFloat, "-")...)
		row = append(row, driftLabel(r.Drift, cfg), bestMarker(r.Strategy == result.Best, cfg.UseColors))
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Compared %d strategies on %s\n", len(result.Results), result.Source); err != nil {
		return err
	}
	if result.Best == "" {
		if _, err := fmt.Fprintln(writer, "No ground truth available, drift was not evaluated"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "Comparison completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

func bestMarker(best, useColors bool) string {
	if !best {
		return ""
	}
	if useColors {
		return color.New(color.FgGreen, color.Bold).Sprint("✓")
	}
	return "✓"
}

// writeComparisonCSV writes one row per strategy.
func writeComparisonCSV(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"log", "strategy", "samples", "final_x", "final_y", "rms_error", "max_error", "final_error", "label", "best"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range orderedResults(result) {
			pos := estimatedPosition(r)
			rec := []string{
				r.Name,
				string(r.Strategy),
				fmt.Sprintf(intFmt, sampleCount(r)),
				fmtFloat(pos.X),
				fmtFloat(pos.Y),
			}
			rec = append(rec, driftColumns(r.Drift, fmtFloat, "")...)
			rec = append(rec, plainDriftLabel(r.Drift, cfg.DriftThresholds), fmt.Sprintf("%t", r.Strategy == result.Best))
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
