package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// runOutput is a run result with its drift label, as written to JSON and YAML.
type runOutput struct {
	Label            string `json:"label,omitempty" yaml:"label,omitempty"`
	schema.RunResult `yaml:",inline"`
}

// WriteRunResults outputs run results, dispatching based on the output format configured.
func WriteRunResults(w io.Writer, results []schema.RunResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, toRunOutputs(results, cfg)); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.YAMLOut:
		if err := writeYAML(w, toRunOutputs(results, cfg)); err != nil {
			return fmt.Errorf("error writing YAML output: %w", err)
		}
	case schema.CSVOut:
		if err := writeRunsCSV(w, results, cfg, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return writeParquetSamples(w, results)
	default:
		return writeRunsTable(w, results, cfg, fmtFloat, intFmt, duration)
	}
	return nil
}

func toRunOutputs(results []schema.RunResult, cfg *contract.Config) []runOutput {
	out := make([]runOutput, len(results))
	for i, r := range results {
		out[i] = runOutput{Label: plainDriftLabel(r.Drift, cfg.DriftThresholds), RunResult: r}
	}
	return out
}

// writeRunsTable generates and writes the human-readable table.
func writeRunsTable(writer io.Writer, results []schema.RunResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Log", "Strategy", "Samples", "East", "North", "RMS", "Max", "Final", "Label"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	totalSamples := 0
	for _, r := range results {
		pos := estimatedPosition(r)
		samples := sampleCount(r)
		totalSamples += samples
		row := []string{
			contract.TruncatePath(r.Name, nameWidth),
			string(r.Strategy),
			fmt.Sprintf(intFmt, samples),
			fmtFloat(pos.X),
			fmtFloat(pos.Y),
		}
		row = append(row, driftColumns(r.Drift, fmtFloat, "-")...)
		row = append(row, driftLabel(r.Drift, cfg))
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if cfg.Detail {
		for _, r := range results {
			if _, err := fmt.Fprintf(writer, "\nStages for %s (%s):\n", r.Name, r.Strategy); err != nil {
				return err
			}
			if err := writeStageTable(writer, r.Summary, fmtFloat, intFmt); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintf(writer, "Processed %d logs (%d samples)\n", len(results), totalSamples); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Runs completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeStageTable writes one row per pipeline stage of a run summary.
func writeStageTable(writer io.Writer, summary schema.RunSummary, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Stage", "Samples", "Start", "End", "X", "Y", "Z"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, st := range summary.Stages {
		data = append(data, []string{
			string(st.Stage),
			fmt.Sprintf(intFmt, st.Samples),
			fmtFloat(st.Start),
			fmtFloat(st.End),
			fmtFloat(st.Final.X),
			fmtFloat(st.Final.Y),
			fmtFloat(st.Final.Z),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeRunsCSV writes one row per run.
func writeRunsCSV(w io.Writer, results []schema.RunResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"rank",
		"log",
		"run_id",
		"strategy",
		"trim_seconds",
		"samples",
		"final_x",
		"final_y",
		"final_z",
		"rms_error",
		"max_error",
		"final_error",
		"raw_rms_error",
		"label",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, r := range results {
			pos := estimatedPosition(r)
			rec := []string{
				strconv.Itoa(i + 1),
				r.Name,
				r.RunID,
				string(r.Strategy),
				fmtFloat(r.TrimSeconds),
				fmt.Sprintf(intFmt, sampleCount(r)),
				fmtFloat(pos.X),
				fmtFloat(pos.Y),
				fmtFloat(pos.Z),
			}
			rec = append(rec, driftColumns(r.Drift, fmtFloat, "")...)
			rawRMS := ""
			if r.RawDrift != nil {
				rawRMS = fmtFloat(r.RawDrift.RMSError)
			}
			rec = append(rec, rawRMS, plainDriftLabel(r.Drift, cfg.DriftThresholds))
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
