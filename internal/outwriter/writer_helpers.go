package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/internal/parquet"
	"github.com/huangsam/deadreck/schema"
	"gopkg.in/yaml.v3"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		_, _ = fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeYAML is the YAML counterpart of writeJSON.
func writeYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// writeParquetSamples writes every stage of every run as long-format sample rows.
func writeParquetSamples(w io.Writer, results []schema.RunResult) error {
	var rows []parquet.Sample
	for _, r := range results {
		rows = append(rows, parquet.ConvertStages(r.Name, r.Strategy, r.Stages)...)
	}
	if err := parquet.WriteSamples(w, rows); err != nil {
		return fmt.Errorf("failed to write Parquet samples: %w", err)
	}
	return nil
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
	return fmtFloat, intFmt
}

// driftLabel returns the severity label for a drift report, or "-" without ground truth.
func driftLabel(d *schema.DriftReport, cfg *contract.Config) string {
	if d == nil {
		return "-"
	}
	if cfg.UseColors {
		return contract.GetColorLabel(d.RMSError, cfg.DriftThresholds)
	}
	return contract.GetPlainLabel(d.RMSError, cfg.DriftThresholds)
}

// plainDriftLabel is driftLabel without colors, for machine-readable formats.
func plainDriftLabel(d *schema.DriftReport, th contract.DriftThresholds) string {
	if d == nil {
		return ""
	}
	return contract.GetPlainLabel(d.RMSError, th)
}

// driftColumns formats the RMS, max and final errors, or dashes without ground truth.
func driftColumns(d *schema.DriftReport, fmtFloat func(float64) string, missing string) []string {
	if d == nil {
		return []string{missing, missing, missing}
	}
	return []string{fmtFloat(d.RMSError), fmtFloat(d.MaxError), fmtFloat(d.FinalError)}
}

// estimatedPosition returns the final gravity-compensated position of a run.
func estimatedPosition(r schema.RunResult) schema.Vec3 {
	if st, ok := r.Summary.Lookup(schema.PosiNoGStage); ok {
		return st.Final
	}
	return schema.Vec3{}
}

// sampleCount returns the number of acceleration samples a run integrated.
func sampleCount(r schema.RunResult) int {
	if st, ok := r.Summary.Lookup(schema.AcceNoGStage); ok {
		return st.Samples
	}
	return 0
}
