package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/internal/parquet"
)

// ExecuteRunsExport writes the run history held by store to Parquet files next to outputFile.
func ExecuteRunsExport(w io.Writer, store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run store status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total stage records: %d\n", status.TableSizes[stageSummariesTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	stages, err := store.GetAllStages()
	if err != nil {
		return fmt.Errorf("failed to retrieve stage summaries: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	runRows := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(runRows, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runRows), runsFile)

	stagesFile := outputFile + ".stage_summaries.parquet"
	stageRows := parquet.ConvertStageSummaryRecords(stages)
	if err := parquet.WriteStageSummariesParquet(stageRows, stagesFile); err != nil {
		return fmt.Errorf("failed to write stage summaries: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d stage records to: %s\n", len(stageRows), stagesFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read by DuckDB, Pandas (via pyarrow) or Apache Spark.")
	return nil
}
