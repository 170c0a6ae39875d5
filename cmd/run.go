package cmd

import (
	"github.com/huangsam/deadreck/core"
	"github.com/huangsam/deadreck/internal/contract"
	"github.com/spf13/cobra"
)

// runCmd runs the dead-reckoning pipeline over one or more logs.
var runCmd = &cobra.Command{
	Use:   "run [log or folder...]",
	Short: "Estimate trajectories from sensor logs",
	Long: `Run the dead-reckoning pipeline over each sensor log.

For every log the pipeline:
- Trims samples recorded before --trim seconds
- Integrates raw acceleration twice as a baseline
- Removes gravity with the chosen --strategy and integrates again
- Scores both trajectories against POSI or --truth when available

Folders expand to the .log files directly inside them.
Logs are processed concurrently with --workers goroutines.

Examples:
  # Run every log in a folder
  deadreck run data/

  # Plot every stage as png files
  deadreck run walk.log --sink png --sink-dir plots

  # Score against an external NMEA track
  deadreck run walk.log --truth walk.nmea`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRun(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run dead reckoning", err)
		}
	},
}
