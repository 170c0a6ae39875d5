package cmd

import (
	"github.com/huangsam/deadreck/core"
	"github.com/huangsam/deadreck/internal/contract"
	"github.com/spf13/cobra"
)

// checkCompareAndExecute runs a comparison executor and exits on failure.
func checkCompareAndExecute(executeFunc core.ExecutorFunc) {
	if err := executeFunc(rootCtx, cfg, cacheManager); err != nil {
		contract.LogFatal("Cannot compare strategies", err)
	}
}

// compareCmd compares gravity compensation strategies on one log.
var compareCmd = &cobra.Command{
	Use:   "compare [log]",
	Short: "Compare gravity compensation strategies on one log",
	Long: `Run every gravity compensation strategy over the same log and compare drift.

The log is parsed once and each strategy runs concurrently.
The strategy with the lowest RMS drift is marked best.
Without ground truth the table still shows final positions.

Examples:
  # Compare mean and rotation on one log
  deadreck compare walk.log

  # Ignore the first two seconds while the device settles
  deadreck compare walk.log --trim 2`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		checkCompareAndExecute(core.ExecuteCompare)
	},
}
