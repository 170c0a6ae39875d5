package cmd

import (
	"github.com/huangsam/deadreck/core"
	"github.com/huangsam/deadreck/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD drift gating.
var checkCmd = &cobra.Command{
	Use:   "check [log or folder...]",
	Short: "Enforce an RMS drift limit on recorded logs (fails on violations)",
	Long: `Run the dead reckoning pipeline over each log and enforce an RMS drift limit.

Exits non-zero when any log drifts further than --max-rms from its ground truth.
A log without ground truth cannot be scored and counts as a violation.

Default limit: the High drift threshold (10 m unless overridden)

Examples:
  # Gate a folder of regression walks
  deadreck check testdata/walks

  # Tighter limit for a single log
  deadreck check walk.log --max-rms 2.5

  # Score against external NMEA truth
  deadreck check walk.log --truth walk.nmea --truth-frame geodetic`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCheck(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Policy check failed", err)
		}
	},
}
