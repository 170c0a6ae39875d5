// main holds the entry logic for the deadreck CLI.
package main

import (
	"os"

	"github.com/huangsam/deadreck/cmd"
	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/internal/iocache"
)

// main is the entry point for the dead-reckoning CLI.
// Stores are initialized by the commands that need them and closed here on exit.
func main() {
	defer iocache.CloseStores()
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		contract.LogWarn("Command failed", err)
		iocache.CloseStores()
		os.Exit(1)
	}
}
