package core

import (
	"fmt"
	"os"

	"github.com/huangsam/deadreck/internal/contract"
)

// logRunHeader prints a concise, 2-line header before a run.
func logRunHeader(cfg *contract.Config) {
	fmt.Fprintf(os.Stderr, "🧭 Logs: %d (Strategy: %s, Gravity: %.3g m/s²)\n", len(cfg.Inputs), cfg.Strategy, cfg.Gravity)
	fmt.Fprintf(os.Stderr, "✂️  Trim: %.2fs  Workers: %d  Sink: %s\n", cfg.TrimSeconds, cfg.Workers, cfg.Sink)
}

// logCompareHeader prints a header for a strategy comparison.
func logCompareHeader(cfg *contract.Config, path string) {
	fmt.Fprintf(os.Stderr, "🧭 Log: %s (Gravity: %.3g m/s²)\n", contract.LogName(path), cfg.Gravity)
	fmt.Fprintf(os.Stderr, "📊 Comparing strategies with trim %.2fs\n", cfg.TrimSeconds)
}
