package cmd

import (
	"fmt"
	"os"

	"calblock/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "calblock",
	Short: "Cross-account calendar blocker sync",
	Long: `calblock mirrors busy time between calendar accounts. For every
meeting in one account it keeps an anonymous blocker in the others, and
removes blockers whose meeting moved or disappeared.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with the dev config so a CLI failure prints an
		// ISO8601 timestamp instead of an epoch.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
