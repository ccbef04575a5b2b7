package main

import (
	"fmt"
	"os"

	"wise-brd/logger"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var (
	jsonLog  bool
	logLevel string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wise-brd",
		Short: "Rumor contagion under best-response dynamics with wise nodes",
		Long: `wise-brd simulates how a rumor spreads on a social network when every
node adopts the majority state of its neighbors, and how a small set of
immutable wise nodes holding accurate information limits the spread.

Available commands:
  run      - Run a resumable parameter sweep described by a scenario file
  simulate - Run a single contagion on an edge list
  archive  - Copy finished scenario directories to another location`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Initialize(jsonLog, logLevel); err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newArchiveCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
