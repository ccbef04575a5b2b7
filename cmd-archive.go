package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"wise-brd/archive"
	"wise-brd/logger"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newArchiveCmd() *cobra.Command {
	var (
		srcDir     string
		dstDir     string
		interval   time.Duration
		minElapsed time.Duration
		once       bool
	)

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Copy finished scenarios from --src to --dst",
		Long: `Scan --src for scenario directories that carry a finished mark older
than --min-elapsed and no lock, and copy each one to --dst once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if once {
				copied, err := archive.SyncOnce(srcDir, dstDir, minElapsed)
				if err != nil {
					return err
				}
				logger.Named("archive").Infow("sync done", "copied", copied)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := archive.Watch(ctx, srcDir, dstDir, interval, minElapsed)
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&srcDir, "src", "", "Directory holding scenario directories")
	cmd.Flags().StringVar(&dstDir, "dst", "", "Archive directory")
	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "Scan interval")
	cmd.Flags().DurationVar(&minElapsed, "min-elapsed", 5*time.Minute, "Minimum age of the finished mark")
	cmd.Flags().BoolVar(&once, "once", false, "Scan once and exit")
	cmd.MarkFlagRequired("src")
	cmd.MarkFlagRequired("dst")

	return cmd
}
