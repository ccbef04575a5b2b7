package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"wise-brd/logger"
	"wise-brd/simulation"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type runOptions struct {
	config string
	name   string
	trials int
	seed   int64
	quiet  bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <base-dir>",
		Short: "Run or resume a scenario sweep",
		Long: `Run the (k, w, strategy) sweep described by a scenario file under
<base-dir>/<unique_name>. An interrupted sweep resumes from its last
snapshot; a finished one is skipped.

Settings come from the file, then BRD_* environment variables
(BRD_TRIALS, BRD_RULE_TYPE, ...), then the flags below.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := simulation.NewViper()
			if opts.config != "" {
				v.SetConfigFile(opts.config)
				if err := v.ReadInConfig(); err != nil {
					return errors.Wrapf(err, "read scenario %s", opts.config)
				}
			}
			applyRunFlags(cmd, v, opts)

			metadata, err := simulation.LoadMetadataWithViper(v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runScenario(ctx, args[0], metadata, opts.quiet)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "Scenario file (yaml, json or toml)")
	cmd.Flags().StringVar(&opts.name, "name", "", "Override unique_name")
	cmd.Flags().IntVar(&opts.trials, "trials", 0, "Override trials per cell")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Override the base random seed")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Hide the progress bar")

	return cmd
}

// applyRunFlags lets explicitly set flags win over every other source
func applyRunFlags(cmd *cobra.Command, v *viper.Viper, opts *runOptions) {
	if cmd.Flags().Changed("name") {
		v.Set("unique_name", opts.name)
	}
	if cmd.Flags().Changed("trials") {
		v.Set("trials", opts.trials)
	}
	if cmd.Flags().Changed("seed") {
		v.Set("seed", opts.seed)
	}
}

func runScenario(ctx context.Context, baseDir string, metadata *simulation.ScenarioMetadata, quiet bool) error {
	log := logger.Named("run")

	scenario := simulation.NewScenario(baseDir, metadata)
	scenario.Quiet = quiet || logger.JSONOutput
	defer scenario.Close()

	if scenario.IsFinished() {
		log.Infow("scenario already finished", "name", metadata.UniqueName)
		return nil
	}

	if !scenario.Load() {
		if err := scenario.Init(); err != nil {
			return err
		}
	}

	if err := scenario.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warnw("interrupted, progress saved", "name", metadata.UniqueName)
		}
		return err
	}

	log.Infow("scenario finished",
		"name", metadata.UniqueName,
		"dir", scenario.Serializer().GetSimulationDir(),
	)
	return nil
}
