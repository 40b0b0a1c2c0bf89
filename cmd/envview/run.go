package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/envview/internal/env"
	"github.com/vovakirdan/envview/internal/runner"
	"github.com/vovakirdan/envview/internal/storage"
)

var (
	flagRunEpisodes int
	flagRunSeed     int64
	flagRunMaxSteps int
	flagRunWorkers  int
	flagRunPlot     bool
	flagRunNoSave   bool
)

var runCmd = &cobra.Command{
	Use:   "run <env>",
	Short: "Run random-action episodes without a display",
	Long: `Run episodes that sample actions uniformly at random until each
episode ends or is truncated. Episode i is reset with seed+i, so a run is
reproducible for any number of workers.

Finished episodes are recorded in the database unless --no-save is given.

Examples:
  envview run cartpole
  envview run cartpole --episodes 100 --workers 4 --plot
  envview run pong --episodes 1 --max-steps 2000 --debug`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagRunEpisodes, "episodes", 5, "Number of episodes")
	runCmd.Flags().Int64Var(&flagRunSeed, "seed", 0, "Seed of the first episode")
	runCmd.Flags().IntVar(&flagRunMaxSteps, "max-steps", 0, "Per-episode step cap (0 = simulation limit)")
	runCmd.Flags().IntVar(&flagRunWorkers, "workers", 1, "Episodes run in parallel")
	runCmd.Flags().BoolVar(&flagRunPlot, "plot", false, "Plot total reward per episode")
	runCmd.Flags().BoolVar(&flagRunNoSave, "no-save", false, "Do not record episodes")
}

func runRun(cmd *cobra.Command, args []string) error {
	envID := args[0]
	if err := checkEnv(envID); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, "run")

	var store *storage.Store
	if !flagRunNoSave {
		store = openStore(cfg, logger)
		if store != nil {
			defer store.Close()
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	opts := runner.Options{
		Episodes: flagRunEpisodes,
		Seed:     flagRunSeed,
		MaxSteps: flagRunMaxSteps,
		Workers:  flagRunWorkers,
		Logger:   logger,
		OnEpisode: func(r runner.Result) error {
			fmt.Fprintf(out, "  episode %-4d  seed %-6d  steps %-6d  reward %8.2f  %s\n",
				r.Episode+1, r.Seed, r.Steps, r.TotalReward, endLabel(r.Terminated))
			if store == nil {
				return nil
			}
			_, err := store.SaveEpisode(storage.Episode{
				EnvID:       envID,
				Seed:        r.Seed,
				Steps:       r.Steps,
				TotalReward: r.TotalReward,
				Terminated:  r.Terminated,
			})
			if err != nil {
				logger.Warn("could not save episode", "episode", r.Episode, "error", err)
			}
			return nil
		},
	}
	factory := func() (env.Env, error) {
		return env.Make(envID, cfg.EnvOptions(envID))
	}

	fmt.Fprintf(out, "Running %d episode(s) of %s\n\n", flagRunEpisodes, envID)
	results, err := runner.Run(ctx, factory, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("interrupted")
		}
		return err
	}

	sum := runner.Summarize(results)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Episodes: %d  mean reward: %.2f  best reward: %.2f  mean steps: %.1f\n",
		sum.Episodes, sum.MeanReward, sum.BestReward, sum.MeanSteps)

	if flagRunPlot && len(results) > 1 {
		graph := asciigraph.Plot(runner.Rewards(results),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s: total reward per episode", envID)),
		)
		fmt.Fprintln(out)
		fmt.Fprintln(out, graph)
	}
	return nil
}

func endLabel(terminated bool) string {
	if terminated {
		return "done"
	}
	return "truncated"
}

