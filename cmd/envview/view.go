package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/envview/internal/config"
	"github.com/vovakirdan/envview/internal/platform/tui"
)

var (
	flagViewScale     float64
	flagViewTick      int
	flagViewSeed      int64
	flagViewAutoReset bool
)

var viewCmd = &cobra.Command{
	Use:   "view [env]",
	Short: "Watch a simulation and drive it with the keyboard",
	Long: `Start the interactive viewer for a simulation. Without an argument a
picker lists the registered simulations.

The simulation advances one step per tick. Between ticks the most recent
mapped key wins; with no key the default action is applied.

Controls:
  mapped keys  - Submit an action (see 'envview list' and the help line)
  ?            - Toggle full key help
  Q/Esc/Ctrl+C - Quit

Examples:
  envview view pong
  envview view cartpole --tick 50
  envview view colorpad --scale 0        # fit to terminal
  envview view pong --auto-reset --seed 7`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().Float64Var(&flagViewScale, "scale", 2, "Resize factor (0 = fit to terminal)")
	viewCmd.Flags().IntVar(&flagViewTick, "tick", 100, "Tick interval in milliseconds")
	viewCmd.Flags().Int64Var(&flagViewSeed, "seed", 0, "Seed for the first episode")
	viewCmd.Flags().BoolVar(&flagViewAutoReset, "auto-reset", false, "Start a new episode when one ends")
}

// applyViewFlags lays explicitly set flags over the config.
func applyViewFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("scale") {
		cfg.Viewer.Scale = flagViewScale
	}
	if flags.Changed("tick") {
		cfg.Viewer.TickIntervalMS = flagViewTick
	}
	if flags.Changed("seed") {
		cfg.Viewer.Seed = flagViewSeed
	}
	if flags.Changed("auto-reset") {
		cfg.Viewer.AutoResetOnDone = flagViewAutoReset
	}
	return cfg.Validate()
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyViewFlags(cmd, &cfg); err != nil {
		return err
	}

	// Terminal size, for the picker and fit-to-terminal scale
	cols, rows := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		cols, rows = w, h
	}

	var envID string
	if len(args) == 1 {
		envID = args[0]
	} else {
		envID, err = tui.RunPicker(cols, rows)
		if err != nil {
			return err
		}
		if envID == "" {
			return nil // User quit the picker
		}
	}
	if err := checkEnv(envID); err != nil {
		return err
	}

	// The viewer owns the terminal, so logs go to a file.
	logFile, err := openLogFile(flagLogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := newLogger(logFile, "envview")

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	session, err := tui.NewSessionFromConfig(cfg, envID, cols, rows, currentUser(), store, logger)
	if err != nil {
		return err
	}
	return tui.Run(session)
}
