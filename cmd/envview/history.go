package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/envview/internal/env"
	"github.com/vovakirdan/envview/internal/platform/tui"
	"github.com/vovakirdan/envview/internal/storage"
)

var (
	flagHistoryLimit int
	flagHistoryClear bool
	flagHistoryPlain bool
)

var historyCmd = &cobra.Command{
	Use:   "history [env]",
	Short: "Show recorded episodes and viewer sessions",
	Long: `Display recent episodes with the best one per simulation, and recent
viewer sessions. On a terminal this opens an interactive table; otherwise a
plain listing is printed.

Examples:
  envview history
  envview history cartpole
  envview history pong --plain --limit 20
  envview history pong --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 10, "Rows listed in plain mode")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete the recorded history")
	historyCmd.Flags().BoolVar(&flagHistoryPlain, "plain", false, "Print a plain listing")
}

func runHistory(cmd *cobra.Command, args []string) error {
	var envID string
	if len(args) == 1 {
		envID = args[0]
		if err := checkEnv(envID); err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if flagHistoryClear {
		if err := store.Clear(envID); err != nil {
			return err
		}
		if envID == "" {
			fmt.Fprintln(out, "History cleared.")
		} else {
			fmt.Fprintf(out, "History of %s cleared.\n", envID)
		}
		return nil
	}

	envs := []string{envID}
	if envID == "" {
		envs = envs[:0]
		for _, d := range env.List() {
			envs = append(envs, d.ID)
		}
	}

	fd := int(os.Stdout.Fd())
	if !flagHistoryPlain && term.IsTerminal(fd) {
		cols, rows := 80, 24
		if w, h, termErr := term.GetSize(fd); termErr == nil {
			cols, rows = w, h
		}
		return tui.RunHistory(store, envs, cols, rows)
	}

	for _, id := range envs {
		if err := printHistory(out, store, id, flagHistoryLimit); err != nil {
			return err
		}
	}
	return nil
}

func printHistory(out io.Writer, store *storage.Store, envID string, limit int) error {
	episodes, err := store.RecentEpisodes(envID, limit)
	if err != nil {
		return err
	}
	sessions, err := store.RecentSessions(envID, limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "History - %s\n\n", envID)
	if len(episodes) == 0 && len(sessions) == 0 {
		fmt.Fprintln(out, "  Nothing recorded yet.")
		fmt.Fprintln(out)
		return nil
	}

	if len(episodes) > 0 {
		fmt.Fprintf(out, "  %-6s  %-6s  %-10s  %-9s  %s\n", "Seed", "Steps", "Reward", "End", "Date")
		fmt.Fprintf(out, "  %-6s  %-6s  %-10s  %-9s  %s\n", "----", "-----", "------", "---", "----")
		for _, e := range episodes {
			fmt.Fprintf(out, "  %-6d  %-6d  %-10.2f  %-9s  %s\n",
				e.Seed, e.Steps, e.TotalReward, endLabel(e.Terminated), e.CreatedAt.Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(out)

		best, err := store.BestEpisode(envID)
		if err != nil {
			return err
		}
		if best != nil {
			fmt.Fprintf(out, "  Best: %.2f (seed %d, %d steps)\n", best.TotalReward, best.Seed, best.Steps)
		}

		stats, err := store.Stats(envID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  Episodes: %d  mean reward: %.2f  mean steps: %.1f  last run: %s\n\n",
			stats.Episodes, stats.AvgReward, stats.AvgSteps, stats.LastRun.Format("2006-01-02 15:04"))
	}

	if len(sessions) > 0 {
		fmt.Fprintf(out, "  %-12s  %-8s  %-10s  %-10s  %s\n", "User", "Ticks", "Duration", "End", "Date")
		fmt.Fprintf(out, "  %-12s  %-8s  %-10s  %-10s  %s\n", "----", "-----", "--------", "---", "----")
		for _, s := range sessions {
			fmt.Fprintf(out, "  %-12s  %-8d  %-10s  %-10s  %s\n",
				s.User, s.Ticks, s.Duration.Round(100*time.Millisecond), s.EndReason, s.CreatedAt.Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(out)
	}
	return nil
}
