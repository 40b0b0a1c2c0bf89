package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/envview/internal/env"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available simulations",
	Long:  `Shows every registered simulation with its actions.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	descs := env.List()
	if len(descs) == 0 {
		fmt.Fprintln(out, "No simulations available.")
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Available simulations:")
	fmt.Fprintln(out)

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, d := range descs {
		maxIDLen = max(maxIDLen, len(d.ID))
	}

	fmt.Fprintf(out, "  %-*s  %-20s  %s\n", maxIDLen, "ID", "Title", "Actions")
	fmt.Fprintf(out, "  %-*s  %-20s  %s\n", maxIDLen, "--", "-----", "-------")

	for _, d := range descs {
		actions := "-"
		if e, err := env.Make(d.ID, cfg.EnvOptions(d.ID)); err == nil {
			actions = fmt.Sprintf("%d", e.ActionSpace().N)
			e.Close()
		}
		fmt.Fprintf(out, "  %-*s  %-20s  %s\n", maxIDLen, d.ID, d.Title, actions)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run 'envview view <id>' to watch one.")
	return nil
}
