package main

import (
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/envview/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagDefaultEnv  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the envview SSH server",
	Long: `Start an SSH server that gives every connection its own viewer
session: a fresh simulation instance, event loop and terminal model.

A client may name a simulation as the SSH command; otherwise the server
default (--env) is used, or a picker is shown. Sessions are recorded in
the server database with the SSH user name.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.envview/host_key

Examples:
  envview serve                           # Listen on :23234 with auto-generated key
  envview serve --ssh :2222               # Listen on port 2222
  envview serve --env cartpole            # Serve cartpole by default
  envview serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234
  ssh -t localhost -p 23234 pong`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default: server.address from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes (default: from config)")
	serveCmd.Flags().StringVar(&flagDefaultEnv, "env", "", "Simulation served when the client names none")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagSSHAddr != "" {
		cfg.Server.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.Server.HostKey = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.Server.IdleTimeoutMinutes = flagIdleTimeout
	}

	logger := newLogger(os.Stderr, "envview-ssh")
	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     cfg.Server.Address,
		HostKeyPath: expandHome(cfg.Server.HostKey),
		DBPath:      cfg.Storage.Path,
		IdleTimeout: cfg.Server.IdleTimeout(),
		DefaultEnv:  flagDefaultEnv,
		App:         cfg,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("cannot create server: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Starting envview SSH server on %s\n", cfg.Server.Address)
	fmt.Fprintf(out, "Connect with: ssh localhost -p %s\n", port(cfg.Server.Address))
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	return server.ListenAndServe()
}

// port returns the port part of a host:port address.
func port(addr string) string {
	if _, p, err := net.SplitHostPort(addr); err == nil {
		return p
	}
	return addr
}
