// envview watches and drives pixel simulations in the terminal.
//
// Usage:
//
//	envview list             - List available simulations
//	envview view [env]       - Watch a simulation and drive it with the keyboard
//	envview run <env>        - Run random-action episodes headless
//	envview grab <env>       - Save a single frame as PNG
//	envview history [env]    - Show recorded episodes and sessions
//	envview serve            - Start SSH server for remote viewing
//
// Global flags:
//
//	--config <path>    - Config file (default: ~/.envview/config.yaml)
//	--db <path>        - Database path (default: from config)
//	--log-file <path>  - Log file used while the viewer owns the terminal
//	--debug            - Log at debug level
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/envview/internal/config"
	"github.com/vovakirdan/envview/internal/env"
	"github.com/vovakirdan/envview/internal/storage"

	// Import simulations to register them
	_ "github.com/vovakirdan/envview/internal/envs/cartpole"
	_ "github.com/vovakirdan/envview/internal/envs/colorpad"
	_ "github.com/vovakirdan/envview/internal/envs/pong"
)

var (
	// Global flags
	flagConfig  string
	flagDBPath  string
	flagLogFile string
	flagDebug   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "envview",
	Short: "envview - watch and drive pixel simulations in your terminal",
	Long: `envview renders pixel simulations in the terminal and feeds them
discrete actions from the keyboard, one step per tick.

Available commands:
  list     - Show all available simulations
  view     - Watch a simulation interactively
  run      - Run random-action episodes without a display
  grab     - Save one frame as a PNG image
  history  - Show recorded episodes and viewer sessions
  serve    - Start SSH server for remote viewing

Examples:
  envview list
  envview view pong
  envview view cartpole --scale 0
  envview run cartpole --episodes 20 --plot
  envview grab pong --out pong.png
  envview serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to database (default: storage.path from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "~/.envview/envview.log", "Log file used by the viewer")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Log at debug level")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(grabCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the config and applies global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	return cfg, nil
}

// newLogger creates a logger writing to w.
func newLogger(w io.Writer, prefix string) *log.Logger {
	level := log.InfoLevel
	if flagDebug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
}

// openLogFile opens the viewer log file for appending.
func openLogFile(path string) (*os.File, error) {
	path = expandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file: %w", err)
	}
	return f, nil
}

// openStore opens the database, logging a warning on failure.
// Viewing and running still work without storage.
func openStore(cfg config.Config, logger *log.Logger) *storage.Store {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Warn("could not open database", "path", cfg.Storage.Path, "error", err)
		return nil
	}
	return store
}

// checkEnv reports an unregistered simulation as *env.ConfigError.
func checkEnv(id string) error {
	if err := env.Check(id); err != nil {
		return fmt.Errorf("%w (run 'envview list')", err)
	}
	return nil
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// currentUser returns the local user name recorded with sessions.
func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}
