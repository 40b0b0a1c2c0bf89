package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/envview/internal/config"
	"github.com/vovakirdan/envview/internal/env"
	"github.com/vovakirdan/envview/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.envview/host_key.
	HostKeyPath string

	// DBPath is the path to the session database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// DefaultEnv is served when the client does not name a simulation
	// (ssh -t host pong selects one). Empty shows the picker.
	DefaultEnv string

	// App supplies viewer, key map and simulation settings.
	App config.Config

	// Logger receives server and session logs. Defaults to stderr.
	Logger *log.Logger
}

// SSHServer wraps a Wish SSH server that serves one viewer per connection.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "envview-ssh",
		})
	}

	if cfg.DefaultEnv != "" && !env.Exists(cfg.DefaultEnv) {
		return nil, &env.ConfigError{Field: "default env", Err: fmt.Errorf("%w %q", env.ErrUnknownEnv, cfg.DefaultEnv)}
	}

	// Open storage
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open session database", "error", err)
		// Continue without storage
		store = nil
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		dir := config.Dir()
		if dir == "" {
			return nil, errors.New("cannot get home directory for host key")
		}
		hostKeyPath = filepath.Join(dir, "host_key")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// sessionEnv picks the simulation for an SSH session: the first word of the
// requested command, or the server default.
func (s *SSHServer) sessionEnv(command []string) string {
	if len(command) > 0 && command[0] != "" {
		return command[0]
	}
	return s.config.DefaultEnv
}

// teaHandler creates a Bubble Tea model for each SSH session: the viewer
// for the requested simulation, or the picker when none was named.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		wish.Errorln(sshSession, "envview needs a terminal: connect with ssh -t")
		return nil, nil
	}

	user := sshSession.User()
	build := func(envID string, cols, rows int) (*Session, error) {
		return NewSessionFromConfig(s.config.App, envID, cols, rows, user, s.store,
			s.logger.With("user", user))
	}
	renderer := bubbletea.MakeRenderer(sshSession)
	opts := []tea.ProgramOption{tea.WithAltScreen()}

	envID := s.sessionEnv(sshSession.Command())
	if envID == "" {
		host := NewHostModel(build, renderer, pty.Window.Width, pty.Window.Height)
		s.closeOnDisconnect(sshSession, host)
		return host, opts
	}

	session, err := build(envID, pty.Window.Width, pty.Window.Height)
	if err != nil {
		s.logger.Error("cannot start session", "user", user, "env", envID, "error", err)
		wish.Errorln(sshSession, err)
		return nil, nil
	}
	s.closeOnDisconnect(sshSession, session)
	return NewModel(session, renderer), opts
}

// closeOnDisconnect releases c when the SSH session ends; the program ends
// with it.
func (s *SSHServer) closeOnDisconnect(sshSession ssh.Session, c io.Closer) {
	go func() {
		<-sshSession.Context().Done()
		if err := c.Close(); err != nil {
			s.logger.Warn("session ended with error", "user", sshSession.User(), "error", err)
		}
	}()
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("connection opened",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"command", sshSession.Command(),
		)
		next(sshSession)
		s.logger.Info("connection closed",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "env", s.config.DefaultEnv)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
		s.logger.Info("shutting down...")
		return s.Shutdown()
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		s.Shutdown()
		return err
	}
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)

	if s.store != nil {
		s.store.Close()
	}
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
