package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/envview/internal/config"
	"github.com/vovakirdan/envview/internal/env"
	"github.com/vovakirdan/envview/internal/eventloop"
	"github.com/vovakirdan/envview/internal/imaging"
	"github.com/vovakirdan/envview/internal/storage"
	"github.com/vovakirdan/envview/internal/viewer"
)

// Session end reasons, as persisted.
const (
	EndQuit       = "quit"
	EndError      = "error"
	EndDisconnect = "disconnect"
)

// SessionConfig describes one interactive viewer session.
type SessionConfig struct {
	Env      env.Env
	Keys     viewer.KeyMap
	Viewer   viewer.Options
	Interval time.Duration

	// Source drives ticks; nil uses a wall-clock timer.
	Source eventloop.TickSource

	User   string
	Store  *storage.Store // Optional
	Logger *log.Logger
}

// Session couples a simulation, its viewer loop and the event loop that
// drives it. The event loop goroutine is the only one touching the simulation.
type Session struct {
	env     env.Env
	keys    viewer.KeyMap
	viewer  *viewer.Loop
	events  *eventloop.Loop
	surface *ChannelSurface
	store   *storage.Store
	logger  *log.Logger
	user    string
	started time.Time

	// Newest mapped key not yet handed to the viewer, and whether a
	// callback delivering it is queued.
	latestKey atomic.Pointer[string]
	keyQueued atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	running  bool
	closed   bool
	quit     bool
	finished chan struct{}
	runErr   error
	closeErr error
}

// NewSession resets the simulation with the viewer seed, presents the first
// frame and prepares the event loop. The loop starts with Run.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Env == nil {
		return nil, &env.ConfigError{Field: "env", Err: errors.New("nil simulation")}
	}
	if cfg.Interval <= 0 {
		return nil, &env.ConfigError{Field: "tick_interval", Err: fmt.Errorf("must be positive, got %v", cfg.Interval)}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Viewer.Logger == nil {
		cfg.Viewer.Logger = logger
	}
	src := cfg.Source
	if src == nil {
		src = eventloop.NewTimerSource()
	}

	if _, err := cfg.Env.Reset(cfg.Viewer.Seed); err != nil {
		return nil, &viewer.SimulationError{Op: "reset", Err: err}
	}

	surface := NewChannelSurface()
	v, err := viewer.New(cfg.Env, surface, cfg.Keys, cfg.Viewer)
	if err != nil {
		return nil, err
	}

	events := eventloop.New(src, cfg.Interval, eventloop.WithLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		env:      cfg.Env,
		keys:     cfg.Keys,
		viewer:   v,
		events:   events,
		surface:  surface,
		store:    cfg.Store,
		logger:   logger,
		user:     cfg.User,
		started:  time.Now(),
		ctx:      ctx,
		cancel:   cancel,
		finished: make(chan struct{}),
	}
	events.SetTick(func() error {
		s.flushKey()
		return v.OnTick()
	})
	return s, nil
}

// NewSessionFromConfig builds the simulation envID and a session around it
// using cfg. A viewer scale of 0 is resolved against a cols x rows terminal.
func NewSessionFromConfig(cfg config.Config, envID string, cols, rows int, user string,
	store *storage.Store, logger *log.Logger,
) (*Session, error) {
	e, err := env.Make(envID, cfg.EnvOptions(envID))
	if err != nil {
		return nil, err
	}

	keys, err := cfg.KeyMap(envID)
	if err != nil {
		e.Close()
		return nil, err
	}

	scale := cfg.Viewer.Scale
	if scale == 0 {
		if _, err := e.Reset(cfg.Viewer.Seed); err != nil {
			e.Close()
			return nil, &viewer.SimulationError{Op: "reset", Err: err}
		}
		frame, err := e.Render()
		if err != nil {
			e.Close()
			return nil, &viewer.SimulationError{Op: "render", Err: err}
		}
		scale = FitScale(frame.Width, frame.Height, cols, rows)
	}
	conv, err := cfg.Viewer.Converter(scale)
	if err != nil {
		e.Close()
		return nil, err
	}

	s, err := NewSession(SessionConfig{
		Env:  e,
		Keys: keys,
		Viewer: viewer.Options{
			Converter:       conv,
			DefaultAction:   cfg.DefaultAction(),
			AutoResetOnDone: cfg.Viewer.AutoResetOnDone,
			Seed:            cfg.Viewer.Seed,
		},
		Interval: cfg.Viewer.TickInterval(),
		User:     user,
		Store:    store,
		Logger:   logger,
	})
	if err != nil {
		e.Close()
		return nil, err
	}
	s.logger.Info("session created", "env", envID, "user", user, "scale", scale,
		"interval", cfg.Viewer.TickInterval())
	return s, nil
}

// Run drives the event loop until Stop, Close or a fatal error.
func (s *Session) Run() error {
	s.mu.Lock()
	if s.closed || s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	err := s.events.Run(s.ctx)
	if err == nil {
		err = s.viewer.Err()
	}

	s.mu.Lock()
	s.runErr = err
	s.mu.Unlock()
	close(s.finished)
	return err
}

// Key forwards a key press to the viewer on the event loop goroutine without
// waiting for it. Presses are coalesced: only the newest mapped key is kept
// until the loop takes it, and unmapped keys never replace it. Key reports
// false once the loop has exited.
func (s *Session) Key(k string) bool {
	select {
	case <-s.events.Done():
		return false
	default:
	}
	if _, ok := s.keys.Lookup(k); !ok {
		s.logger.Debug("ignored key", "key", k)
		return true
	}

	s.latestKey.Store(&k)
	if s.keyQueued.CompareAndSwap(false, true) {
		if !s.events.TryPost(s.deliverKey) {
			// The next tick flushes the key instead.
			s.keyQueued.Store(false)
		}
	}
	return true
}

func (s *Session) deliverKey() error {
	s.flushKey()
	return nil
}

// flushKey hands the newest pending key to the viewer. It runs on the event
// loop goroutine only.
func (s *Session) flushKey() {
	s.keyQueued.Store(false)
	if k := s.latestKey.Swap(nil); k != nil {
		s.viewer.OnKey(*k)
	}
}

// Stop asks the loop to stop after the callbacks already queued.
func (s *Session) Stop() {
	s.mu.Lock()
	s.quit = true
	s.mu.Unlock()

	ok := s.events.Post(func() error {
		s.viewer.Stop()
		return eventloop.ErrStop
	})
	if !ok {
		s.cancel()
	}
}

// Frames delivers presented images.
func (s *Session) Frames() <-chan *imaging.Image {
	return s.surface.Frames()
}

// Status returns the viewer counters.
func (s *Session) Status() viewer.Status {
	return s.viewer.Status()
}

// EnvID returns the simulation identifier.
func (s *Session) EnvID() string {
	return s.env.ID()
}

// Title returns the simulation display name.
func (s *Session) Title() string {
	return s.env.Title()
}

// KeyMap returns the help bindings for this session.
func (s *Session) KeyMap() ViewerKeyMap {
	return NewViewerKeyMap(s.keys, s.env.ActionSpace())
}

// Close stops the loop, waits for it, closes the simulation and records the
// session. It returns the error that ended the loop, if any. Close is
// idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		err := s.closeErr
		s.mu.Unlock()
		return err
	}
	s.closed = true
	running := s.running
	s.mu.Unlock()

	s.cancel()
	if running {
		<-s.finished
	}
	s.viewer.Stop()

	s.mu.Lock()
	runErr := s.runErr
	reason := EndDisconnect
	switch {
	case runErr != nil:
		reason = EndError
	case s.quit:
		reason = EndQuit
	}
	s.mu.Unlock()

	if err := s.env.Close(); err != nil {
		s.logger.Warn("closing simulation", "env", s.env.ID(), "error", err)
	}

	status := s.viewer.Status()
	duration := time.Since(s.started)
	s.logger.Info("session ended", "env", s.env.ID(), "user", s.user, "ticks", status.Ticks,
		"duration", duration.Round(time.Millisecond), "reason", reason)

	if s.store != nil {
		_, err := s.store.SaveSession(storage.Session{
			EnvID:     s.env.ID(),
			User:      s.user,
			Ticks:     status.Ticks,
			Duration:  duration,
			EndReason: reason,
		})
		if err != nil {
			s.logger.Warn("could not save session", "error", err)
		}
	}

	s.mu.Lock()
	s.closeErr = runErr
	s.mu.Unlock()
	return runErr
}
