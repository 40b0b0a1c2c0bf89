// Package viewer drives a simulation from keyboard input on a fixed tick.
//
// Key presses only write a single-slot mailbox. Each tick takes the pending
// action (resetting the slot to the no-op), steps the simulation once with it,
// renders, converts and presents the new frame. The loop relies on its host to
// call OnKey and OnTick one at a time; see package eventloop.
package viewer

import (
	"errors"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/envview/internal/core"
	"github.com/vovakirdan/envview/internal/env"
	"github.com/vovakirdan/envview/internal/imaging"
)

// ErrBusy is returned when OnTick is entered while another tick is running.
var ErrBusy = errors.New("viewer: tick already in progress")

// Simulation is the part of env.Env the loop consumes.
type Simulation interface {
	Reset(seed int64) (env.Observation, error)
	Step(a core.Action) (env.StepResult, error)
	Render() (*core.Frame, error)
}

// Surface displays converted frames. Each Present replaces the previous image.
type Surface interface {
	Present(img *imaging.Image) error
}

// State is the loop lifecycle: Running until closed or a fatal error.
type State int32

const (
	StateRunning State = iota
	StateStopped
)

// String returns a lower-case name for the state.
func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// Options configure a Loop.
type Options struct {
	Converter     imaging.Converter
	DefaultAction core.Action

	// AutoResetOnDone resets the simulation when a step reports done or
	// truncated. Off by default: a finished episode keeps being stepped.
	AutoResetOnDone bool

	// Seed is the base seed for automatic resets; episode n uses Seed+n.
	Seed int64

	Logger *log.Logger
}

// Status is a snapshot of loop counters, safe to read from any goroutine.
type Status struct {
	State      State
	Ticks      uint64
	LastAction core.Action
	Pending    core.Action
	Episodes   int64
}

// Loop is the interactive viewer loop.
type Loop struct {
	sim     Simulation
	surface Surface
	keys    KeyMap
	pending *Mailbox
	opts    Options
	logger  *log.Logger

	state      atomic.Int32
	ticks      atomic.Uint64
	lastAction atomic.Int64
	episodes   atomic.Int64
	inTick     atomic.Bool
	err        atomic.Pointer[SimulationError]
}

// New wraps an already reset simulation and presents its first frame.
// Invalid options are reported as *env.ConfigError; a failure to render or
// present the first frame as *SimulationError.
func New(sim Simulation, surface Surface, keys KeyMap, opts Options) (*Loop, error) {
	if sim == nil {
		return nil, &env.ConfigError{Field: "simulation", Err: errors.New("nil simulation")}
	}
	if surface == nil {
		return nil, &env.ConfigError{Field: "surface", Err: errors.New("nil surface")}
	}
	if err := opts.Converter.Validate(); err != nil {
		return nil, &env.ConfigError{Field: "converter", Err: err}
	}
	if opts.DefaultAction < 0 {
		return nil, &env.ConfigError{Field: "default_action", Err: errors.New("negative action index")}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	l := &Loop{
		sim:     sim,
		surface: surface,
		keys:    keys,
		pending: NewMailbox(opts.DefaultAction),
		opts:    opts,
		logger:  logger,
	}
	l.lastAction.Store(int64(opts.DefaultAction))

	if err := l.present(0); err != nil {
		return nil, err
	}
	return l, nil
}

// OnKey records the action bound to key as the pending action.
// It never touches the simulation. Unbound keys are ignored and reported
// with false.
func (l *Loop) OnKey(key string) bool {
	a, ok := l.keys.Lookup(key)
	if !ok {
		l.logger.Debug("ignored key", "key", key)
		return false
	}
	l.pending.Post(a)
	l.logger.Debug("key", "key", key, "action", int(a))
	return true
}

// OnTick advances the simulation by one step with the pending action and
// presents the result. Any failure stops the loop and is returned; nothing is
// presented for a failed tick.
func (l *Loop) OnTick() error {
	if l.State() == StateStopped {
		return ErrStopped
	}
	if !l.inTick.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer l.inTick.Store(false)

	tick := l.ticks.Add(1)
	a := l.pending.Take()
	l.lastAction.Store(int64(a))
	l.logger.Debug("step", "tick", tick, "action", int(a))

	res, err := l.sim.Step(a)
	if err != nil {
		return l.fail("step", tick, err)
	}

	if l.opts.AutoResetOnDone && res.Finished() {
		n := l.episodes.Add(1)
		l.logger.Info("episode finished, resetting", "tick", tick, "episode", n,
			"done", res.Done, "truncated", res.Truncated)
		if _, err := l.sim.Reset(l.opts.Seed + n); err != nil {
			return l.fail("reset", tick, err)
		}
	}

	return l.present(tick)
}

// present renders, converts and presents the current simulation state.
func (l *Loop) present(tick uint64) error {
	frame, err := l.sim.Render()
	if err != nil {
		return l.fail("render", tick, err)
	}
	img, err := l.opts.Converter.Convert(frame)
	if err != nil {
		return l.fail("convert", tick, err)
	}
	if err := l.surface.Present(img); err != nil {
		return l.fail("present", tick, err)
	}
	return nil
}

func (l *Loop) fail(op string, tick uint64, err error) error {
	simErr := &SimulationError{Op: op, Tick: tick, Err: err}
	l.err.CompareAndSwap(nil, simErr)
	l.state.Store(int32(StateStopped))
	l.logger.Error("viewer stopped", "op", op, "tick", tick, "error", err)
	return simErr
}

// Stop moves the loop to Stopped. It is idempotent.
func (l *Loop) Stop() {
	if l.state.Swap(int32(StateStopped)) == int32(StateRunning) {
		l.logger.Debug("viewer stopped", "ticks", l.ticks.Load())
	}
}

// State returns the lifecycle state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Err returns the failure that stopped the loop, or nil.
func (l *Loop) Err() error {
	if e := l.err.Load(); e != nil {
		return e
	}
	return nil
}

// Pending returns the action the next tick will submit.
func (l *Loop) Pending() core.Action {
	return l.pending.Peek()
}

// Status returns a snapshot of the loop counters.
func (l *Loop) Status() Status {
	return Status{
		State:      l.State(),
		Ticks:      l.ticks.Load(),
		LastAction: core.Action(l.lastAction.Load()),
		Pending:    l.pending.Peek(),
		Episodes:   l.episodes.Load(),
	}
}
