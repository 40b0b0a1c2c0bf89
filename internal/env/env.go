// Package env defines the contract every simulation implements and a global
// registry of simulation factories. Simulations register themselves in init()
// functions, so commands can discover and construct them by ID.
package env

import "github.com/vovakirdan/envview/internal/core"

// Observation is whatever a simulation exposes as its state to an agent.
// The viewer never inspects it.
type Observation any

// Info carries auxiliary per-step diagnostics.
type Info map[string]any

// StepResult is returned by Env.Step after each transition.
type StepResult struct {
	Observation Observation
	Reward      float64
	Done        bool // Episode reached a terminal state
	Truncated   bool // Episode was cut off (e.g. step limit)
	Info        Info
}

// Finished reports whether the episode ended either way.
func (r StepResult) Finished() bool {
	return r.Done || r.Truncated
}

// Env is a stateful simulation advanced one discrete step per action.
type Env interface {
	// ID returns the registry identifier (e.g. "pong").
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// ActionSpace describes the accepted action indices.
	ActionSpace() core.ActionSpace

	// Reset starts a new episode seeded with seed.
	Reset(seed int64) (Observation, error)

	// Step applies one action. Index validation is the simulation's job;
	// an invalid index returns an error.
	Step(a core.Action) (StepResult, error)

	// Render draws the current state into a fresh frame.
	Render() (*core.Frame, error)

	// Close releases the simulation. Step and Render fail afterwards.
	Close() error
}

// Options are passed to a Factory when building a simulation.
// Zero values mean "use the simulation's default".
type Options struct {
	Width    int // Render width in pixels
	Height   int // Render height in pixels
	MaxSteps int // Truncation limit
}
