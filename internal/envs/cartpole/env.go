// Package cartpole implements the classic cart-pole balancing task with the
// CartPole-v1 constants: explicit Euler integration at 50 Hz, a 12 degree
// failure angle and a 500 step episode limit.
package cartpole

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/vovakirdan/envview/internal/core"
	"github.com/vovakirdan/envview/internal/env"
)

// Actions
const (
	ActionPushLeft core.Action = iota
	ActionPushRight
)

// Physical constants.
const (
	Gravity    = 9.8
	CartMass   = 1.0
	PoleMass   = 0.1
	PoleLength = 0.5 // Half the pole length
	ForceMag   = 10.0
	Tau        = 0.02 // Seconds between state updates

	ThetaThreshold = 12 * 2 * math.Pi / 360
	XThreshold     = 2.4
)

// Defaults
const (
	DefaultWidth    = 96
	DefaultHeight   = 64
	DefaultMaxSteps = 500
)

// Observation is [x, x_dot, theta, theta_dot].
type Observation [4]float64

// Env implements env.Env for cart-pole.
type Env struct {
	state Observation

	width    int
	height   int
	maxSteps int
	steps    int
	done     bool
	rng      *rand.Rand
	ready    bool
	closed   bool
}

// New creates a cart-pole simulation. It must be Reset before use.
func New(opts env.Options) (*Env, error) {
	w, h := opts.Width, opts.Height
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	if w < 16 || h < 16 {
		return nil, fmt.Errorf("cartpole: frame %dx%d too small", w, h)
	}
	maxSteps := opts.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}
	if maxSteps < 0 {
		return nil, fmt.Errorf("cartpole: negative max steps %d", maxSteps)
	}

	return &Env{width: w, height: h, maxSteps: maxSteps}, nil
}

// ID returns the registry identifier.
func (e *Env) ID() string {
	return "cartpole"
}

// Title returns the display name.
func (e *Env) Title() string {
	return "CartPole"
}

// ActionSpace returns push-left / push-right.
// Index 0 pushes left; there is no true no-op in this task.
func (e *Env) ActionSpace() core.ActionSpace {
	return core.ActionSpace{N: 2, Meanings: []string{"PUSH_LEFT", "PUSH_RIGHT"}}
}

// Reset samples every state component uniformly from [-0.05, 0.05].
func (e *Env) Reset(seed int64) (env.Observation, error) {
	if e.closed {
		return nil, env.ErrClosed
	}
	e.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulation RNG
	for i := range e.state {
		e.state[i] = e.rng.Float64()*0.1 - 0.05
	}
	e.steps = 0
	e.done = false
	e.ready = true
	return e.state, nil
}

// State returns the current observation.
func (e *Env) State() Observation {
	return e.state
}

// Step applies a push and integrates one Euler step.
func (e *Env) Step(a core.Action) (env.StepResult, error) {
	if e.closed {
		return env.StepResult{}, env.ErrClosed
	}
	if !e.ready {
		return env.StepResult{}, env.ErrNotReset
	}
	if !e.ActionSpace().Contains(a) {
		return env.StepResult{}, fmt.Errorf("%w: %d not in [0, 2)", env.ErrInvalidAction, a)
	}

	// Stepping past termination keeps the episode finished with no reward.
	if e.done {
		return env.StepResult{Observation: e.state, Done: true, Info: env.Info{"steps": e.steps}}, nil
	}

	force := -ForceMag
	if a == ActionPushRight {
		force = ForceMag
	}

	x, xDot, theta, thetaDot := e.state[0], e.state[1], e.state[2], e.state[3]
	cosT := math.Cos(theta)
	sinT := math.Sin(theta)

	totalMass := CartMass + PoleMass
	poleMassLength := PoleMass * PoleLength

	temp := (force + poleMassLength*thetaDot*thetaDot*sinT) / totalMass
	thetaAcc := (Gravity*sinT - cosT*temp) /
		(PoleLength * (4.0/3.0 - PoleMass*cosT*cosT/totalMass))
	xAcc := temp - poleMassLength*thetaAcc*cosT/totalMass

	x += Tau * xDot
	xDot += Tau * xAcc
	theta += Tau * thetaDot
	thetaDot += Tau * thetaAcc
	e.state = Observation{x, xDot, theta, thetaDot}
	e.steps++

	e.done = x < -XThreshold || x > XThreshold ||
		theta < -ThetaThreshold || theta > ThetaThreshold

	return env.StepResult{
		Observation: e.state,
		Reward:      1,
		Done:        e.done,
		Truncated:   !e.done && e.steps >= e.maxSteps,
		Info:        env.Info{"steps": e.steps},
	}, nil
}

// Close releases the simulation.
func (e *Env) Close() error {
	e.closed = true
	return nil
}

func init() {
	env.Register("cartpole", "CartPole", func(opts env.Options) (env.Env, error) {
		return New(opts)
	})
}
