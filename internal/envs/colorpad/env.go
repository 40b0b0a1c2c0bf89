// Package colorpad is a paint-box simulation: a colour gradient whose channels
// are adjusted, inverted, noised or cleared by discrete actions. It never ends,
// which makes it a handy target for checking the viewer on its own.
package colorpad

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/envview/internal/core"
	"github.com/vovakirdan/envview/internal/env"
)

// Actions
const (
	ActionNoop core.Action = iota
	ActionRedUp
	ActionGreenUp
	ActionBlueUp
	ActionRedDown
	ActionGreenDown
	ActionBlueDown
	ActionInvert
	ActionNoise
	ActionClear
	ActionReset
)

var actionMeanings = []string{
	"NOOP",
	"RED_UP", "GREEN_UP", "BLUE_UP",
	"RED_DOWN", "GREEN_DOWN", "BLUE_DOWN",
	"INVERT", "NOISE", "CLEAR", "RESET",
}

// Defaults
const (
	DefaultWidth   = 60
	DefaultHeight  = 40
	ChannelStep    = 20
	NoiseAmplitude = 30
)

// Env implements env.Env for the colour pad.
type Env struct {
	canvas   *core.Frame
	width    int
	height   int
	maxSteps int
	steps    int
	rng      *rand.Rand
	ready    bool
	closed   bool
}

// New creates a colour pad. It must be Reset before use.
func New(opts env.Options) (*Env, error) {
	w, h := opts.Width, opts.Height
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("colorpad: invalid size %dx%d", w, h)
	}
	if opts.MaxSteps < 0 {
		return nil, fmt.Errorf("colorpad: negative max steps %d", opts.MaxSteps)
	}
	// MaxSteps of zero means the pad is never truncated.
	return &Env{width: w, height: h, maxSteps: opts.MaxSteps}, nil
}

// ID returns the registry identifier.
func (e *Env) ID() string {
	return "colorpad"
}

// Title returns the display name.
func (e *Env) Title() string {
	return "Color Pad"
}

// ActionSpace returns the eleven paint actions.
func (e *Env) ActionSpace() core.ActionSpace {
	return core.ActionSpace{N: len(actionMeanings), Meanings: actionMeanings}
}

// Reset paints the initial gradient.
func (e *Env) Reset(seed int64) (env.Observation, error) {
	if e.closed {
		return nil, env.ErrClosed
	}
	e.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // noise only
	e.canvas = gradient(e.width, e.height)
	e.steps = 0
	e.ready = true
	return e.canvas.Clone(), nil
}

// gradient builds the starting image: red across, green down, blue diagonal.
func gradient(w, h int) *core.Frame {
	f := core.NewFrame(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, core.RGB{
				R: core.ClampByte(x * 255 / w),
				G: core.ClampByte(y * 255 / h),
				B: core.ClampByte((x + y) * 255 / (w + h)),
			})
		}
	}
	return f
}

// Step applies one paint action.
func (e *Env) Step(a core.Action) (env.StepResult, error) {
	if e.closed {
		return env.StepResult{}, env.ErrClosed
	}
	if !e.ready {
		return env.StepResult{}, env.ErrNotReset
	}
	if !e.ActionSpace().Contains(a) {
		return env.StepResult{}, fmt.Errorf("%w: %d not in [0, %d)", env.ErrInvalidAction, a, len(actionMeanings))
	}

	switch a {
	case ActionRedUp:
		e.adjust(0, ChannelStep)
	case ActionGreenUp:
		e.adjust(1, ChannelStep)
	case ActionBlueUp:
		e.adjust(2, ChannelStep)
	case ActionRedDown:
		e.adjust(0, -ChannelStep)
	case ActionGreenDown:
		e.adjust(1, -ChannelStep)
	case ActionBlueDown:
		e.adjust(2, -ChannelStep)
	case ActionInvert:
		for i, v := range e.canvas.Pix {
			e.canvas.Pix[i] = 255 - v
		}
	case ActionNoise:
		for i, v := range e.canvas.Pix {
			e.canvas.Pix[i] = core.ClampByte(int(v) + e.rng.Intn(2*NoiseAmplitude) - NoiseAmplitude)
		}
	case ActionClear:
		e.canvas.Fill(core.RGB{})
	case ActionReset:
		e.canvas = gradient(e.width, e.height)
	}

	e.steps++
	return env.StepResult{
		Observation: e.canvas.Clone(),
		Truncated:   e.maxSteps > 0 && e.steps >= e.maxSteps,
		Info:        env.Info{"steps": e.steps, "action": actionMeanings[a]},
	}, nil
}

// adjust adds delta to one channel of every pixel, clipped to [0, 255].
func (e *Env) adjust(channel, delta int) {
	for i := channel; i < len(e.canvas.Pix); i += core.Channels {
		e.canvas.Pix[i] = core.ClampByte(int(e.canvas.Pix[i]) + delta)
	}
}

// Render returns a copy of the canvas.
func (e *Env) Render() (*core.Frame, error) {
	if e.closed {
		return nil, env.ErrClosed
	}
	if !e.ready {
		return nil, env.ErrNotReset
	}
	return e.canvas.Clone(), nil
}

// Close releases the simulation.
func (e *Env) Close() error {
	e.closed = true
	return nil
}

func init() {
	env.Register("colorpad", "Color Pad", func(opts env.Options) (env.Env, error) {
		return New(opts)
	})
}
