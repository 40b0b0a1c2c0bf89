// Package pong implements an Atari-style Pong simulation.
// The agent controls the right (green) paddle, the CPU controls the left one.
// Actions follow the ALE Pong layout so key tables written for the Atari
// game work unchanged.
package pong

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/vovakirdan/envview/internal/core"
	"github.com/vovakirdan/envview/internal/env"
)

// Actions in ALE order.
const (
	ActionNoop core.Action = iota
	ActionFire
	ActionRight // paddle up
	ActionLeft  // paddle down
	ActionRightFire
	ActionLeftFire
)

var actionMeanings = []string{"NOOP", "FIRE", "RIGHT", "LEFT", "RIGHTFIRE", "LEFTFIRE"}

// Default settings, in pixels of the rendered frame.
const (
	DefaultWidth          = 80
	DefaultHeight         = 105
	DefaultWinScore       = 21
	DefaultPaddleHeight   = 8
	DefaultPaddleWidth    = 2
	DefaultPaddleOffset   = 4 // Distance from edge
	DefaultBallSpeed      = 1.0
	DefaultPaddleSpeed    = 2.0
	DefaultServeDelay     = 30 // Ticks before an automatic serve
	DefaultCPUReactionMin = 0.6
	DefaultCPUReactionMax = 0.85

	courtTop    = 12 // Rows reserved for the score band
	wallHeight  = 2
	minimumSize = 32
)

// Env implements env.Env for Pong.
type Env struct {
	// Paddles (top edge)
	agentY float64 // Right paddle
	cpuY   float64 // Left paddle

	// Ball
	ballX  float64
	ballY  float64
	ballVX float64
	ballVY float64

	agentScore int
	cpuScore   int

	done       bool
	serving    bool
	serveDelay int
	server     int // 1 = towards agent, 2 = towards CPU

	width        int
	height       int
	maxSteps     int
	winScore     int
	paddleHeight int
	cpuSkill     float64
	rng          *rand.Rand
	steps        int
	ready        bool
	closed       bool
}

// New creates a Pong simulation. It must be Reset before use.
func New(opts env.Options) (*Env, error) {
	w, h := opts.Width, opts.Height
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	if w < minimumSize || h < minimumSize {
		return nil, fmt.Errorf("pong: frame %dx%d smaller than %dx%d", w, h, minimumSize, minimumSize)
	}
	if opts.MaxSteps < 0 {
		return nil, fmt.Errorf("pong: negative max steps %d", opts.MaxSteps)
	}

	return &Env{
		width:        w,
		height:       h,
		maxSteps:     opts.MaxSteps,
		winScore:     DefaultWinScore,
		paddleHeight: DefaultPaddleHeight,
		cpuSkill:     DefaultCPUReactionMin,
	}, nil
}

// ID returns the registry identifier.
func (e *Env) ID() string {
	return "pong"
}

// Title returns the display name.
func (e *Env) Title() string {
	return "Pong"
}

// ActionSpace returns the six ALE Pong actions.
func (e *Env) ActionSpace() core.ActionSpace {
	return core.ActionSpace{N: len(actionMeanings), Meanings: actionMeanings}
}

// Reset starts a new match.
func (e *Env) Reset(seed int64) (env.Observation, error) {
	if e.closed {
		return nil, env.ErrClosed
	}

	e.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulation RNG, not security sensitive

	centerY := float64(e.courtBottom()+courtTop)/2.0 - float64(e.paddleHeight)/2.0
	e.agentY = centerY
	e.cpuY = centerY

	e.agentScore = 0
	e.cpuScore = 0
	e.done = false
	e.steps = 0
	e.cpuSkill = DefaultCPUReactionMin
	e.ready = true

	e.startServe(1)
	return e.Snapshot(), nil
}

// startServe centres the ball and waits for FIRE or the serve timeout.
func (e *Env) startServe(server int) {
	e.serving = true
	e.serveDelay = DefaultServeDelay
	e.server = server

	e.ballX = float64(e.width) / 2.0
	e.ballY = float64(e.courtBottom()+courtTop) / 2.0
	e.ballVX = 0
	e.ballVY = 0
}

// launch puts the ball in play towards the current server target.
func (e *Env) launch() {
	e.serving = false
	speed := DefaultBallSpeed
	if e.server == 1 {
		e.ballVX = speed
	} else {
		e.ballVX = -speed
	}
	angle := (e.rng.Float64() - 0.5) * 0.6 // -0.3 to 0.3
	e.ballVY = speed * angle
}

// Step advances the match by one tick.
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

	// A finished match stays finished until Reset.
	if e.done {
		return e.result(0), nil
	}

	e.steps++

	switch a {
	case ActionRight, ActionRightFire:
		e.agentY -= DefaultPaddleSpeed
	case ActionLeft, ActionLeftFire:
		e.agentY += DefaultPaddleSpeed
	}
	e.agentY = e.clampPaddle(e.agentY)

	fire := a == ActionFire || a == ActionRightFire || a == ActionLeftFire

	e.updateCPU()

	reward := 0.0
	if e.serving {
		e.serveDelay--
		if fire || e.serveDelay <= 0 {
			e.launch()
		}
	} else {
		reward = e.updateBall()
	}

	if e.steps%600 == 0 && e.cpuSkill < DefaultCPUReactionMax {
		e.cpuSkill += 0.02
	}

	return e.result(reward), nil
}

func (e *Env) result(reward float64) env.StepResult {
	return env.StepResult{
		Observation: e.Snapshot(),
		Reward:      reward,
		Done:        e.done,
		Truncated:   !e.done && e.maxSteps > 0 && e.steps >= e.maxSteps,
		Info: env.Info{
			"steps":       e.steps,
			"agent_score": e.agentScore,
			"cpu_score":   e.cpuScore,
		},
	}
}

// updateCPU moves the left paddle towards the ball with some imperfection.
func (e *Env) updateCPU() {
	if e.ballVX >= 0 {
		return
	}
	targetY := e.ballY - float64(e.paddleHeight)/2.0
	diff := targetY - e.cpuY
	moveSpeed := DefaultPaddleSpeed * e.cpuSkill
	if math.Abs(diff) > moveSpeed {
		if diff > 0 {
			e.cpuY += moveSpeed
		} else {
			e.cpuY -= moveSpeed
		}
	}
	e.cpuY = e.clampPaddle(e.cpuY)
}

// updateBall moves the ball, resolves collisions and returns the reward.
func (e *Env) updateBall() float64 {
	e.ballX += e.ballVX
	e.ballY += e.ballVY

	top := float64(courtTop + wallHeight)
	bottom := float64(e.courtBottom() - 1)
	if e.ballY <= top {
		e.ballY = top
		e.ballVY = -e.ballVY
	}
	if e.ballY >= bottom {
		e.ballY = bottom
		e.ballVY = -e.ballVY
	}

	cpuX := float64(DefaultPaddleOffset)
	agentX := float64(e.width - DefaultPaddleOffset - DefaultPaddleWidth)
	ph := float64(e.paddleHeight)

	if e.ballX <= cpuX+DefaultPaddleWidth && e.ballVX < 0 &&
		e.ballY >= e.cpuY && e.ballY <= e.cpuY+ph {
		e.ballX = cpuX + DefaultPaddleWidth
		e.deflect(e.cpuY)
	}

	if e.ballX >= agentX-1 && e.ballVX > 0 &&
		e.ballY >= e.agentY && e.ballY <= e.agentY+ph {
		e.ballX = agentX - 1
		e.deflect(e.agentY)
	}

	maxSpeed := DefaultBallSpeed * 3
	if math.Abs(e.ballVX) > maxSpeed {
		e.ballVX = maxSpeed * math.Copysign(1, e.ballVX)
	}
	if math.Abs(e.ballVY) > maxSpeed/2 {
		e.ballVY = maxSpeed / 2 * math.Copysign(1, e.ballVY)
	}

	switch {
	case e.ballX < 0:
		e.agentScore++
		e.scored(2)
		return 1
	case e.ballX > float64(e.width):
		e.cpuScore++
		e.scored(1)
		return -1
	}
	return 0
}

// deflect bounces the ball off a paddle whose top edge is at paddleY.
func (e *Env) deflect(paddleY float64) {
	e.ballVX = -e.ballVX * 1.02
	hitPos := (e.ballY - paddleY) / float64(e.paddleHeight)
	e.ballVY += (hitPos - 0.5) * 0.6
}

// scored ends the match or serves towards the side that conceded.
func (e *Env) scored(nextServer int) {
	if e.agentScore >= e.winScore || e.cpuScore >= e.winScore {
		e.done = true
		e.serving = false
		return
	}
	e.startServe(nextServer)
}

func (e *Env) clampPaddle(y float64) float64 {
	return core.ClampF(y, float64(courtTop+wallHeight), float64(e.courtBottom()-e.paddleHeight))
}

func (e *Env) courtBottom() int {
	return e.height - wallHeight
}

// Close releases the simulation.
func (e *Env) Close() error {
	e.closed = true
	return nil
}

func init() {
	env.Register("pong", "Pong", func(opts env.Options) (env.Env, error) {
		return New(opts)
	})
}
