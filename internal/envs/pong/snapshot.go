package pong

import "math"

// Snapshot is the observation returned by Reset and Step.
// Uses primitive types only so it can be logged and compared directly.
type Snapshot struct {
	Step       uint64
	BallX      int
	BallY      int
	BallVX     int // Velocity scaled by 1000
	BallVY     int // Velocity scaled by 1000
	AgentY     int
	CPUY       int
	AgentScore int
	CPUScore   int
	Serving    bool
	Done       bool
}

// Snapshot returns the current match state.
func (e *Env) Snapshot() Snapshot {
	return Snapshot{
		Step:       uint64(max(0, e.steps)), //nolint:gosec // steps is never negative
		BallX:      int(e.ballX),
		BallY:      int(e.ballY),
		BallVX:     int(e.ballVX * 1000),
		BallVY:     int(e.ballVY * 1000),
		AgentY:     int(e.agentY),
		CPUY:       int(e.cpuY),
		AgentScore: e.agentScore,
		CPUScore:   e.cpuScore,
		Serving:    e.serving,
		Done:       e.done,
	}
}

// ApplySnapshot restores a match from a snapshot.
// Used to set up specific positions, e.g. a ball about to cross a goal line.
func (e *Env) ApplySnapshot(snap Snapshot) {
	e.steps = int(min(snap.Step, math.MaxInt)) //nolint:gosec // clamped to max int
	e.ballX = float64(snap.BallX)
	e.ballY = float64(snap.BallY)
	e.ballVX = float64(snap.BallVX) / 1000.0
	e.ballVY = float64(snap.BallVY) / 1000.0
	e.agentY = float64(snap.AgentY)
	e.cpuY = float64(snap.CPUY)
	e.agentScore = snap.AgentScore
	e.cpuScore = snap.CPUScore
	e.serving = snap.Serving
	e.done = snap.Done
}
