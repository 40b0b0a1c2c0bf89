package pong

import (
	"errors"
	"testing"

	"github.com/vovakirdan/envview/internal/core"
	"github.com/vovakirdan/envview/internal/env"
)

func newTestEnv(t *testing.T, opts env.Options) *Env {
	t.Helper()
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := e.Reset(42); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	return e
}

func TestDeterminism(t *testing.T) {
	// Two matches with the same seed and inputs should stay identical
	e1 := newTestEnv(t, env.Options{})
	e2 := newTestEnv(t, env.Options{})

	actions := []core.Action{ActionFire, ActionRight, ActionRight, ActionLeft, ActionNoop}
	for i := 0; i < 500; i++ {
		a := actions[i%len(actions)]
		r1, err1 := e1.Step(a)
		r2, err2 := e2.Step(a)
		if err1 != nil || err2 != nil {
			t.Fatalf("step %d failed: %v / %v", i, err1, err2)
		}
		if r1.Reward != r2.Reward || r1.Done != r2.Done {
			t.Fatalf("step %d diverged: %+v vs %+v", i, r1, r2)
		}
	}

	if e1.Snapshot() != e2.Snapshot() {
		t.Errorf("snapshots differ: %+v vs %+v", e1.Snapshot(), e2.Snapshot())
	}
}

func TestActionSpace(t *testing.T) {
	e := newTestEnv(t, env.Options{})
	space := e.ActionSpace()

	if space.N != 6 {
		t.Errorf("N = %d, expected 6", space.N)
	}
	if space.Meaning(ActionFire) != "FIRE" {
		t.Errorf("Meaning(FIRE) = %q", space.Meaning(ActionFire))
	}
}

func TestInvalidAction(t *testing.T) {
	e := newTestEnv(t, env.Options{})

	if _, err := e.Step(6); !errors.Is(err, env.ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
	if _, err := e.Step(-1); !errors.Is(err, env.ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
}

func TestPaddleMovement(t *testing.T) {
	e := newTestEnv(t, env.Options{})
	start := e.Snapshot().AgentY

	for i := 0; i < 3; i++ {
		if _, err := e.Step(ActionRight); err != nil {
			t.Fatal(err)
		}
	}
	if got := e.Snapshot().AgentY; got >= start {
		t.Errorf("RIGHT should move the paddle up: %d -> %d", start, got)
	}

	// Paddle is clamped inside the court
	for i := 0; i < 200; i++ {
		if _, err := e.Step(ActionLeft); err != nil {
			t.Fatal(err)
		}
	}
	if got := e.Snapshot().AgentY; got > e.courtBottom()-e.paddleHeight {
		t.Errorf("paddle left the court: y=%d", got)
	}
}

func TestFireServes(t *testing.T) {
	e := newTestEnv(t, env.Options{})

	if !e.Snapshot().Serving {
		t.Fatal("match should start waiting for a serve")
	}
	if _, err := e.Step(ActionFire); err != nil {
		t.Fatal(err)
	}
	if e.Snapshot().Serving {
		t.Error("FIRE should launch the ball")
	}
}

func TestServeTimeout(t *testing.T) {
	e := newTestEnv(t, env.Options{})

	for i := 0; i < DefaultServeDelay; i++ {
		if _, err := e.Step(ActionNoop); err != nil {
			t.Fatal(err)
		}
	}
	if e.Snapshot().Serving {
		t.Error("ball should be served automatically after the delay")
	}
}

func TestScoringReward(t *testing.T) {
	e := newTestEnv(t, env.Options{})

	// Ball about to pass the agent's paddle, paddle out of the way
	snap := e.Snapshot()
	snap.Serving = false
	snap.BallX = e.width - 1
	snap.BallY = courtTop + wallHeight + 1
	snap.BallVX = 3000
	snap.BallVY = 0
	snap.AgentY = e.courtBottom() - e.paddleHeight
	e.ApplySnapshot(snap)

	res, err := e.Step(ActionNoop)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reward != -1 {
		t.Errorf("Reward = %v, expected -1 when the CPU scores", res.Reward)
	}
	if e.Snapshot().CPUScore != 1 {
		t.Errorf("CPUScore = %d, expected 1", e.Snapshot().CPUScore)
	}
}

func TestMatchEnds(t *testing.T) {
	e := newTestEnv(t, env.Options{})

	snap := e.Snapshot()
	snap.Serving = false
	snap.AgentScore = DefaultWinScore - 1
	snap.BallX = 1
	snap.BallY = e.courtBottom() - 2
	snap.BallVX = -3000
	snap.BallVY = 0
	snap.CPUY = courtTop + wallHeight
	e.ApplySnapshot(snap)

	res, err := e.Step(ActionNoop)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reward != 1 || !res.Done {
		t.Fatalf("expected winning point, got %+v", res)
	}

	// Stepping a finished match is allowed and changes nothing
	res, err = e.Step(ActionFire)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Done || res.Reward != 0 {
		t.Errorf("finished match should stay done with zero reward, got %+v", res)
	}
}

func TestTruncation(t *testing.T) {
	e := newTestEnv(t, env.Options{MaxSteps: 3})

	var res env.StepResult
	for i := 0; i < 3; i++ {
		var err error
		res, err = e.Step(ActionNoop)
		if err != nil {
			t.Fatal(err)
		}
	}
	if !res.Truncated {
		t.Error("expected truncation at max steps")
	}
}

func TestRender(t *testing.T) {
	e := newTestEnv(t, env.Options{Width: 64, Height: 48})

	f, err := e.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	h, w, c := f.Shape()
	if h != 48 || w != 64 || c != 3 {
		t.Errorf("Shape() = (%d, %d, %d), expected (48, 64, 3)", h, w, c)
	}
	if f.Get(32, 30) != colorBackground {
		t.Errorf("expected background colour in the court, got %+v", f.Get(32, 30))
	}
	if f.Get(10, courtTop) != colorWall {
		t.Errorf("expected top wall, got %+v", f.Get(10, courtTop))
	}
	agentX := 64 - DefaultPaddleOffset - DefaultPaddleWidth
	if f.Get(agentX, e.Snapshot().AgentY+1) != colorAgent {
		t.Error("expected the agent paddle on the right")
	}
}

func TestClosed(t *testing.T) {
	e := newTestEnv(t, env.Options{})
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := e.Step(ActionNoop); !errors.Is(err, env.ErrClosed) {
		t.Errorf("Step after Close: expected ErrClosed, got %v", err)
	}
	if _, err := e.Render(); !errors.Is(err, env.ErrClosed) {
		t.Errorf("Render after Close: expected ErrClosed, got %v", err)
	}
}

func TestNotReset(t *testing.T) {
	e, err := New(env.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Step(ActionNoop); !errors.Is(err, env.ErrNotReset) {
		t.Errorf("expected ErrNotReset, got %v", err)
	}
}

func TestTooSmall(t *testing.T) {
	if _, err := New(env.Options{Width: 10, Height: 10}); err == nil {
		t.Error("expected error for a frame below the minimum size")
	}
}
