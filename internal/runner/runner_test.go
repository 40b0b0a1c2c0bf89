package runner

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vovakirdan/envview/internal/core"
	"github.com/vovakirdan/envview/internal/env"
	"github.com/vovakirdan/envview/internal/envs/cartpole"
)

// countdown finishes after a fixed number of steps with reward 1 per step.
type countdown struct {
	length    int
	truncate  bool
	left      int
	failAt    int
	steps     int
	closed    bool
	resetSeed int64
}

func (c *countdown) ID() string    { return "countdown" }
func (c *countdown) Title() string { return "Countdown" }
func (c *countdown) ActionSpace() core.ActionSpace {
	return core.ActionSpace{N: 3, Meanings: []string{"A", "B", "C"}}
}

func (c *countdown) Reset(seed int64) (env.Observation, error) {
	c.left = c.length
	c.resetSeed = seed
	return c.left, nil
}

func (c *countdown) Step(a core.Action) (env.StepResult, error) {
	c.steps++
	if c.failAt > 0 && c.steps == c.failAt {
		return env.StepResult{}, errors.New("boom")
	}
	if a < 0 || int(a) >= 3 {
		return env.StepResult{}, env.ErrInvalidAction
	}
	c.left--
	finished := c.left <= 0
	return env.StepResult{
		Observation: c.left,
		Reward:      1,
		Done:        finished && !c.truncate,
		Truncated:   finished && c.truncate,
	}, nil
}

func (c *countdown) Render() (*core.Frame, error) { return core.NewFrame(1, 1), nil }
func (c *countdown) Close() error                 { c.closed = true; return nil }

func TestRunCountsStepsAndReward(t *testing.T) {
	sim := &countdown{length: 7}
	results, err := Run(context.Background(), func() (env.Env, error) { return sim, nil }, Options{
		Episodes: 3,
		Seed:     10,
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.Episode != i || r.Seed != 10+int64(i) {
			t.Errorf("result %d has episode %d seed %d", i, r.Episode, r.Seed)
		}
		if r.Steps != 7 || r.TotalReward != 7 || !r.Terminated {
			t.Errorf("result %d = %+v, want 7 steps, reward 7, terminated", i, r)
		}
	}
	if !sim.closed {
		t.Error("simulation was not closed")
	}
}

func TestRunTruncatedIsNotTerminated(t *testing.T) {
	results, err := Run(context.Background(), func() (env.Env, error) {
		return &countdown{length: 4, truncate: true}, nil
	}, Options{Episodes: 1})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if results[0].Terminated {
		t.Error("truncated episode reported as terminated")
	}
	if results[0].Steps != 4 {
		t.Errorf("Steps = %d, want 4", results[0].Steps)
	}
}

func TestRunMaxStepsCaps(t *testing.T) {
	results, err := Run(context.Background(), func() (env.Env, error) {
		return &countdown{length: 1000}, nil
	}, Options{Episodes: 2, MaxSteps: 25})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	for _, r := range results {
		if r.Steps != 25 || r.Terminated {
			t.Errorf("result %+v, want 25 steps and not terminated", r)
		}
	}
}

func TestRunStepErrorAborts(t *testing.T) {
	_, err := Run(context.Background(), func() (env.Env, error) {
		return &countdown{length: 10, failAt: 3}, nil
	}, Options{Episodes: 1})
	if err == nil {
		t.Fatal("expected step error")
	}
}

func TestRunFactoryError(t *testing.T) {
	boom := errors.New("no env")
	_, err := Run(context.Background(), func() (env.Env, error) { return nil, boom }, Options{Episodes: 2, Workers: 2})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestRunInvalidOptions(t *testing.T) {
	f := func() (env.Env, error) { return &countdown{length: 1}, nil }
	tests := []struct {
		name string
		opts Options
	}{
		{"zero episodes", Options{Episodes: 0}},
		{"negative max steps", Options{Episodes: 1, MaxSteps: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Run(context.Background(), f, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
	if _, err := Run(context.Background(), nil, Options{Episodes: 1}); err == nil {
		t.Error("expected error for nil factory")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, func() (env.Env, error) { return &countdown{length: 5}, nil }, Options{Episodes: 3})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunWorkersDeterministic(t *testing.T) {
	factory := func() (env.Env, error) { return cartpole.New(env.Options{}) }

	serial, err := Run(context.Background(), factory, Options{Episodes: 8, Seed: 42, Workers: 1})
	if err != nil {
		t.Fatalf("serial Run() failed: %v", err)
	}

	var mu sync.Mutex
	var seen []int
	parallel, err := Run(context.Background(), factory, Options{
		Episodes: 8,
		Seed:     42,
		Workers:  4,
		OnEpisode: func(r Result) error {
			mu.Lock()
			seen = append(seen, r.Episode)
			mu.Unlock()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("parallel Run() failed: %v", err)
	}

	if len(seen) != 8 {
		t.Errorf("OnEpisode called %d times, want 8", len(seen))
	}
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Errorf("episode %d differs: serial %+v, parallel %+v", i, serial[i], parallel[i])
		}
		if serial[i].Steps == 0 || serial[i].Steps > cartpole.DefaultMaxSteps {
			t.Errorf("episode %d has %d steps", i, serial[i].Steps)
		}
	}
}

func TestRunOnEpisodeError(t *testing.T) {
	boom := errors.New("store down")
	_, err := Run(context.Background(), func() (env.Env, error) { return &countdown{length: 2}, nil }, Options{
		Episodes:  2,
		OnEpisode: func(Result) error { return boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize(nil); got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v", got)
	}
	s := Summarize([]Result{
		{Steps: 10, TotalReward: -2},
		{Steps: 30, TotalReward: 4},
	})
	if s.Episodes != 2 || s.MeanReward != 1 || s.BestReward != 4 || s.MeanSteps != 20 {
		t.Errorf("Summarize() = %+v", s)
	}
	if r := Rewards([]Result{{TotalReward: 1.5}, {TotalReward: -1}}); len(r) != 2 || r[0] != 1.5 || r[1] != -1 {
		t.Errorf("Rewards() = %v", r)
	}
}
