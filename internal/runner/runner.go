// Package runner plays whole episodes with uniformly random actions. It is
// the headless counterpart of the viewer: no keyboard, no display, just
// reset, step until the episode ends, and report.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/envview/internal/core"
	"github.com/vovakirdan/envview/internal/env"
)

// DefaultStepLimit caps episodes of simulations that never finish on their
// own when Options.MaxSteps is zero.
const DefaultStepLimit = 10000

// Factory builds a fresh simulation for one worker.
type Factory func() (env.Env, error)

// Options configure a run.
type Options struct {
	Episodes int
	Seed     int64 // Episode i resets with Seed+i
	MaxSteps int   // Per-episode cap on top of the simulation's own limit
	Workers  int

	// OnEpisode is called once per finished episode. Calls are serialized.
	OnEpisode func(Result) error

	Logger *log.Logger
}

// Result summarizes one episode.
type Result struct {
	Episode     int
	Seed        int64
	Steps       int
	TotalReward float64
	Terminated  bool // false when truncated or capped
}

// Run plays opts.Episodes episodes and returns their results ordered by
// episode index. With more than one worker, each worker builds its own
// simulation from factory. Action sampling is seeded per episode, so results
// do not depend on the worker count.
func Run(ctx context.Context, factory Factory, opts Options) ([]Result, error) {
	if factory == nil {
		return nil, errors.New("runner: nil factory")
	}
	if opts.Episodes <= 0 {
		return nil, fmt.Errorf("runner: episodes must be positive, got %d", opts.Episodes)
	}
	if opts.MaxSteps < 0 {
		return nil, fmt.Errorf("runner: negative max steps %d", opts.MaxSteps)
	}
	workers := min(max(opts.Workers, 1), opts.Episodes)

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	r := &run{opts: opts, logger: logger, results: make([]Result, opts.Episodes)}

	group, groupCtx := errgroup.WithContext(ctx)
	jobs := make(chan int)

	group.Go(func() error {
		defer close(jobs)
		for i := 0; i < opts.Episodes; i++ {
			select {
			case jobs <- i:
			case <-groupCtx.Done():
				return nil
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		group.Go(func() error {
			e, err := factory()
			if err != nil {
				return fmt.Errorf("runner: worker %d: %w", w, err)
			}
			defer e.Close()

			for i := range jobs {
				if err := r.episode(groupCtx, e, i); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.results, nil
}

type run struct {
	opts    Options
	logger  *log.Logger
	results []Result
	mu      sync.Mutex
}

func (r *run) episode(ctx context.Context, e env.Env, i int) error {
	seed := r.opts.Seed + int64(i)
	if _, err := e.Reset(seed); err != nil {
		return fmt.Errorf("runner: episode %d: reset: %w", i, err)
	}

	space := e.ActionSpace()
	if space.N <= 0 {
		return fmt.Errorf("runner: %s has an empty action space", e.ID())
	}
	limit := r.opts.MaxSteps
	if limit == 0 {
		limit = DefaultStepLimit
	}

	rng := rand.New(rand.NewSource(seed))
	res := Result{Episode: i, Seed: seed}

	for res.Steps < limit {
		if err := ctx.Err(); err != nil {
			return err
		}

		a := core.Action(rng.Intn(space.N))
		step, err := e.Step(a)
		if err != nil {
			return fmt.Errorf("runner: episode %d: step %d: %w", i, res.Steps, err)
		}
		res.Steps++
		res.TotalReward += step.Reward
		r.logger.Debug("step", "episode", i, "step", res.Steps, "action", space.Meaning(a),
			"reward", step.Reward, "done", step.Done, "truncated", step.Truncated)

		if step.Done {
			res.Terminated = true
			break
		}
		if step.Truncated {
			break
		}
	}

	r.logger.Info("episode finished", "env", e.ID(), "episode", i, "steps", res.Steps,
		"reward", res.TotalReward, "terminated", res.Terminated)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[i] = res
	if r.opts.OnEpisode != nil {
		if err := r.opts.OnEpisode(res); err != nil {
			return fmt.Errorf("runner: episode %d: %w", i, err)
		}
	}
	return nil
}

// Summary aggregates a set of results.
type Summary struct {
	Episodes   int
	MeanReward float64
	BestReward float64
	MeanSteps  float64
}

// Summarize computes aggregate statistics. An empty input yields a zero Summary.
func Summarize(results []Result) Summary {
	if len(results) == 0 {
		return Summary{}
	}
	s := Summary{Episodes: len(results), BestReward: results[0].TotalReward}
	var reward, steps float64
	for _, r := range results {
		reward += r.TotalReward
		steps += float64(r.Steps)
		s.BestReward = max(s.BestReward, r.TotalReward)
	}
	s.MeanReward = reward / float64(len(results))
	s.MeanSteps = steps / float64(len(results))
	return s
}

// Rewards returns the total reward of each result, in order.
func Rewards(results []Result) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.TotalReward
	}
	return out
}
