// Package eventloop is a single-goroutine cooperative scheduler: one callback
// queue plus one periodic tick. Callbacks and ticks run one at a time and to
// completion, so the state they touch needs no further locking.
package eventloop

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultQueueSize bounds the number of callbacks waiting to run.
const DefaultQueueSize = 64

var (
	// ErrStop may be returned by a callback to end Run without an error.
	ErrStop = errors.New("eventloop: stop requested")

	// ErrRunning is returned when Run is called on a loop that already ran.
	ErrRunning = errors.New("eventloop: already running")
)

// Callback is a unit of work executed on the loop goroutine.
type Callback func() error

// Loop owns the callback queue and the tick source.
type Loop struct {
	src      TickSource
	interval time.Duration
	queue    chan Callback
	onTick   Callback
	done     chan struct{}
	started  atomic.Bool
	ticks    atomic.Uint64
	logger   *log.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the loop logger.
func WithLogger(l *log.Logger) Option {
	return func(loop *Loop) {
		if l != nil {
			loop.logger = l
		}
	}
}

// WithQueueSize sets the callback queue capacity.
func WithQueueSize(n int) Option {
	return func(loop *Loop) {
		if n > 0 {
			loop.queue = make(chan Callback, n)
		}
	}
}

// New creates a loop that ticks every interval from src.
func New(src TickSource, interval time.Duration, opts ...Option) *Loop {
	l := &Loop{
		src:      src,
		interval: interval,
		queue:    make(chan Callback, DefaultQueueSize),
		done:     make(chan struct{}),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetTick registers the periodic callback. Must be called before Run.
func (l *Loop) SetTick(fn Callback) {
	l.onTick = fn
}

// Post queues fn to run on the loop goroutine. It blocks while the queue is
// full and reports false once the loop has exited.
func (l *Loop) Post(fn Callback) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// TryPost queues fn without waiting. It reports false when the queue is full
// or the loop has exited.
func (l *Loop) TryPost(fn Callback) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	default:
		return false
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Ticks returns the number of ticks handled so far.
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}

// Run executes callbacks and ticks until ctx is cancelled (nil), a callback
// returns ErrStop (nil) or any callback or tick fails (that error).
//
// Every callback queued before a tick is received runs before the tick
// handler, so the tick observes all input that arrived ahead of it.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer close(l.done)
	defer l.src.Stop()

	l.src.Start(l.interval)
	ticks := l.src.C()
	l.logger.Debug("event loop started", "interval", l.interval)

	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("event loop cancelled", "ticks", l.ticks.Load())
			return nil

		case fn := <-l.queue:
			if err := l.call(fn); err != nil {
				return l.exit(err)
			}

		case <-ticks:
			err := l.drain()
			if err == nil {
				err = l.tick()
			}
			l.src.Done()
			if err != nil {
				return l.exit(err)
			}
		}
	}
}

// drain runs every callback that is already queued.
func (l *Loop) drain() error {
	for {
		select {
		case fn := <-l.queue:
			if err := l.call(fn); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (l *Loop) tick() error {
	l.ticks.Add(1)
	if l.onTick == nil {
		return nil
	}
	return l.onTick()
}

func (l *Loop) call(fn Callback) error {
	if fn == nil {
		return nil
	}
	return fn()
}

func (l *Loop) exit(err error) error {
	if errors.Is(err, ErrStop) {
		l.logger.Debug("event loop stopped", "ticks", l.ticks.Load())
		return nil
	}
	l.logger.Debug("event loop failed", "ticks", l.ticks.Load(), "error", err)
	return err
}
