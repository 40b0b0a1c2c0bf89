package eventloop

import (
	"sync"
	"time"
)

// TickSource delivers the periodic tick. The loop calls Start once, receives
// from C, calls Done after every tick handler returns, and Stop on exit.
type TickSource interface {
	Start(interval time.Duration)
	C() <-chan time.Time
	Done()
	Stop()
}

// TimerSource is the production tick source, backed by a time.Timer.
//
// The next deadline is the previous deadline plus the interval. A tick whose
// handler overran fires the next one as soon as the loop is free, and the
// schedule restarts from that moment, so late ticks are never dropped and
// never pile up into a burst.
type TimerSource struct {
	now      func() time.Time
	timer    *time.Timer
	interval time.Duration
	next     time.Time
}

// NewTimerSource returns a source driven by the wall clock.
func NewTimerSource() *TimerSource {
	return &TimerSource{now: time.Now}
}

// Start arms the first tick one interval from now.
func (s *TimerSource) Start(interval time.Duration) {
	s.interval = interval
	s.next = s.now().Add(interval)
	s.timer = time.NewTimer(interval)
}

// C returns the timer channel. Nil before Start.
func (s *TimerSource) C() <-chan time.Time {
	if s.timer == nil {
		return nil
	}
	return s.timer.C
}

// Done arms the next tick.
func (s *TimerSource) Done() {
	now := s.now()
	s.next = s.next.Add(s.interval)
	if !s.next.After(now) {
		s.next = now
	}
	s.timer.Reset(s.next.Sub(now))
}

// Stop releases the timer.
func (s *TimerSource) Stop() {
	if s.timer != nil {
		s.timer.Stop()
	}
}

// ManualSource lets tests fire ticks without real time passing.
type ManualSource struct {
	ticks    chan time.Time
	ack      chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	started  chan struct{}
	once     sync.Once
	now      time.Time
	mu       sync.Mutex
}

// NewManualSource creates an idle manual source.
func NewManualSource() *ManualSource {
	return &ManualSource{
		ticks:   make(chan time.Time),
		ack:     make(chan struct{}),
		stopped: make(chan struct{}),
		started: make(chan struct{}),
		now:     time.Unix(0, 0),
	}
}

// Start marks the source as attached to a running loop.
func (s *ManualSource) Start(time.Duration) {
	s.once.Do(func() { close(s.started) })
}

// C returns the tick channel.
func (s *ManualSource) C() <-chan time.Time {
	return s.ticks
}

// Done acknowledges a handled tick to the pending Fire.
func (s *ManualSource) Done() {
	select {
	case s.ack <- struct{}{}:
	case <-s.stopped:
	}
}

// Stop detaches the source; pending and future Fire calls return false.
func (s *ManualSource) Stop() {
	s.stopOnce.Do(func() { close(s.stopped) })
}

// Fire delivers one tick and blocks until its handler has returned.
// It reports false when the loop has already exited.
func (s *ManualSource) Fire() bool {
	s.mu.Lock()
	s.now = s.now.Add(time.Millisecond)
	at := s.now
	s.mu.Unlock()

	select {
	case s.ticks <- at:
	case <-s.stopped:
		return false
	}
	select {
	case <-s.ack:
		return true
	case <-s.stopped:
		return false
	}
}

// Started is closed once a loop started the source.
func (s *ManualSource) Started() <-chan struct{} {
	return s.started
}
