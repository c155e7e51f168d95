package playback

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/willwade/tts-wrapper-go/runtime/events"
	"github.com/willwade/tts-wrapper-go/runtime/timing"
)

// session is one speak call. Its events are dispatched on the goroutine
// running Speak.
type session struct {
	id       string
	registry *events.Registry
	ctx      context.Context
	cancel   context.CancelFunc

	// emitMu orders emission against stop: once stop returns, no further
	// event from this session reaches listeners.
	emitMu      sync.Mutex
	stopped     atomic.Bool
	dispatching atomic.Bool

	mu        sync.Mutex
	state     State
	timeline  timing.Timeline
	sink      Sink
	startedAt time.Time

	clock *playClock
	wake  chan struct{}
}

func newSession(parent context.Context, registry *events.Registry) *session {
	ctx, cancel := context.WithCancel(parent)
	return &session{
		id:       uuid.NewString(),
		registry: registry,
		ctx:      ctx,
		cancel:   cancel,
		state:    StateIdle,
		clock:    newPlayClock(time.Now),
		wake:     make(chan struct{}, 1),
	}
}

func (s *session) emit(e *events.Event) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	if s.stopped.Load() {
		return
	}
	s.dispatching.Store(true)
	defer s.dispatching.Store(false)
	s.registry.EmitWhile(e, s.live)
}

func (s *session) live() bool {
	return !s.stopped.Load()
}

// stop cancels the session. It reports whether this call stopped it.
func (s *session) stop() bool {
	if s.stopped.Swap(true) {
		return false
	}
	// Wait out an emission that passed the stopped check. During dispatch
	// stop may be running inside a listener, so it does not wait; EmitWhile
	// skips the remaining listeners instead.
	if !s.dispatching.Load() {
		s.emitMu.Lock()
		s.emitMu.Unlock() //nolint:staticcheck // empty critical section is a barrier
	}
	s.cancel()
	s.mu.Lock()
	s.state = StateIdle
	s.timeline = nil
	s.sink = nil
	s.mu.Unlock()
	return true
}

func (s *session) isStopped() bool {
	return s.stopped.Load()
}

// setState moves to state unless the session was stopped.
func (s *session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped.Load() {
		return
	}
	s.state = state
}

// transition moves from one state to another and reports whether it did.
func (s *session) transition(from, to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped.Load() || s.state != from {
		return false
	}
	s.state = to
	return true
}

func (s *session) getState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *session) setTimeline(tl timing.Timeline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped.Load() {
		s.timeline = tl
	}
}

func (s *session) getTimeline() timing.Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline
}

func (s *session) setSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
	s.startedAt = time.Now()
}

func (s *session) getSink() Sink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink
}

// signal wakes the scheduler after a pause or resume.
func (s *session) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// playClock measures playing time, excluding paused intervals.
type playClock struct {
	mu       sync.Mutex
	now      func() time.Time
	start    time.Time
	pausedAt time.Time
	paused   time.Duration
	running  bool
	halted   bool
}

func newPlayClock(now func() time.Time) *playClock {
	return &playClock{now: now}
}

func (c *playClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = c.now()
	c.paused = 0
	c.running = true
	c.halted = false
}

func (c *playClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running && !c.halted {
		c.pausedAt = c.now()
		c.halted = true
	}
}

func (c *playClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.halted {
		c.paused += c.now().Sub(c.pausedAt)
		c.halted = false
	}
}

// Elapsed returns playing time and whether the clock is paused.
func (c *playClock) Elapsed() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return 0, false
	}
	if c.halted {
		return c.pausedAt.Sub(c.start) - c.paused, true
	}
	return c.now().Sub(c.start) - c.paused, false
}
