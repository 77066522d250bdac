package library

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs a tick function on a fixed interval until it is stopped.
type Scheduler struct {
	interval   time.Duration
	firstDelay time.Duration
	tick       func()

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler returns a stopped scheduler. The first tick fires after
// firstDelay, later ones every interval. A non-positive firstDelay means
// the first tick waits a full interval.
func NewScheduler(interval, firstDelay time.Duration, tick func()) *Scheduler {
	if firstDelay <= 0 {
		firstDelay = interval
	}
	return &Scheduler{interval: interval, firstDelay: firstDelay, tick: tick}
}

// Start launches the tick loop. It is a no-op if the loop is already running.
// Cancelling ctx has the same effect as Stop, minus the wait: once the loop
// exits, Running reports false and Start may be called again.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer s.release(done)
	timer := time.NewTimer(s.firstDelay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.tick()
			timer.Reset(s.interval)
		}
	}
}

// release clears the running state unless a Stop or a newer Start already
// replaced it.
func (s *Scheduler) release(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != done {
		return
	}
	s.cancel()
	s.cancel, s.done = nil, nil
}

// Stop cancels future ticks and waits for an in-flight tick to finish.
// It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the tick loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}
