// internal/scheduler/scheduler.go

// Package scheduler provides cancellable deferred tasks that fire on a
// cooperative run loop. Tasks are grouped into scopes so a stage transition
// can release everything it owns with a single Cancel instead of scattered
// manual clears.
package scheduler

import (
	"sync"
	"time"
)

// Runner posts a function onto the loop that owns the shared state. Tasks
// never run inside a simulation tick; they are serialized between ticks.
type Runner interface {
	Post(fn func())
}

// Scope owns a set of pending timers. After Cancel, no task of the scope
// runs again, even if its timer already fired and the callback is queued.
type Scope struct {
	runner Runner

	mu        sync.Mutex
	timers    map[int]*time.Timer
	nextID    int
	cancelled bool
}

// NewScope creates a scope whose tasks run on the given runner.
func NewScope(runner Runner) *Scope {
	return &Scope{
		runner: runner,
		timers: make(map[int]*time.Timer),
	}
}

// After schedules fn to run once on the loop after d.
func (s *Scope) After(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	id := s.nextID
	s.nextID++
	s.timers[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		s.run(fn)
	})
}

// Every schedules fn to run on the loop each interval until the scope is
// cancelled.
func (s *Scope) Every(interval time.Duration, fn func()) {
	var tick func()
	tick = func() {
		fn()
		s.After(interval, tick)
	}
	s.After(interval, tick)
}

// run posts fn onto the loop with a late cancellation guard, so a callback
// queued before Cancel never mutates post-transition state.
func (s *Scope) run(fn func()) {
	s.runner.Post(func() {
		s.mu.Lock()
		cancelled := s.cancelled
		s.mu.Unlock()
		if cancelled {
			return
		}
		fn()
	})
}

// Cancel stops every pending timer and marks the scope dead. It is safe to
// call more than once.
func (s *Scope) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// Cancelled reports whether the scope has been cancelled.
func (s *Scope) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// Pending returns the number of timers not yet fired.
func (s *Scope) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
