package viewer

import (
	"sync"
	"time"
)

// Scheduler abstracts one-shot timer scheduling so animation can be driven by
// real wall-clock delays in production and deterministically in tests.
type Scheduler interface {
	// After arranges for fn to run once after d, on an arbitrary goroutine.
	// The returned cancel func stops the callback if it has not fired yet and
	// is safe to call more than once.
	After(d time.Duration, fn func()) (cancel func())
}

// WallClock schedules on time.AfterFunc.
type WallClock struct{}

func (WallClock) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler queues callbacks and only runs them when Fire is called,
// so animation can be stepped tick by tick without sleeping.
type ManualScheduler struct {
	mu      sync.Mutex
	nextID  int
	pending []manualEntry
}

type manualEntry struct {
	id int
	fn func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) After(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.pending = append(s.pending, manualEntry{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.pending {
			if e.id == id {
				s.pending = append(s.pending[:i], s.pending[i+1:]...)
				return
			}
		}
	}
}

// Fire runs the oldest pending callback. Returns false if nothing is queued.
func (s *ManualScheduler) Fire() bool {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return false
	}
	e := s.pending[0]
	s.pending = s.pending[1:]
	s.mu.Unlock()

	e.fn()
	return true
}

// FireAll drains the queue, including callbacks scheduled by callbacks, and
// returns how many ran.
func (s *ManualScheduler) FireAll() int {
	n := 0
	for s.Fire() {
		n++
	}
	return n
}

// Pending reports how many callbacks are queued.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
