package dispatch

import (
	"sync"
	"time"
)

// Scope is a cancellation set over a Dispatcher. Owners post through their
// Scope and close it when they are torn down; nothing posted through a closed
// Scope runs afterwards.
type Scope struct {
	d Dispatcher

	mu     sync.Mutex
	closed bool
	nextID uint64
	tasks  map[uint64]*Task
}

// NewScope returns an open scope bound to d.
func NewScope(d Dispatcher) *Scope {
	return &Scope{d: d, tasks: map[uint64]*Task{}}
}

// Dispatcher returns the underlying dispatcher.
func (s *Scope) Dispatcher() Dispatcher { return s.d }

// Now returns the dispatcher clock.
func (s *Scope) Now() time.Time { return s.d.Now() }

// Post queues fn unless the scope is closed by the time it runs.
func (s *Scope) Post(fn func()) {
	if s.Closed() {
		return
	}
	s.d.Post(func() {
		if s.Closed() {
			return
		}
		fn()
	})
}

// PostDelayed queues fn after d. The returned task is canceled when the scope
// closes.
func (s *Scope) PostDelayed(d time.Duration, fn func()) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return canceledTask()
	}

	id := s.nextID
	s.nextID++
	// s.mu is held until the task is registered, so the closure can't observe
	// a half-registered id even on a wall-clock loop.
	t := s.d.PostDelayed(d, func() {
		s.mu.Lock()
		delete(s.tasks, id)
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		fn()
	})
	if t.setOnCancel(func() { s.forget(id) }) {
		s.tasks[id] = t
	}
	return t
}

func (s *Scope) forget(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
}

// retained returns the number of tasks the scope still tracks.
func (s *Scope) retained() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Pending returns the number of delayed tasks that have not run yet.
func (s *Scope) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if t.Pending() {
			n++
		}
	}
	return n
}

// Closed reports whether Close was called.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close cancels every outstanding delayed task. It is safe to call twice.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	tasks := s.tasks
	s.tasks = map[uint64]*Task{}
	s.mu.Unlock()

	for _, t := range tasks {
		t.Cancel()
	}
}
