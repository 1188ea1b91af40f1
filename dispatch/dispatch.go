// Package dispatch provides the single-threaded cooperative task model the
// HCI host and the fake controller run on.
//
// Every owner of protocol state is bound to one Dispatcher; all mutations of
// that state happen inside closures run by the dispatcher. Work scheduled for
// later (timeouts, delayed events) is posted as a cancelable Task rather than
// run inline.
package dispatch

import (
	"sync"
	"time"
)

// Dispatcher runs posted closures one at a time.
type Dispatcher interface {
	// Post queues fn to run as a discrete task.
	Post(fn func())

	// PostDelayed queues fn to run once d has elapsed.
	PostDelayed(d time.Duration, fn func()) *Task

	// Now returns the dispatcher's notion of the current time.
	Now() time.Time
}

// Task is a handle to a delayed closure.
type Task struct {
	mu       sync.Mutex
	fn       func()
	done     bool
	timer    *time.Timer
	onCancel func()

	deadline time.Time
	seq      uint64
}

func newTask(fn func()) *Task {
	return &Task{fn: fn}
}

// Cancel prevents the task from running. It returns false if the task already
// ran or was canceled before.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return false
	}
	t.done = true
	t.fn = nil
	if t.timer != nil {
		t.timer.Stop()
	}
	hook := t.onCancel
	t.onCancel = nil
	t.mu.Unlock()

	if hook != nil {
		hook()
	}
	return true
}

// setOnCancel installs fn to run when the task is canceled. It reports false,
// without installing fn, if the task already ran or was canceled.
func (t *Task) setOnCancel(fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	t.onCancel = fn
	return true
}

// Pending reports whether the task has neither run nor been canceled.
func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.done
}

// claim marks the task as run and hands back its closure, or nil if the task
// was canceled.
func (t *Task) claim() func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	fn := t.fn
	t.fn = nil
	t.onCancel = nil
	return fn
}

func canceledTask() *Task {
	return &Task{done: true}
}
