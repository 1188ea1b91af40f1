package dispatch

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrClosed is returned by Sync once the loop has been closed.
var ErrClosed = errors.New("dispatch: loop closed")

// Loop is a Dispatcher backed by one goroutine and wall-clock timers.
type Loop struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

// NewLoop starts a loop goroutine.
func NewLoop() *Loop {
	l := &Loop{done: make(chan struct{})}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

// Post implements Dispatcher. Posts after Close are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.queue = append(l.queue, fn)
	l.cond.Signal()
}

// PostDelayed implements Dispatcher.
func (l *Loop) PostDelayed(d time.Duration, fn func()) *Task {
	t := newTask(fn)
	t.mu.Lock()
	t.deadline = time.Now().Add(d)
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if f := t.claim(); f != nil {
				f()
			}
		})
	})
	t.mu.Unlock()
	return t
}

// Now implements Dispatcher.
func (l *Loop) Now() time.Time { return time.Now() }

// Sync runs fn on the loop and blocks until it returns. It must not be called
// from the loop goroutine.
func (l *Loop) Sync(fn func()) error {
	ch := make(chan struct{})
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue = append(l.queue, func() {
		defer close(ch)
		fn()
	})
	l.cond.Signal()
	l.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

// Close stops the loop after the task currently running, if any. Queued tasks
// are dropped.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.queue = nil
	l.cond.Broadcast()
}

// Done is closed once the loop goroutine exits.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if l.closed {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
	}
}
