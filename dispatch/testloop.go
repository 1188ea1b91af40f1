package dispatch

import (
	"container/heap"
	"sync"
	"time"
)

// TestLoop is a Dispatcher with a virtual clock. Nothing runs until the test
// drives it with RunUntilIdle or RunFor, which makes every interleaving of
// commands, events and timers reproducible.
type TestLoop struct {
	mu     sync.Mutex
	now    time.Time
	ready  []func()
	timers timerHeap
	seq    uint64
	fired  int
}

// NewTestLoop returns a loop whose clock starts at the Unix epoch.
func NewTestLoop() *TestLoop {
	return &TestLoop{now: time.Unix(0, 0)}
}

// Post implements Dispatcher.
func (l *TestLoop) Post(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ready = append(l.ready, fn)
}

// PostDelayed implements Dispatcher.
func (l *TestLoop) PostDelayed(d time.Duration, fn func()) *Task {
	if d < 0 {
		d = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	t := newTask(fn)
	t.deadline = l.now.Add(d)
	t.seq = l.seq
	l.seq++
	heap.Push(&l.timers, t)
	return t
}

// Now implements Dispatcher.
func (l *TestLoop) Now() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now
}

// TimersFired returns how many delayed tasks have run.
func (l *TestLoop) TimersFired() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fired
}

// RunUntilIdle runs posted tasks and due timers, including any they post,
// without advancing the clock. It reports whether anything ran.
func (l *TestLoop) RunUntilIdle() bool {
	ran := false
	for {
		fn, timer := l.next()
		if fn == nil && !timer {
			return ran
		}
		if fn != nil {
			ran = true
			fn()
		}
	}
}

// RunFor advances the clock by d, running every task that becomes due on the
// way in deadline order.
func (l *TestLoop) RunFor(d time.Duration) bool {
	l.mu.Lock()
	end := l.now.Add(d)
	l.mu.Unlock()
	return l.RunUntil(end)
}

// RunUntil advances the clock to t.
func (l *TestLoop) RunUntil(t time.Time) bool {
	ran := l.RunUntilIdle()
	for {
		l.mu.Lock()
		if len(l.timers) == 0 || l.timers[0].deadline.After(t) {
			if t.After(l.now) {
				l.now = t
			}
			l.mu.Unlock()
			break
		}
		if l.timers[0].deadline.After(l.now) {
			l.now = l.timers[0].deadline
		}
		l.mu.Unlock()
		if l.RunUntilIdle() {
			ran = true
		}
	}
	if l.RunUntilIdle() {
		ran = true
	}
	return ran
}

// AdvanceToNextTimer moves the clock to the earliest pending timer and runs
// everything due. It returns false if no timer is pending.
func (l *TestLoop) AdvanceToNextTimer() bool {
	l.mu.Lock()
	for len(l.timers) > 0 && !l.timers[0].Pending() {
		heap.Pop(&l.timers)
	}
	if len(l.timers) == 0 {
		l.mu.Unlock()
		return false
	}
	next := l.timers[0].deadline
	l.mu.Unlock()
	l.RunUntil(next)
	return true
}

// next pops the next runnable unit. timer is true when a canceled timer was
// discarded, so the caller keeps draining.
func (l *TestLoop) next() (fn func(), timer bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.ready) > 0 {
		fn = l.ready[0]
		l.ready[0] = nil
		l.ready = l.ready[1:]
		return fn, false
	}

	if len(l.timers) > 0 && !l.timers[0].deadline.After(l.now) {
		t := heap.Pop(&l.timers).(*Task)
		if f := t.claim(); f != nil {
			l.fired++
			return f, true
		}
		return nil, true
	}
	return nil, false
}

type timerHeap []*Task

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x interface{}) { *h = append(*h, x.(*Task)) }

func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
