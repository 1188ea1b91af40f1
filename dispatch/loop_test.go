package dispatch

import (
	"testing"
	"time"
)

func TestLoopPostAndSync(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	if err := l.Sync(func() {}); err != nil {
		t.Fatal(err)
	}
	var n int
	l.Sync(func() { n = len(got) })
	if n != 5 {
		t.Fatalf("ran %d tasks, want 5", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("out of order: %v", got)
		}
	}
}

func TestLoopPostDelayed(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	fired := make(chan struct{})
	l.PostDelayed(10*time.Millisecond, func() { close(fired) })

	canceled := l.PostDelayed(10*time.Millisecond, func() { t.Error("canceled task ran") })
	canceled.Cancel()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("delayed task never ran")
	}
	time.Sleep(20 * time.Millisecond)
}

func TestLoopClose(t *testing.T) {
	l := NewLoop()
	l.Close()
	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit")
	}
	if err := l.Sync(func() {}); err != ErrClosed {
		t.Fatalf("got %v, want ErrClosed", err)
	}
	l.Close()
}
