package deadline

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWheelFiresAfterDelay(t *testing.T) {
	w := New()
	var fired atomic.Bool
	done := make(chan struct{})

	w.Arm(20*time.Millisecond, func() {
		fired.Store(true)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for deadline to fire")
	}

	if !fired.Load() {
		t.Error("expected callback to have run")
	}
}

func TestWheelCancelPreventsFire(t *testing.T) {
	w := New()
	var fired atomic.Bool

	e := w.Arm(30*time.Millisecond, func() { fired.Store(true) })
	if !w.Cancel(e) {
		t.Fatal("expected Cancel to succeed on a pending entry")
	}
	if w.Cancel(e) {
		t.Error("expected second Cancel to be a no-op")
	}

	time.Sleep(80 * time.Millisecond)
	if fired.Load() {
		t.Error("canceled entry must not fire")
	}
}

func TestWheelOrdersEarliestFirst(t *testing.T) {
	w := New()
	order := make(chan int, 3)

	w.Arm(60*time.Millisecond, func() { order <- 3 })
	w.Arm(10*time.Millisecond, func() { order <- 1 })
	w.Arm(30*time.Millisecond, func() { order <- 2 })

	var got []int
	for i := 0; i < 3; i++ {
		select {
		case v := <-order:
			got = append(got, v)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for all deadlines to fire")
		}
	}

	for i, v := range got {
		if v != i+1 {
			t.Errorf("fire order = %v, want [1 2 3]", got)
			break
		}
	}
}
