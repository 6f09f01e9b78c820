package recognition

import (
	"sync"
	"testing"
	"time"
)

// manualClock records scheduled callbacks so tests decide when they fire.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *manualClock) schedule(_ time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &manualTimer{fn: fn}
	c.timers = append(c.timers, timer)
	return timer
}

// fireAll runs every callback, including stopped ones, mimicking a timer that
// fired just as it was being stopped.
func (c *manualClock) fireAll() {
	c.mu.Lock()
	timers := append([]*manualTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, timer := range timers {
		timer.fn()
	}
}

func TestDebouncerCoalescesToLastKey(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(time.Second, clock.schedule)
	var fired []string
	record := func(key string) { fired = append(fired, key) }

	d.Trigger("Fan", record)
	d.Trigger("Lamp", record)
	if key, ok := d.Pending(); !ok || key != "Lamp" {
		t.Fatalf("pending = %q/%v", key, ok)
	}
	clock.fireAll()

	if len(fired) != 1 || fired[0] != "Lamp" {
		t.Fatalf("fired = %v, want [Lamp]", fired)
	}
	if !clock.timers[0].stopped {
		t.Fatal("first timer was not stopped")
	}
}

func TestDebouncerCancelAndStop(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(time.Second, clock.schedule)
	var fired int
	d.Trigger("Cup", func(string) { fired++ })
	d.Cancel()
	clock.fireAll()
	if fired != 0 {
		t.Fatalf("cancelled call fired %d times", fired)
	}

	d.Trigger("Cup", func(string) { fired++ })
	d.Stop()
	clock.fireAll()
	if fired != 0 {
		t.Fatalf("stopped call fired %d times", fired)
	}
	if d.Trigger("Cup", func(string) { fired++ }) {
		t.Fatal("trigger accepted after stop")
	}
	if _, ok := d.Pending(); ok {
		t.Fatal("expected nothing pending after stop")
	}
}

func TestDebouncerRealTimer(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, nil)
	done := make(chan string, 2)
	d.Trigger("Book", func(key string) { done <- key })
	d.Trigger("Chair", func(key string) { done <- key })
	select {
	case key := <-done:
		if key != "Chair" {
			t.Fatalf("fired %q, want Chair", key)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never fired")
	}
	select {
	case key := <-done:
		t.Fatalf("unexpected second fire %q", key)
	case <-time.After(50 * time.Millisecond):
	}
}
