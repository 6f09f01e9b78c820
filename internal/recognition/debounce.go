package recognition

import (
	"sync"
	"time"
)

// Timer is the subset of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn after d. time.AfterFunc is the default.
type Scheduler func(d time.Duration, fn func()) Timer

func afterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Debouncer delays an action until its key has been quiet for the configured
// window. Each Trigger cancels the pending timer and schedules a fresh one; a
// timer that fires after being superseded does nothing.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	schedule Scheduler
	timer    Timer
	gen      uint64
	pending  string
	stopped  bool
}

// NewDebouncer returns a debouncer with the given quiet window. A nil
// scheduler uses time.AfterFunc.
func NewDebouncer(delay time.Duration, schedule Scheduler) *Debouncer {
	if schedule == nil {
		schedule = afterFunc
	}
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{delay: delay, schedule: schedule}
}

// Trigger schedules fn(key) after the quiet window, replacing any pending
// call. It reports false once the debouncer has been stopped.
func (d *Debouncer) Trigger(key string, fn func(key string)) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = key
	d.timer = d.schedule(d.delay, func() {
		d.mu.Lock()
		if d.stopped || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.pending = ""
		d.mu.Unlock()
		fn(key)
	})
	return true
}

// Pending returns the key waiting to fire, if any.
func (d *Debouncer) Pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending, d.timer != nil
}

// Cancel drops the pending call without stopping the debouncer.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Stop cancels the pending call and rejects later triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = ""
}
