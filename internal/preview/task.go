// Package preview debounces model changes and pushes them to the host.
package preview

import (
	"sync"
	"time"
)

// Timer is a pending call that can be stopped.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d. time.AfterFunc satisfies it once
// wrapped by RealClock.
type AfterFunc func(d time.Duration, f func()) Timer

// RealClock schedules on the runtime timer.
func RealClock(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Task is a single-slot delayed call. Scheduling replaces and cancels the
// pending call; a timer that fires after being replaced is ignored.
type Task struct {
	mu    sync.Mutex
	delay time.Duration
	after AfterFunc
	timer Timer
	gen   uint64
}

// NewTask returns a Task that runs scheduled calls after delay. A nil after
// uses RealClock.
func NewTask(delay time.Duration, after AfterFunc) *Task {
	if after == nil {
		after = RealClock
	}
	return &Task{delay: delay, after: after}
}

// Schedule arranges for fn to run after the task's delay, cancelling any
// call that has not run yet.
func (t *Task) Schedule(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.gen++
	gen := t.gen
	t.timer = t.after(t.delay, func() {
		t.mu.Lock()
		if gen != t.gen || t.timer == nil {
			t.mu.Unlock()
			return
		}
		t.timer = nil
		t.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending call, if any.
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.gen++
}

// Pending reports whether a call is waiting to run.
func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

func (t *Task) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
