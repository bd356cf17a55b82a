package preview

import (
	"time"

	"github.com/jsvensson/themelab/internal/theme"
)

// DefaultDebounce is the quiet period before a change is pushed.
const DefaultDebounce = 120 * time.Millisecond

// Dispatcher pushes the model to the host once edits settle, skipping pushes
// whose serialized form equals the last one sent. Flush must be called with
// the owner's lock held; the owner also guards Dispatcher's state.
type Dispatcher struct {
	task *Task
	send func(theme.Model)
	last string
	sent int
}

// NewDispatcher returns a Dispatcher that hands settled models to send.
func NewDispatcher(task *Task, send func(theme.Model)) *Dispatcher {
	return &Dispatcher{task: task, send: send}
}

// Schedule (re)starts the debounce window. fire runs when it elapses and is
// expected to take the owner's lock and call Flush.
func (d *Dispatcher) Schedule(fire func()) {
	d.task.Schedule(fire)
}

// Cancel drops a pending push.
func (d *Dispatcher) Cancel() {
	d.task.Cancel()
}

// Flush sends m unless it serializes identically to the last model sent.
// It reports whether anything was sent.
func (d *Dispatcher) Flush(m theme.Model) bool {
	c := m.Canonical()
	if c == d.last {
		return false
	}
	d.last = c
	d.sent++
	d.send(m.Clone())
	return true
}

// Sent returns the number of pushes made so far.
func (d *Dispatcher) Sent() int {
	return d.sent
}

// Last returns the canonical form of the last model sent.
func (d *Dispatcher) Last() string {
	return d.last
}
