package preview

import (
	"sync"
	"testing"
	"time"

	"github.com/jsvensson/themelab/internal/theme"
)

// manualClock collects scheduled calls and runs them on demand.
type manualClock struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{f: f}
	c.pending = append(c.pending, t)
	return t
}

// fireAll runs every scheduled call, including stopped ones, to mimic timers
// that fire right as they are replaced.
func (c *manualClock) fireAll() {
	c.mu.Lock()
	timers := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, t := range timers {
		t.f()
	}
}

func TestTaskReplacesPending(t *testing.T) {
	clk := &manualClock{}
	task := NewTask(DefaultDebounce, clk.AfterFunc)

	var runs []int
	task.Schedule(func() { runs = append(runs, 1) })
	task.Schedule(func() { runs = append(runs, 2) })
	task.Schedule(func() { runs = append(runs, 3) })

	if !task.Pending() {
		t.Fatal("Pending() = false after Schedule")
	}
	clk.fireAll()

	if len(runs) != 1 || runs[0] != 3 {
		t.Errorf("runs = %v, want [3]", runs)
	}
	if task.Pending() {
		t.Error("Pending() = true after the call ran")
	}
}

func TestTaskCancel(t *testing.T) {
	clk := &manualClock{}
	task := NewTask(DefaultDebounce, clk.AfterFunc)

	ran := false
	task.Schedule(func() { ran = true })
	task.Cancel()
	clk.fireAll()

	if ran {
		t.Error("cancelled call ran")
	}
}

func TestTaskRealClock(t *testing.T) {
	task := NewTask(5*time.Millisecond, nil)
	done := make(chan int, 2)
	task.Schedule(func() { done <- 1 })
	task.Schedule(func() { done <- 2 })

	select {
	case got := <-done:
		if got != 2 {
			t.Errorf("ran call %d, want 2", got)
		}
	case <-time.After(time.Second):
		t.Fatal("scheduled call never ran")
	}

	select {
	case got := <-done:
		t.Errorf("replaced call %d also ran", got)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestDispatcherSuppressesDuplicates(t *testing.T) {
	clk := &manualClock{}
	var sent []string
	d := NewDispatcher(NewTask(DefaultDebounce, clk.AfterFunc), func(m theme.Model) {
		sent = append(sent, m.Canonical())
	})

	model := theme.New()
	_ = model.SetColor("editor.background", "#111111")
	flush := func() { d.Flush(model) }

	d.Schedule(flush)
	clk.fireAll()

	// An undo followed by a redo lands on the same model.
	_ = model.SetColor("editor.background", "#222222")
	_ = model.SetColor("editor.background", "#111111")
	d.Schedule(flush)
	clk.fireAll()

	if len(sent) != 1 {
		t.Fatalf("sent %d pushes, want 1", len(sent))
	}
	if d.Sent() != 1 {
		t.Errorf("Sent() = %d, want 1", d.Sent())
	}

	_ = model.SetColor("editor.background", "#333333")
	d.Schedule(flush)
	clk.fireAll()
	if len(sent) != 2 {
		t.Errorf("sent %d pushes after a real change, want 2", len(sent))
	}
	if d.Last() != model.Canonical() {
		t.Errorf("Last() = %s, want %s", d.Last(), model.Canonical())
	}
}

func TestDispatcherSendsCopy(t *testing.T) {
	var got theme.Model
	d := NewDispatcher(NewTask(DefaultDebounce, nil), func(m theme.Model) { got = m })

	model := theme.New()
	_ = model.SetColor("a", "#111111")
	d.Flush(model)
	_ = model.SetColor("a", "#222222")

	if got.Colors["a"] != "#111111" {
		t.Errorf("sent model changed with the live one: %q", got.Colors["a"])
	}
}
